package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// Registry resolves a city to the Source holding its trip log.
type Registry struct {
	sources map[domain.City]Source
}

// NewRegistry builds a Registry from an explicit city → Source map.
func NewRegistry(sources map[domain.City]Source) *Registry {
	m := make(map[domain.City]Source, len(sources))
	for c, s := range sources {
		m[c] = s
	}
	return &Registry{sources: m}
}

// NewFileRegistry maps every city to a file under dir. files overrides the
// default file name per city; a ".xlsx" extension selects the Excel reader.
func NewFileRegistry(dir string, files map[domain.City]string) *Registry {
	sources := make(map[domain.City]Source, len(domain.Cities))
	for _, c := range domain.Cities {
		name := c.DefaultFile()
		if f, ok := files[c]; ok && f != "" {
			name = f
		}
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, name)
		}
		sources[c] = FileSource(path)
	}
	return &Registry{sources: sources}
}

// FileSource picks a reader from the file extension.
func FileSource(path string) Source {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return XLSXFile{Path: path}
	}
	return CSVFile{Path: path}
}

// Resolve returns the Source for city. The selector is parsed with
// domain.ParseCity, so "New York City" and "new-york-city" are equivalent.
func (r *Registry) Resolve(city string) (domain.City, Source, error) {
	c, err := domain.ParseCity(city)
	if err != nil {
		return "", nil, fmt.Errorf("store.Registry.Resolve: %w", err)
	}
	src, ok := r.sources[c]
	if !ok {
		return "", nil, fmt.Errorf("store.Registry.Resolve: %w: %q has no configured source", domain.ErrUnknownCity, city)
	}
	return c, src, nil
}

// Loader resolves a city and loads its trip log.
type Loader struct {
	registry *Registry
}

// NewLoader constructs a Loader over registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// Load resolves city and loads its full, unfiltered RecordSet.
func (l *Loader) Load(ctx context.Context, city string) (*domain.RecordSet, error) {
	_, src, err := l.registry.Resolve(city)
	if err != nil {
		return nil, err
	}
	return Load(ctx, src)
}
