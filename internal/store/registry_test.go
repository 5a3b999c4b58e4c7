package store_test

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/store"
	"github.com/pkordes/bikeshare-stats/testutil"
)

func TestFileRegistry_DefaultsAndOverrides(t *testing.T) {
	r := store.NewFileRegistry("/data", map[domain.City]string{domain.Washington: "dc.xlsx"})

	c, src, err := r.Resolve("Chicago")
	require.NoError(t, err)
	assert.Equal(t, domain.Chicago, c)
	assert.Equal(t, store.CSVFile{Path: filepath.Join("/data", "chicago.csv")}, src)

	_, src, err = r.Resolve("washington")
	require.NoError(t, err)
	assert.Equal(t, store.XLSXFile{Path: filepath.Join("/data", "dc.xlsx")}, src)
}

func TestRegistry_UnknownCity(t *testing.T) {
	r := store.NewFileRegistry("/data", nil)

	_, _, err := r.Resolve("springfield")

	assert.ErrorIs(t, err, domain.ErrUnknownCity)
}

func TestLoader_Load(t *testing.T) {
	path := testutil.WriteCSV(t, "nyc.csv", testutil.ChicagoHeader, chicagoRows())
	l := store.NewLoader(store.NewRegistry(map[domain.City]store.Source{
		domain.NewYorkCity: store.CSVFile{Path: path},
	}))

	rs, err := l.Load(context.Background(), "New York City")
	require.NoError(t, err)
	assert.Equal(t, 4, rs.Len())

	_, err = l.Load(context.Background(), "chicago")
	assert.ErrorIs(t, err, domain.ErrUnknownCity, "city without a configured source")
}

func TestLoader_MissingFile(t *testing.T) {
	l := store.NewLoader(store.NewFileRegistry(t.TempDir(), nil))

	_, err := l.Load(context.Background(), "chicago")

	assert.ErrorIs(t, err, fs.ErrNotExist)
}
