// Package service contains the orchestration for the bikeshare statistics API.
// Services resolve cities, cache loaded datasets, and run the pure stats
// functions; they log and record metrics so the stats core never has to.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pkordes/bikeshare-stats/internal/cache"
	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/metrics"
	"github.com/pkordes/bikeshare-stats/internal/stats"
	"github.com/pkordes/bikeshare-stats/internal/store"
)

// Loader loads a city's full trip log. *store.Loader satisfies it.
type Loader interface {
	Load(ctx context.Context, city string) (*domain.RecordSet, error)
}

// StatsService answers statistics and raw-data queries per city.
// Loaded datasets are immutable, so a cached set is shared by every caller.
type StatsService struct {
	loader  Loader
	cache   *cache.Cache[*domain.RecordSet]
	loads   singleflight.Group
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewStatsService constructs a StatsService. m may be nil.
func NewStatsService(loader Loader, c *cache.Cache[*domain.RecordSet], m *metrics.Metrics, log *slog.Logger) *StatsService {
	return &StatsService{
		loader:  loader,
		cache:   c,
		metrics: m,
		log:     log.With("component", "stats_service"),
	}
}

// Cities returns the supported cities.
func (s *StatsService) Cities() []domain.City {
	return domain.Cities
}

// Dataset returns the city's unfiltered RecordSet, loading it on first use.
// Concurrent first requests for the same city share one load, which is not
// cancelled when the request that started it goes away.
func (s *StatsService) Dataset(ctx context.Context, city string) (*domain.RecordSet, domain.City, error) {
	c, err := domain.ParseCity(city)
	if err != nil {
		return nil, "", fmt.Errorf("service.StatsService.Dataset: %w", err)
	}
	if rs, ok := s.cache.Get(string(c)); ok {
		return rs, c, nil
	}

	// The shared load outlives any one caller; each caller stops waiting
	// when its own context ends.
	ch := s.loads.DoChan(string(c), func() (any, error) {
		return s.load(context.WithoutCancel(ctx), c)
	})
	select {
	case <-ctx.Done():
		return nil, c, fmt.Errorf("service.StatsService.Dataset: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, c, fmt.Errorf("service.StatsService.Dataset: %w", res.Err)
		}
		return res.Val.(*domain.RecordSet), c, nil
	}
}

func (s *StatsService) load(ctx context.Context, c domain.City) (*domain.RecordSet, error) {
	start := time.Now()
	rs, err := s.loader.Load(ctx, string(c))
	elapsed := time.Since(start)
	s.metrics.ObserveLoad(string(c), elapsed, rs.Len(), err)
	if err != nil {
		s.log.ErrorContext(ctx, "dataset load failed", "city", c, "error", err)
		return nil, err
	}
	s.cache.Set(string(c), rs)
	s.log.InfoContext(ctx, "dataset loaded",
		"city", c,
		"dataset_id", rs.ID(),
		"source", rs.Source(),
		"records", rs.Len(),
		"has_gender", rs.HasGender(),
		"has_birth_year", rs.HasBirthYear(),
		"duration_ms", elapsed.Milliseconds(),
	)
	return rs, nil
}

// Summary filters the city's dataset and computes all four statistic groups.
// An empty view is not an error: Temporal and Station are left nil and a note
// explains why, while Duration and User degrade to their empty values.
func (s *StatsService) Summary(ctx context.Context, city string, f domain.Filter) (domain.Report, error) {
	f, err := domain.ParseFilter(f.Month, f.Day)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.StatsService.Summary: %w", err)
	}
	rs, c, err := s.Dataset(ctx, city)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.StatsService.Summary: %w", err)
	}
	s.metrics.CountQuery("summary")

	report, err := s.report(ctx, rs, string(c), f)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.StatsService.Summary: %w", err)
	}
	return report, nil
}

// Analyze loads an ad-hoc CSV trip log from r and summarises it.
// The dataset is not cached.
func (s *StatsService) Analyze(ctx context.Context, name string, r io.Reader, f domain.Filter) (domain.Report, error) {
	f, err := domain.ParseFilter(f.Month, f.Day)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.StatsService.Analyze: %w", err)
	}
	rs, err := store.Load(ctx, store.CSVReader(name, r))
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.StatsService.Analyze: %w", err)
	}
	s.metrics.CountQuery("analyze")

	report, err := s.report(ctx, rs, name, f)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.StatsService.Analyze: %w", err)
	}
	return report, nil
}

// report runs the four statistic groups over the filtered view, timing each.
func (s *StatsService) report(ctx context.Context, rs *domain.RecordSet, city string, f domain.Filter) (domain.Report, error) {
	view := stats.Apply(rs, f)
	out := domain.Report{
		DatasetID: rs.ID(),
		City:      city,
		Filter:    f,
		Matched:   view.Len(),
	}

	timed := func(group string, fn func() error) error {
		start := time.Now()
		err := fn()
		s.log.DebugContext(ctx, "statistics computed",
			"city", city, "group", group, "filter", f.String(),
			"records", view.Len(), "elapsed_us", time.Since(start).Microseconds())
		return err
	}

	err := timed("temporal", func() error {
		t, err := stats.Temporal(view)
		if err == nil {
			out.Temporal = &t
		}
		return err
	})
	if err != nil && !errors.Is(err, domain.ErrEmptyDataset) {
		return domain.Report{}, err
	}

	err = timed("station", func() error {
		st, err := stats.Stations(view)
		if err == nil {
			out.Station = &st
		}
		return err
	})
	if err != nil && !errors.Is(err, domain.ErrEmptyDataset) {
		return domain.Report{}, err
	}

	_ = timed("duration", func() error {
		out.Duration = stats.Durations(view)
		return nil
	})
	_ = timed("user", func() error {
		out.User = stats.Users(view)
		return nil
	})

	if view.Len() == 0 {
		out.Notes = append(out.Notes, "no trips match "+f.String()+"; temporal and station statistics are undefined")
	}
	return out, nil
}

// Raw returns one page of the city's unfiltered records starting at cursor.
func (s *StatsService) Raw(ctx context.Context, city string, cursor int) (domain.Page, error) {
	rs, _, err := s.Dataset(ctx, city)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.StatsService.Raw: %w", err)
	}
	s.metrics.CountQuery("raw")

	page, err := stats.Window(rs, cursor)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.StatsService.Raw: %w", err)
	}
	return page, nil
}

// Reload drops the cached dataset for city and loads it again.
func (s *StatsService) Reload(ctx context.Context, city string) error {
	c, err := domain.ParseCity(city)
	if err != nil {
		return fmt.Errorf("service.StatsService.Reload: %w", err)
	}
	s.cache.Delete(string(c))
	if _, _, err := s.Dataset(ctx, string(c)); err != nil {
		return fmt.Errorf("service.StatsService.Reload: %w", err)
	}
	return nil
}

// Preload loads every given city concurrently. Loading is I/O bound; each
// load is still a single sequential parse. The first failure cancels the rest.
func (s *StatsService) Preload(ctx context.Context, cities []domain.City) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range cities {
		g.Go(func() error {
			_, _, err := s.Dataset(ctx, string(c))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("service.StatsService.Preload: %w", err)
	}
	return nil
}
