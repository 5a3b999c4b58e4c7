// Package repo contains the Postgres access logic for the trip-log backend.
// Trip logs can be imported into Postgres once and then served as a store.Source,
// so the same all-or-nothing load path validates rows from the database.
// Only SQL and type mapping live here.
package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/store"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool lets callers run the repo
// inside a transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Dataset describes one imported city.
type Dataset struct {
	City       domain.City
	Source     string
	Columns    domain.Columns
	RowCount   int
	ImportedAt time.Time
}

// TripRepo defines the persistence operations for imported trip logs.
type TripRepo interface {
	// Import replaces the city's rows with the records of rs, atomically.
	// Returns the number of rows written.
	Import(ctx context.Context, city domain.City, rs *domain.RecordSet) (int64, error)

	// Dataset returns the import metadata for city.
	// Returns domain.ErrNotFound if the city has not been imported.
	Dataset(ctx context.Context, city domain.City) (Dataset, error)

	// Delete removes an imported city. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, city domain.City) error

	// Source returns a store.Source reading the city's rows in import order.
	Source(city domain.City) store.Source
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

var tripColumns = []string{
	"city", "row_no", "start_time", "end_time", "start_station", "end_station",
	"trip_duration", "user_type", "gender", "birth_year",
}

// Import deletes any previous rows for city and bulk-copies rs in one transaction.
func (r *pgTripRepo) Import(ctx context.Context, city domain.City, rs *domain.RecordSet) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("repo.TripRepo.Import: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after Commit

	args := pgx.NamedArgs{"city": string(city)}
	if _, err := tx.Exec(ctx, `DELETE FROM trips WHERE city = @city`, args); err != nil {
		return 0, fmt.Errorf("repo.TripRepo.Import: clear trips: %w", err)
	}

	cols := rs.Columns()
	const upsert = `
		INSERT INTO datasets (city, source, has_gender, has_birth_year, has_end_time, row_count)
		VALUES (@city, @source, @has_gender, @has_birth_year, @has_end_time, @row_count)
		ON CONFLICT (city) DO UPDATE
		SET source         = EXCLUDED.source,
		    has_gender     = EXCLUDED.has_gender,
		    has_birth_year = EXCLUDED.has_birth_year,
		    has_end_time   = EXCLUDED.has_end_time,
		    row_count      = EXCLUDED.row_count,
		    imported_at    = now()`
	if _, err := tx.Exec(ctx, upsert, pgx.NamedArgs{
		"city":           string(city),
		"source":         rs.Source(),
		"has_gender":     cols.Gender,
		"has_birth_year": cols.BirthYear,
		"has_end_time":   cols.EndTime,
		"row_count":      rs.Len(),
	}); err != nil {
		return 0, fmt.Errorf("repo.TripRepo.Import: upsert dataset: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"trips"}, tripColumns,
		pgx.CopyFromSlice(rs.Len(), func(i int) ([]any, error) {
			rec := rs.At(i)
			var gender *string
			if cols.Gender && rec.Gender != "" {
				g := rec.Gender
				gender = &g
			}
			return []any{
				string(city), i + 1, rec.StartTime, rec.EndTime, rec.StartStation, rec.EndStation,
				rec.Duration, rec.UserType, gender, rec.BirthYear,
			}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("repo.TripRepo.Import: copy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("repo.TripRepo.Import: commit: %w", err)
	}
	return n, nil
}

// Dataset retrieves the import metadata for city.
func (r *pgTripRepo) Dataset(ctx context.Context, city domain.City) (Dataset, error) {
	const q = `
		SELECT city, source, has_gender, has_birth_year, has_end_time, row_count, imported_at
		FROM datasets
		WHERE city = @city`

	var (
		d    Dataset
		name string
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"city": string(city)}).Scan(
		&name, &d.Source, &d.Columns.Gender, &d.Columns.BirthYear, &d.Columns.EndTime, &d.RowCount, &d.ImportedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Dataset{}, fmt.Errorf("repo.TripRepo.Dataset: %s: %w", city, domain.ErrNotFound)
		}
		return Dataset{}, fmt.Errorf("repo.TripRepo.Dataset: %w", err)
	}
	d.City = domain.City(name)
	return d, nil
}

// Delete removes a city's rows and metadata.
func (r *pgTripRepo) Delete(ctx context.Context, city domain.City) error {
	args := pgx.NamedArgs{"city": string(city)}
	if _, err := r.db.Exec(ctx, `DELETE FROM trips WHERE city = @city`, args); err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM datasets WHERE city = @city`, args)
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Source returns a store.Source over the city's imported rows.
func (r *pgTripRepo) Source(city domain.City) store.Source {
	return &tripSource{repo: r, city: city}
}

// tripSource streams imported rows as string cells.
type tripSource struct {
	repo *pgTripRepo
	city domain.City
}

func (s *tripSource) String() string { return "postgres:" + string(s.city) }

// Open looks up the dataset's column flags and starts the row query.
func (s *tripSource) Open(ctx context.Context) (store.Table, error) {
	d, err := s.repo.Dataset(ctx, s.city)
	if err != nil {
		return nil, err
	}

	const q = `
		SELECT start_time, end_time, trip_duration, start_station, end_station, user_type, gender, birth_year
		FROM trips
		WHERE city = @city
		ORDER BY row_no`
	rows, err := s.repo.db.Query(ctx, q, pgx.NamedArgs{"city": string(s.city)})
	if err != nil {
		return nil, fmt.Errorf("repo.tripSource.Open: %w", err)
	}

	header := []string{store.ColStartTime, store.ColTripDuration,
		store.ColStartStation, store.ColEndStation, store.ColUserType}
	if d.Columns.EndTime {
		header = append(header, store.ColEndTime)
	}
	if d.Columns.Gender {
		header = append(header, store.ColGender)
	}
	if d.Columns.BirthYear {
		header = append(header, store.ColBirthYear)
	}
	return &tripTable{rows: rows, header: header, cols: d.Columns}, nil
}

type tripTable struct {
	rows   pgx.Rows
	header []string
	cols   domain.Columns
}

func (t *tripTable) Header() []string { return t.header }

// Next scans one row and renders it in header order.
func (t *tripTable) Next() ([]string, error) {
	if !t.rows.Next() {
		if err := t.rows.Err(); err != nil {
			return nil, fmt.Errorf("repo.tripTable.Next: %w", err)
		}
		return nil, io.EOF
	}

	var (
		start     time.Time
		end       *time.Time
		duration  float64
		from, to  string
		userType  string
		gender    *string
		birthYear *float64
	)
	if err := t.rows.Scan(&start, &end, &duration, &from, &to, &userType, &gender, &birthYear); err != nil {
		return nil, fmt.Errorf("repo.tripTable.Next: scan: %w", err)
	}

	out := []string{
		domain.FormatTime(start), strconv.FormatFloat(duration, 'f', -1, 64), from, to, userType,
	}
	if t.cols.EndTime {
		e := ""
		if end != nil {
			e = domain.FormatTime(*end)
		}
		out = append(out, e)
	}
	if t.cols.Gender {
		g := ""
		if gender != nil {
			g = *gender
		}
		out = append(out, g)
	}
	if t.cols.BirthYear {
		b := ""
		if birthYear != nil {
			b = strconv.FormatFloat(*birthYear, 'f', -1, 64)
		}
		out = append(out, b)
	}
	return out, nil
}

func (t *tripTable) Close() error {
	t.rows.Close()
	return nil
}
