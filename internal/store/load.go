package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

var errMalformed = domain.ErrMalformedSource

// Source column names.
const (
	ColStartTime    = "Start Time"
	ColEndTime      = "End Time"
	ColTripDuration = "Trip Duration"
	ColStartStation = "Start Station"
	ColEndStation   = "End Station"
	ColUserType     = "User Type"
	ColGender       = "Gender"
	ColBirthYear    = "Birth Year"
)

// RequiredColumns must all be present in a trip log header.
var RequiredColumns = []string{ColStartTime, ColStartStation, ColEndStation, ColTripDuration, ColUserType}

// timeLayouts are tried in order when parsing Start Time and End Time cells.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"2006-01-02",
}

// ParseTime parses a trip-log timestamp. Timestamps without a zone are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// columnIndex maps column names to cell positions; -1 means absent.
type columnIndex struct {
	startTime, endTime, duration, startStation, endStation, userType, gender, birthYear int
}

func indexHeader(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := normaliseHeader(h)
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	lookup := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}

	var missing []string
	for _, c := range RequiredColumns {
		if lookup(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("%w: missing required column(s): %s", errMalformed, strings.Join(missing, ", "))
	}

	return columnIndex{
		startTime:    lookup(ColStartTime),
		endTime:      lookup(ColEndTime),
		duration:     lookup(ColTripDuration),
		startStation: lookup(ColStartStation),
		endStation:   lookup(ColEndStation),
		userType:     lookup(ColUserType),
		gender:       lookup(ColGender),
		birthYear:    lookup(ColBirthYear),
	}, nil
}

func (ix columnIndex) columns() domain.Columns {
	return domain.Columns{
		Gender:    ix.gender >= 0,
		BirthYear: ix.birthYear >= 0,
		EndTime:   ix.endTime >= 0,
	}
}

// cell returns row[i] trimmed, or "" when i is absent or past a short row.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Load reads every row of src into a RecordSet.
//
// The load is all-or-nothing: a missing required column, an unparseable
// Start Time or Trip Duration on any row, or a read error fails the whole
// load with an error wrapping domain.ErrMalformedSource. Empty or unparseable
// Birth Year and End Time cells are treated as missing values.
func Load(ctx context.Context, src Source) (*domain.RecordSet, error) {
	t, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer t.Close()

	ix, err := indexHeader(t.Header())
	if err != nil {
		return nil, fmt.Errorf("store.Load: %s: %w", src, err)
	}

	var records []domain.TripRecord
	for rowNo := 1; ; rowNo++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("store.Load: %s: %w", src, err)
		}
		row, err := t.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store.Load: %s: row %d: %w", src, rowNo, err)
		}
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(row, ix)
		if err != nil {
			return nil, fmt.Errorf("store.Load: %s: row %d: %w", src, rowNo, err)
		}
		records = append(records, rec)
	}

	return domain.NewRecordSet(src.String(), records, ix.columns()), nil
}

func parseRow(row []string, ix columnIndex) (domain.TripRecord, error) {
	raw := cell(row, ix.startTime)
	start, err := ParseTime(raw)
	if err != nil {
		return domain.TripRecord{}, fmt.Errorf("%w: %s: %v", errMalformed, ColStartTime, err)
	}

	durRaw := cell(row, ix.duration)
	dur, err := strconv.ParseFloat(durRaw, 64)
	if err != nil || math.IsNaN(dur) {
		return domain.TripRecord{}, fmt.Errorf("%w: %s: unparseable value %q", errMalformed, ColTripDuration, durRaw)
	}

	rec := domain.NewTripRecord(start, cell(row, ix.startStation), cell(row, ix.endStation), dur, cell(row, ix.userType))

	if v := cell(row, ix.endTime); v != "" {
		if end, err := ParseTime(v); err == nil {
			rec.EndTime = &end
		}
	}
	rec.Gender = cell(row, ix.gender)
	if v := cell(row, ix.birthYear); v != "" {
		if by, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(by) {
			rec.BirthYear = &by
		}
	}
	return rec, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
