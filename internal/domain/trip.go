// Package domain contains the core data types for the bikeshare statistics service.
// It depends on nothing but the standard library and google/uuid, and is imported
// by every other internal package (store, stats, repo, service, handler).
package domain

import (
	"iter"
	"time"

	"github.com/google/uuid"
)

// TripRecord is a single bike-share trip as read from a city's trip log.
// MonthName, DayName and Hour are derived from StartTime once, at load time,
// so filtering and aggregation never re-parse timestamps.
type TripRecord struct {
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"` // nil when the source has no End Time column
	StartStation string     `json:"start_station"`
	EndStation   string     `json:"end_station"`
	Duration     float64    `json:"trip_duration"` // seconds
	UserType     string     `json:"user_type"`
	Gender       string     `json:"gender,omitempty"`     // "" when missing
	BirthYear    *float64   `json:"birth_year,omitempty"` // nil when missing

	MonthName string `json:"month"`
	DayName   string `json:"day_of_week"`
	Hour      int    `json:"hour"`
}

// NewTripRecord builds a TripRecord and fills in the fields derived from start.
func NewTripRecord(start time.Time, startStation, endStation string, duration float64, userType string) TripRecord {
	return TripRecord{
		StartTime:    start,
		StartStation: startStation,
		EndStation:   endStation,
		Duration:     duration,
		UserType:     userType,
		MonthName:    start.Month().String(),
		DayName:      start.Weekday().String(),
		Hour:         start.Hour(),
	}
}

// Columns records which optional columns the source carried.
// It is a property of the whole RecordSet, never of a single record.
type Columns struct {
	Gender    bool
	BirthYear bool
	EndTime   bool
}

// RecordSet is an immutable, ordered collection of trips.
// Order is source order. Filtering builds a new RecordSet through Where;
// nothing in this package hands out the backing slice.
type RecordSet struct {
	id       uuid.UUID
	source   string
	loadedAt time.Time
	columns  Columns
	records  []TripRecord
}

// NewRecordSet copies records into a new RecordSet tagged with a fresh ID.
func NewRecordSet(source string, records []TripRecord, cols Columns) *RecordSet {
	return &RecordSet{
		id:       uuid.New(),
		source:   source,
		loadedAt: time.Now().UTC(),
		columns:  cols,
		records:  append(make([]TripRecord, 0, len(records)), records...),
	}
}

// ID identifies the load that produced this set. Derived sets keep the parent's ID.
func (rs *RecordSet) ID() uuid.UUID { return rs.id }

// Source is the identifier of the source the set was loaded from.
func (rs *RecordSet) Source() string { return rs.source }

// LoadedAt is when the parent set finished loading.
func (rs *RecordSet) LoadedAt() time.Time { return rs.loadedAt }

// Columns reports the optional-column availability flags.
func (rs *RecordSet) Columns() Columns {
	if rs == nil {
		return Columns{}
	}
	return rs.columns
}

// HasGender reports whether the source carried a Gender column.
func (rs *RecordSet) HasGender() bool { return rs.Columns().Gender }

// HasBirthYear reports whether the source carried a Birth Year column.
func (rs *RecordSet) HasBirthYear() bool { return rs.Columns().BirthYear }

// Len returns the number of records. A nil RecordSet has length zero.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.records)
}

// At returns the i-th record. It panics if i is out of range, like a slice index.
func (rs *RecordSet) At(i int) TripRecord { return rs.records[i] }

// All iterates the records in order.
func (rs *RecordSet) All() iter.Seq[TripRecord] {
	return func(yield func(TripRecord) bool) {
		if rs == nil {
			return
		}
		for _, r := range rs.records {
			if !yield(r) {
				return
			}
		}
	}
}

// Slice returns a copy of records[lo:hi], clamping both bounds to the set.
func (rs *RecordSet) Slice(lo, hi int) []TripRecord {
	n := rs.Len()
	lo = min(max(lo, 0), n)
	hi = min(max(hi, lo), n)
	out := make([]TripRecord, hi-lo)
	if n > 0 {
		copy(out, rs.records[lo:hi])
	}
	return out
}

// Where returns a new RecordSet holding only the records for which keep
// returns true, in their original relative order. The receiver is unchanged.
// A nil RecordSet yields an empty one.
func (rs *RecordSet) Where(keep func(TripRecord) bool) *RecordSet {
	if rs == nil {
		return &RecordSet{records: make([]TripRecord, 0)}
	}
	out := &RecordSet{
		id:       rs.id,
		source:   rs.source,
		loadedAt: rs.loadedAt,
		columns:  rs.columns,
		records:  make([]TripRecord, 0),
	}
	for _, r := range rs.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}
