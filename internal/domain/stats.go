package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Unavailable is rendered in place of a statistic whose source column the
// dataset does not carry.
const Unavailable = "not available for this dataset"

// Column wraps a statistic that depends on an optional source column.
// When Available is false Value is the zero value and must not be read.
type Column[T any] struct {
	Available bool
	Value     T
}

// Available wraps v as an available statistic.
func Available[T any](v T) Column[T] { return Column[T]{Available: true, Value: v} }

// NotAvailable returns the marker for a column the dataset lacks.
func NotAvailable[T any]() Column[T] { return Column[T]{} }

// MarshalJSON renders the value, or the Unavailable string.
func (c Column[T]) MarshalJSON() ([]byte, error) {
	if !c.Available {
		return json.Marshal(Unavailable)
	}
	return json.Marshal(c.Value)
}

// ValueCount is one row of a frequency table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// StationPair is an ordered (start, end) station combination. A→B and B→A differ.
type StationPair struct {
	Start string `json:"start_station"`
	End   string `json:"end_station"`
}

// String renders the pair as "Start to End".
func (p StationPair) String() string { return p.Start + " to " + p.End }

// TemporalStats holds the most frequent times of travel.
type TemporalStats struct {
	MostCommonMonth string `json:"most_common_month"`
	MostCommonDay   string `json:"most_common_day"`
	MostCommonHour  int    `json:"most_common_hour"`
}

// StationStats holds the most popular stations and trip.
type StationStats struct {
	MostCommonStart string      `json:"most_common_start_station"`
	MostCommonEnd   string      `json:"most_common_end_station"`
	MostCommonTrip  StationPair `json:"most_common_trip"`
}

// DurationStats holds total and mean travel time in seconds.
// MeanSeconds is nil when Trips is zero.
type DurationStats struct {
	Trips        int      `json:"trips"`
	TotalSeconds float64  `json:"total_seconds"`
	MeanSeconds  *float64 `json:"mean_seconds"`
}

// BirthYearStats holds whole-number birth-year extremes and mode.
// All three are nil when the view carries no birth-year values.
type BirthYearStats struct {
	Earliest   *int `json:"earliest"`
	MostRecent *int `json:"most_recent"`
	MostCommon *int `json:"most_common"`
}

// UserStats holds user-demographic breakdowns.
type UserStats struct {
	UserTypes []ValueCount           `json:"user_types"`
	Gender    Column[[]ValueCount]   `json:"gender"`
	BirthYear Column[BirthYearStats] `json:"birth_year"`
}

// Report is the full result of one statistics query.
// Temporal and Station are nil when the filtered view is empty; Notes says why.
type Report struct {
	DatasetID uuid.UUID      `json:"dataset_id"`
	City      string         `json:"city"`
	Filter    Filter         `json:"filter"`
	Matched   int            `json:"matched"`
	Temporal  *TemporalStats `json:"temporal"`
	Station   *StationStats  `json:"station"`
	Duration  DurationStats  `json:"duration"`
	User      UserStats      `json:"user"`
	Notes     []string       `json:"notes,omitempty"`
}
