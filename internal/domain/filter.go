package domain

import (
	"fmt"
	"slices"
	"strings"
)

// All is the filter value meaning "no constraint on this axis".
const All = "all"

// FilterMonths are the month values a Filter accepts besides All.
var FilterMonths = []string{"january", "february", "march", "april", "may", "june"}

// FilterDays are the day values a Filter accepts besides All.
var FilterDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Filter narrows a RecordSet by month and day of week.
// Both fields are lower-case; All (or "") disables the axis.
type Filter struct {
	Month string `json:"month"`
	Day   string `json:"day"`
}

// NoFilter matches every record.
var NoFilter = Filter{Month: All, Day: All}

// ParseFilter normalises and validates month and day.
// Matching is case-insensitive and an empty value means All.
// Returns ErrValidation for anything outside FilterMonths / FilterDays.
func ParseFilter(month, day string) (Filter, error) {
	f := Filter{Month: normaliseAxis(month), Day: normaliseAxis(day)}
	if f.Month != All && !slices.Contains(FilterMonths, f.Month) {
		return Filter{}, fmt.Errorf("%w: month must be one of %s or all, got %q",
			ErrValidation, strings.Join(FilterMonths, ", "), month)
	}
	if f.Day != All && !slices.Contains(FilterDays, f.Day) {
		return Filter{}, fmt.Errorf("%w: day must be one of %s or all, got %q",
			ErrValidation, strings.Join(FilterDays, ", "), day)
	}
	return f, nil
}

func normaliseAxis(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return All
	}
	return v
}

// IsAll reports whether the filter constrains neither axis.
func (f Filter) IsAll() bool {
	return normaliseAxis(f.Month) == All && normaliseAxis(f.Day) == All
}

// Matches reports whether r satisfies both constraints.
func (f Filter) Matches(r TripRecord) bool {
	if m := normaliseAxis(f.Month); m != All && !strings.EqualFold(r.MonthName, m) {
		return false
	}
	if d := normaliseAxis(f.Day); d != All && !strings.EqualFold(r.DayName, d) {
		return false
	}
	return true
}

// String renders the filter for logs, e.g. "month=march day=all".
func (f Filter) String() string {
	return "month=" + normaliseAxis(f.Month) + " day=" + normaliseAxis(f.Day)
}
