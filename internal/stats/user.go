package stats

import (
	"math"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// Users returns the user-type frequency table and, when the dataset carries
// the columns, the gender frequency table and birth-year statistics.
// Missing columns yield domain.NotAvailable markers. Empty cells are skipped.
func Users(rs *domain.RecordSet) domain.UserStats {
	out := domain.UserStats{
		UserTypes: frequencies(rs, func(r domain.TripRecord) string { return r.UserType }),
		Gender:    domain.NotAvailable[[]domain.ValueCount](),
		BirthYear: domain.NotAvailable[domain.BirthYearStats](),
	}
	if rs.HasGender() {
		out.Gender = domain.Available(frequencies(rs, func(r domain.TripRecord) string { return r.Gender }))
	}
	if rs.HasBirthYear() {
		out.BirthYear = domain.Available(birthYears(rs))
	}
	return out
}

// frequencies counts the non-empty values of key across rs, ordered by
// descending count with ties in first-seen order. Never nil.
func frequencies(rs *domain.RecordSet, key func(domain.TripRecord) string) []domain.ValueCount {
	t := newTally[string]()
	for r := range rs.All() {
		if v := key(r); v != "" {
			t.add(v)
		}
	}
	out := make([]domain.ValueCount, 0, len(t.order))
	for _, v := range t.ranked() {
		out = append(out, domain.ValueCount{Value: v, Count: t.counts[v]})
	}
	return out
}

// birthYears computes min, max and mode over the present birth-year values,
// each rounded to a whole year.
func birthYears(rs *domain.RecordSet) domain.BirthYearStats {
	var (
		lo, hi float64
		seen   bool
		t      = newTally[float64]()
	)
	for r := range rs.All() {
		if r.BirthYear == nil {
			continue
		}
		y := *r.BirthYear
		if !seen || y < lo {
			lo = y
		}
		if !seen || y > hi {
			hi = y
		}
		seen = true
		t.add(y)
	}
	if !seen {
		return domain.BirthYearStats{}
	}
	mode, _ := t.mode()
	return domain.BirthYearStats{
		Earliest:   wholeYear(lo),
		MostRecent: wholeYear(hi),
		MostCommon: wholeYear(mode),
	}
}

func wholeYear(y float64) *int {
	v := int(math.Round(y))
	return &v
}
