package stats

import (
	"fmt"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// Temporal returns the most common month, day of week and start hour.
// Returns domain.ErrEmptyDataset when rs has no records.
func Temporal(rs *domain.RecordSet) (domain.TemporalStats, error) {
	if rs.Len() == 0 {
		return domain.TemporalStats{}, fmt.Errorf("stats.Temporal: %w", domain.ErrEmptyDataset)
	}
	month, _ := modeOf(project(rs.All(), func(r domain.TripRecord) string { return r.MonthName }))
	day, _ := modeOf(project(rs.All(), func(r domain.TripRecord) string { return r.DayName }))
	hour, _ := modeOf(project(rs.All(), func(r domain.TripRecord) int { return r.Hour }))
	return domain.TemporalStats{
		MostCommonMonth: month,
		MostCommonDay:   day,
		MostCommonHour:  hour,
	}, nil
}
