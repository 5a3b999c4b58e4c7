package stats

import (
	"fmt"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// Stations returns the most common start station, end station, and ordered
// start→end pair. Returns domain.ErrEmptyDataset when rs has no records.
func Stations(rs *domain.RecordSet) (domain.StationStats, error) {
	if rs.Len() == 0 {
		return domain.StationStats{}, fmt.Errorf("stats.Stations: %w", domain.ErrEmptyDataset)
	}
	start, _ := modeOf(project(rs.All(), func(r domain.TripRecord) string { return r.StartStation }))
	end, _ := modeOf(project(rs.All(), func(r domain.TripRecord) string { return r.EndStation }))
	trip, _ := modeOf(project(rs.All(), func(r domain.TripRecord) domain.StationPair {
		return domain.StationPair{Start: r.StartStation, End: r.EndStation}
	}))
	return domain.StationStats{
		MostCommonStart: start,
		MostCommonEnd:   end,
		MostCommonTrip:  trip,
	}, nil
}
