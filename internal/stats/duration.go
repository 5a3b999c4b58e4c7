package stats

import "github.com/pkordes/bikeshare-stats/internal/domain"

// Durations returns the total and mean trip duration.
// On an empty set the total is 0 and the mean is nil (undefined).
func Durations(rs *domain.RecordSet) domain.DurationStats {
	var (
		n   int
		sum float64
	)
	for r := range rs.All() {
		n++
		sum += r.Duration
	}
	out := domain.DurationStats{Trips: n, TotalSeconds: sum}
	if n > 0 {
		mean := sum / float64(n)
		out.MeanSeconds = &mean
	}
	return out
}
