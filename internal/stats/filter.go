// Package stats holds the pure computations over a RecordSet: filtering,
// the four aggregate groups, and raw-record paging.
// Nothing here performs I/O, logs, or mutates its input.
package stats

import "github.com/pkordes/bikeshare-stats/internal/domain"

// Apply returns the records of rs that satisfy f, in their original order.
// With no constraint on either axis rs itself is returned; it is immutable,
// so sharing it is safe. No match yields an empty RecordSet, not an error.
func Apply(rs *domain.RecordSet, f domain.Filter) *domain.RecordSet {
	if f.IsAll() {
		return rs
	}
	return rs.Where(f.Matches)
}
