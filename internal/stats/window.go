package stats

import (
	"fmt"
	"math"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// Window returns up to domain.RawPageSize records of rs starting at cursor.
// Next always advances by exactly RawPageSize; a cursor at or past the end
// yields an empty page rather than an error. A negative cursor, or one so
// large that Next would overflow, is rejected with domain.ErrValidation.
func Window(rs *domain.RecordSet, cursor int) (domain.Page, error) {
	if cursor < 0 {
		return domain.Page{}, fmt.Errorf("stats.Window: %w: cursor must be non-negative, got %d", domain.ErrValidation, cursor)
	}
	if cursor > math.MaxInt-domain.RawPageSize {
		return domain.Page{}, fmt.Errorf("stats.Window: %w: cursor %d out of range", domain.ErrValidation, cursor)
	}
	next := cursor + domain.RawPageSize
	return domain.Page{
		Records: rs.Slice(cursor, next),
		Cursor:  cursor,
		Next:    next,
		Total:   rs.Len(),
		Done:    next >= rs.Len(),
	}, nil
}
