package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/testutil"
)

func TestParseFilter_CaseInsensitive(t *testing.T) {
	f, err := domain.ParseFilter("March", "FRIDAY")

	require.NoError(t, err)
	assert.Equal(t, domain.Filter{Month: "march", Day: "friday"}, f)
}

func TestParseFilter_EmptyMeansAll(t *testing.T) {
	f, err := domain.ParseFilter("", "  ")

	require.NoError(t, err)
	assert.Equal(t, domain.NoFilter, f)
	assert.True(t, f.IsAll())
}

func TestParseFilter_MonthOutsideRange(t *testing.T) {
	// Trip logs only cover January to June.
	_, err := domain.ParseFilter("july", "all")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "month")
}

func TestParseFilter_UnknownDay(t *testing.T) {
	_, err := domain.ParseFilter("all", "funday")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "day")
}

func TestFilter_Matches(t *testing.T) {
	// 2017-03-03 is a Friday.
	r := testutil.Trip("2017-03-03 08:15:00", "A", "B", 60, "Subscriber")

	tests := []struct {
		name   string
		filter domain.Filter
		want   bool
	}{
		{"no constraint", domain.NoFilter, true},
		{"month only", domain.Filter{Month: "march", Day: "all"}, true},
		{"day only", domain.Filter{Month: "all", Day: "friday"}, true},
		{"both match", domain.Filter{Month: "march", Day: "friday"}, true},
		{"month mismatch", domain.Filter{Month: "april", Day: "friday"}, false},
		{"day mismatch", domain.Filter{Month: "march", Day: "monday"}, false},
		{"zero value is unconstrained", domain.Filter{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(r))
		})
	}
}
