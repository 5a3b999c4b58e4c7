package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bikeshare-stats/internal/cli"
	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/stats"
	"github.com/pkordes/bikeshare-stats/testutil"
)

// fakeQuerier runs the real stats functions over a fixed RecordSet and records
// what the session asked for.
type fakeQuerier struct {
	rs         *domain.RecordSet
	summaryErr error
	cities     []string
	filters    []domain.Filter
	cursors    []int
}

func (f *fakeQuerier) Summary(_ context.Context, city string, flt domain.Filter) (domain.Report, error) {
	f.cities = append(f.cities, city)
	f.filters = append(f.filters, flt)
	if f.summaryErr != nil {
		return domain.Report{}, f.summaryErr
	}
	view := stats.Apply(f.rs, flt)
	r := domain.Report{City: city, Filter: flt, Matched: view.Len(), Duration: stats.Durations(view), User: stats.Users(view)}
	if t, err := stats.Temporal(view); err == nil {
		r.Temporal = &t
	}
	if st, err := stats.Stations(view); err == nil {
		r.Station = &st
	}
	return r, nil
}

func (f *fakeQuerier) Raw(_ context.Context, _ string, cursor int) (domain.Page, error) {
	f.cursors = append(f.cursors, cursor)
	return stats.Window(f.rs, cursor)
}

func run(t *testing.T, q cli.Querier, input ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(input, "\n") + "\n")
	require.NoError(t, cli.New(q, in, &out).Run(context.Background()))
	return out.String()
}

func TestSession_FullPass(t *testing.T) {
	q := &fakeQuerier{rs: testutil.Records(
		testutil.WithDemographics(testutil.Trip("2017-01-02 08:00:00", "Clark St", "State St", 300, "Subscriber"), "Male", 1985),
		testutil.WithDemographics(testutil.Trip("2017-01-09 08:30:00", "Clark St", "State St", 600, "Customer"), "Female", 1990),
	)}

	out := run(t, q, "New York City", "January", "monday", "no", "no")

	assert.Equal(t, []string{"new-york-city"}, q.cities)
	assert.Equal(t, []domain.Filter{{Month: "january", Day: "monday"}}, q.filters)
	assert.Contains(t, out, "Hello! Let's explore some US bikeshare data!")
	assert.Contains(t, out, "2 trips match month=january day=monday.")
	assert.Contains(t, out, "Most common month:")
	assert.Contains(t, out, "Clark St to State St")
	assert.Contains(t, out, "900 seconds (15m0s)")
	assert.Contains(t, out, "Earliest birth year:")
	assert.Contains(t, out, "This took")
	assert.Empty(t, q.cursors)
}

func TestSession_RepromptsOnInvalidInput(t *testing.T) {
	q := &fakeQuerier{rs: testutil.Records(testutil.Sequential(3)...)}

	out := run(t, q, "gotham", "chicago", "july", "all", "someday", "ALL", "maybe", "no", "no")

	assert.Contains(t, out, "Invalid input. Please enter a valid city name.")
	assert.Contains(t, out, "Invalid input. Please enter a valid month name or 'all'.")
	assert.Contains(t, out, "Invalid input. Please enter a valid day of the week or 'all'.")
	assert.Contains(t, out, "Invalid input. Please enter yes or no.")
	assert.Equal(t, []domain.Filter{domain.NoFilter}, q.filters)
}

func TestSession_PagesRawDataUntilDone(t *testing.T) {
	q := &fakeQuerier{rs: testutil.RecordsWithoutDemographics(testutil.Sequential(7)...)}

	out := run(t, q, "washington", "all", "all", "yes", "yes", "no")

	assert.Equal(t, []int{0, 5}, q.cursors)
	assert.Contains(t, out, "Would you like to see the next 5 lines of raw data?")
	assert.Contains(t, out, "That is the end of the raw data.")
	assert.Contains(t, out, "Gender information is not available for this city.")
	assert.Contains(t, out, "Birth year information is not available for this city.")
}

func TestSession_StopsPagingOnNo(t *testing.T) {
	q := &fakeQuerier{rs: testutil.Records(testutil.Sequential(12)...)}

	run(t, q, "chicago", "all", "all", "yes", "no", "no")

	assert.Equal(t, []int{0}, q.cursors)
}

func TestSession_RestartRunsAnotherPass(t *testing.T) {
	q := &fakeQuerier{rs: testutil.Records(testutil.Sequential(2)...)}

	run(t, q, "chicago", "all", "all", "no", "yes", "washington", "march", "all", "no", "no")

	assert.Equal(t, []string{"chicago", "washington"}, q.cities)
}

func TestSession_EmptyViewIsReportedNotFatal(t *testing.T) {
	q := &fakeQuerier{rs: testutil.Records(testutil.Sequential(2)...)}

	out := run(t, q, "chicago", "june", "all", "no", "no")

	assert.Contains(t, out, "0 trips match month=june day=all.")
	assert.Contains(t, out, "No trips to summarise.")
	assert.Contains(t, out, "undefined (no trips)")
}

func TestSession_SummaryErrorIsPrinted(t *testing.T) {
	q := &fakeQuerier{summaryErr: errors.New("open data/chicago.csv: no such file or directory")}

	out := run(t, q, "chicago", "all", "all", "no")

	assert.Contains(t, out, "Could not compute statistics for Chicago")
}

func TestSession_EOFEndsQuietly(t *testing.T) {
	q := &fakeQuerier{rs: testutil.Records(testutil.Sequential(2)...)}
	var out bytes.Buffer

	err := cli.New(q, strings.NewReader("chicago\n"), &out).Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, q.cities)
}
