package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

// ChicagoHeader is the column layout of the Chicago and New York City trip logs,
// including the unnamed leading index column the published files carry.
var ChicagoHeader = []string{"", "Start Time", "End Time", "Trip Duration", "Start Station", "End Station", "User Type", "Gender", "Birth Year"}

// WashingtonHeader is the Washington layout: no Gender or Birth Year.
var WashingtonHeader = []string{"", "Start Time", "End Time", "Trip Duration", "Start Station", "End Station", "User Type"}

// WriteCSV writes header and rows to name inside a per-test temp dir and
// returns the file path. The directory is removed when the test finishes.
func WriteCSV(t *testing.T, name string, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("testutil.WriteCSV: create: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("testutil.WriteCSV: header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("testutil.WriteCSV: rows: %v", err)
	}
	return path
}

// Trip builds a TripRecord from a "2006-01-02 15:04:05" start time.
// Panics on a malformed timestamp; fixtures are expected to be literal.
func Trip(start, from, to string, duration float64, userType string) domain.TripRecord {
	ts, err := time.Parse("2006-01-02 15:04:05", start)
	if err != nil {
		panic("testutil.Trip: bad start time " + start)
	}
	return domain.NewTripRecord(ts, from, to, duration, userType)
}

// WithDemographics returns r with gender and birth year set.
func WithDemographics(r domain.TripRecord, gender string, birthYear float64) domain.TripRecord {
	r.Gender = gender
	r.BirthYear = &birthYear
	return r
}

// Records wraps records in a RecordSet carrying every optional column.
func Records(records ...domain.TripRecord) *domain.RecordSet {
	return domain.NewRecordSet("fixture", records, domain.Columns{Gender: true, BirthYear: true, EndTime: true})
}

// RecordsWithoutDemographics wraps records in a RecordSet whose source had
// no Gender or Birth Year columns, like Washington.
func RecordsWithoutDemographics(records ...domain.TripRecord) *domain.RecordSet {
	return domain.NewRecordSet("fixture", records, domain.Columns{EndTime: true})
}

// Sequential returns n trips starting on consecutive hours from
// 2017-01-02 00:00:00, each from "Station <i>" to "Station <i+1>".
func Sequential(n int) []domain.TripRecord {
	base := time.Date(2017, time.January, 2, 0, 0, 0, 0, time.UTC)
	out := make([]domain.TripRecord, n)
	for i := range n {
		out[i] = domain.NewTripRecord(base.Add(time.Duration(i)*time.Hour),
			stationName(i), stationName(i+1), float64(60*(i+1)), "Subscriber")
	}
	return out
}

func stationName(i int) string {
	return "Station " + string(rune('A'+i%26))
}
