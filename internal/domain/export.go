package domain

import (
	"strconv"
	"time"
)

// ExportFormat selects the encoding of a raw-data export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ExportHeaders are the column names of a full export, in output order.
// They mirror the source column names so an export can be loaded back.
var ExportHeaders = []string{
	"Start Time", "End Time", "Trip Duration", "Start Station", "End Station",
	"User Type", "Gender", "Birth Year",
}

// ExportRow is one trip flattened to strings.
// Optional fields are empty when missing.
type ExportRow struct {
	StartTime    string
	EndTime      string
	Duration     string
	StartStation string
	EndStation   string
	UserType     string
	Gender       string
	BirthYear    string
}

// sourceTimeLayout matches the timestamp layout of the published trip logs.
// Whole seconds render without a fraction.
const sourceTimeLayout = "2006-01-02 15:04:05.999999999"

// NewExportRow flattens r.
func NewExportRow(r TripRecord) ExportRow {
	row := ExportRow{
		StartTime:    r.StartTime.Format(sourceTimeLayout),
		Duration:     strconv.FormatFloat(r.Duration, 'f', -1, 64),
		StartStation: r.StartStation,
		EndStation:   r.EndStation,
		UserType:     r.UserType,
		Gender:       r.Gender,
	}
	if r.EndTime != nil {
		row.EndTime = r.EndTime.Format(sourceTimeLayout)
	}
	if r.BirthYear != nil {
		row.BirthYear = strconv.FormatFloat(*r.BirthYear, 'f', -1, 64)
	}
	return row
}

// Strings returns the row in ExportHeaders order.
func (e ExportRow) Strings() []string {
	return []string{
		e.StartTime, e.EndTime, e.Duration, e.StartStation, e.EndStation,
		e.UserType, e.Gender, e.BirthYear,
	}
}

// Cells returns the row restricted to the columns in c, in ExportHeaders order.
// It lines up with c.ExportHeaders().
func (e ExportRow) Cells(c Columns) []string {
	return c.keep(e.Strings())
}

// ExportHeaders returns the header row for a set with these columns.
// Optional columns the source lacked are left out, so loading the export
// back yields the same availability flags.
func (c Columns) ExportHeaders() []string {
	return c.keep(ExportHeaders)
}

func (c Columns) keep(full []string) []string {
	out := make([]string, 0, len(full))
	for i, v := range full {
		switch {
		case i == 1 && !c.EndTime, i == 6 && !c.Gender, i == 7 && !c.BirthYear:
			continue
		}
		out = append(out, v)
	}
	return out
}

// FormatTime formats t the way source files do. Used by the Postgres source so
// rows read back from the database go through the same parser as CSV rows.
func FormatTime(t time.Time) string { return t.Format(sourceTimeLayout) }
