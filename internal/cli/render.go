package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkordes/bikeshare-stats/internal/domain"
)

func writeReport(w io.Writer, r domain.Report) {
	fmt.Fprintf(w, "\n%d trips match %s.\n", r.Matched, r.Filter)
	for _, n := range r.Notes {
		fmt.Fprintf(w, "Note: %s\n", n)
	}

	fmt.Fprint(w, "\nThe Most Frequent Times of Travel\n\n")
	if t := r.Temporal; t != nil {
		tw := newTable(w)
		fmt.Fprintf(tw, "Most common month:\t%s\n", t.MostCommonMonth)
		fmt.Fprintf(tw, "Most common day of the week:\t%s\n", t.MostCommonDay)
		fmt.Fprintf(tw, "Most common start hour:\t%d\n", t.MostCommonHour)
		tw.Flush()
	} else {
		fmt.Fprintln(w, "No trips to summarise.")
	}

	fmt.Fprint(w, "\nThe Most Popular Stations and Trip\n\n")
	if st := r.Station; st != nil {
		tw := newTable(w)
		fmt.Fprintf(tw, "Most commonly used start station:\t%s\n", st.MostCommonStart)
		fmt.Fprintf(tw, "Most commonly used end station:\t%s\n", st.MostCommonEnd)
		fmt.Fprintf(tw, "Most frequent trip:\t%s\n", st.MostCommonTrip)
		tw.Flush()
	} else {
		fmt.Fprintln(w, "No trips to summarise.")
	}

	fmt.Fprint(w, "\nTrip Duration\n\n")
	tw := newTable(w)
	fmt.Fprintf(tw, "Total travel time:\t%s\n", seconds(r.Duration.TotalSeconds))
	if m := r.Duration.MeanSeconds; m != nil {
		fmt.Fprintf(tw, "Mean travel time:\t%s\n", seconds(*m))
	} else {
		fmt.Fprintf(tw, "Mean travel time:\tundefined (no trips)\n")
	}
	tw.Flush()

	fmt.Fprint(w, "\nUser Stats\n\n")
	fmt.Fprintln(w, "Counts of user types:")
	writeCounts(w, r.User.UserTypes)

	if r.User.Gender.Available {
		fmt.Fprintln(w, "\nCounts of gender:")
		writeCounts(w, r.User.Gender.Value)
	} else {
		fmt.Fprintln(w, "\nGender information is not available for this city.")
	}

	if r.User.BirthYear.Available {
		by := r.User.BirthYear.Value
		fmt.Fprintln(w, "\nYear of Birth Statistics:")
		tw := newTable(w)
		fmt.Fprintf(tw, "Earliest birth year:\t%s\n", year(by.Earliest))
		fmt.Fprintf(tw, "Most recent birth year:\t%s\n", year(by.MostRecent))
		fmt.Fprintf(tw, "Most common birth year:\t%s\n", year(by.MostCommon))
		tw.Flush()
	} else {
		fmt.Fprintln(w, "\nBirth year information is not available for this city.")
	}
}

func writePage(w io.Writer, p domain.Page) {
	if len(p.Records) == 0 {
		fmt.Fprintln(w, "No more raw data.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\t"+strings.Join(domain.ExportHeaders, "\t"))
	for i, r := range p.Records {
		fmt.Fprintf(tw, "%d\t%s\n", p.Cursor+i, strings.Join(domain.NewExportRow(r).Strings(), "\t"))
	}
	tw.Flush()
}

func writeCounts(w io.Writer, counts []domain.ValueCount) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	tw := newTable(w)
	for _, vc := range counts {
		fmt.Fprintf(tw, "  %s\t%d\n", vc.Value, vc.Count)
	}
	tw.Flush()
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// seconds renders e.g. "3000 seconds (50m0s)".
func seconds(s float64) string {
	d := time.Duration(s * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%s seconds (%s)", formatNumber(s), d)
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.2f", f)
}

func year(y *int) string {
	if y == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *y)
}
