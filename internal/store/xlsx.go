package store

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXFile is a trip log stored as an Excel workbook.
// Sheet defaults to the first sheet in the workbook.
type XLSXFile struct {
	Path  string
	Sheet string
}

// Open opens the workbook and positions a streaming row iterator after the header.
func (s XLSXFile) Open(_ context.Context) (Table, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("store.XLSXFile.Open: %w", err)
	}

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, fmt.Errorf("store.XLSXFile.Open: %s: %w: workbook has no sheets", s.Path, errMalformed)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("store.XLSXFile.Open: %s: sheet %q: %w", s.Path, sheet, err)
	}

	t := &xlsxTable{file: f, rows: rows}
	header, err := t.Next()
	if err != nil {
		t.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("store.XLSXFile.Open: %s: %w: no header row", s.Path, errMalformed)
		}
		return nil, fmt.Errorf("store.XLSXFile.Open: %s: %w", s.Path, err)
	}
	t.header = header
	for i, h := range header {
		if n := normaliseHeader(h); n == ColStartTime || n == ColEndTime {
			t.dateCols = append(t.dateCols, i)
		}
	}
	return t, nil
}

func (s XLSXFile) String() string { return s.Path }

type xlsxTable struct {
	file   *excelize.File
	rows   *excelize.Rows
	header []string
	// dateCols are the positions of Start Time and End Time.
	dateCols []int
}

func (t *xlsxTable) Header() []string { return t.header }

func (t *xlsxTable) Next() ([]string, error) {
	if !t.rows.Next() {
		if err := t.rows.Error(); err != nil {
			return nil, fmt.Errorf("%w: %w", errMalformed, err)
		}
		return nil, io.EOF
	}
	cols, err := t.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformed, err)
	}
	for _, i := range t.dateCols {
		if i < len(cols) {
			cols[i] = serialToTimestamp(cols[i])
		}
	}
	return cols, nil
}

// serialToTimestamp rewrites an Excel date serial as a source timestamp.
// Text cells pass through unchanged for ParseTime to handle.
func serialToTimestamp(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	ts, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return ts.Round(time.Millisecond).Format("2006-01-02 15:04:05.999")
}

func (t *xlsxTable) Close() error {
	rowsErr := t.rows.Close()
	if err := t.file.Close(); err != nil {
		return err
	}
	return rowsErr
}
