// Package store loads trip logs into immutable domain.RecordSets.
// Sources are pluggable tables of string cells (CSV, XLSX, Postgres); Load is
// the single place where cells are validated and parsed, so every backend gets
// the same all-or-nothing semantics.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table is a header row followed by data rows of string cells.
// Next returns io.EOF after the last row.
type Table interface {
	Header() []string
	Next() ([]string, error)
	Close() error
}

// Source opens a Table. String returns the source identifier used in logs
// and on the resulting RecordSet.
type Source interface {
	Open(ctx context.Context) (Table, error)
	String() string
}

// CSVFile is a comma-separated trip log on disk.
type CSVFile struct {
	Path string
}

// Open opens the file and reads its header row.
func (s CSVFile) Open(_ context.Context) (Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("store.CSVFile.Open: %w", err)
	}
	t, err := newCSVTable(f, f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("store.CSVFile.Open: %s: %w", s.Path, err)
	}
	return t, nil
}

func (s CSVFile) String() string { return s.Path }

// CSVReader adapts an already-open reader, e.g. an uploaded request body.
// The reader is not closed by the Table.
func CSVReader(name string, r io.Reader) Source {
	return readerSource{name: name, r: r}
}

type readerSource struct {
	name string
	r    io.Reader
}

func (s readerSource) Open(_ context.Context) (Table, error) {
	t, err := newCSVTable(s.r, nil)
	if err != nil {
		return nil, fmt.Errorf("store.CSVReader: %s: %w", s.name, err)
	}
	return t, nil
}

func (s readerSource) String() string { return s.name }

type csvTable struct {
	r      *csv.Reader
	header []string
	closer io.Closer
}

func newCSVTable(r io.Reader, closer io.Closer) (*csvTable, error) {
	cr := csv.NewReader(r)
	// Trip logs are ragged in the wild; width is checked per required column instead.
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: no header row", errMalformed)
		}
		return nil, fmt.Errorf("%w: read header: %w", errMalformed, err)
	}
	return &csvTable{r: cr, header: header, closer: closer}, nil
}

func (t *csvTable) Header() []string { return t.header }

func (t *csvTable) Next() ([]string, error) {
	rec, err := t.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %w", errMalformed, err)
	}
	return rec, nil
}

func (t *csvTable) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}

// normaliseHeader trims whitespace and a leading UTF-8 byte-order mark.
func normaliseHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}
