package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/bikeshare-stats/internal/domain"
	"github.com/pkordes/bikeshare-stats/internal/metrics"
	"github.com/pkordes/bikeshare-stats/internal/stats"
)

// exportSheet is the worksheet name used for XLSX exports.
const exportSheet = "Trips"

// DatasetProvider resolves a city to its loaded dataset.
// *StatsService satisfies it.
type DatasetProvider interface {
	Dataset(ctx context.Context, city string) (*domain.RecordSet, domain.City, error)
}

// ExportService writes the filtered view of a city's trips as CSV or XLSX.
type ExportService struct {
	datasets DatasetProvider
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewExportService constructs an ExportService. m may be nil.
func NewExportService(datasets DatasetProvider, m *metrics.Metrics, log *slog.Logger) *ExportService {
	return &ExportService{datasets: datasets, metrics: m, log: log.With("component", "export_service")}
}

// Export writes one row per matching trip to w, preceded by a header row.
// It returns the number of trip rows written.
func (s *ExportService) Export(ctx context.Context, city string, f domain.Filter, format domain.ExportFormat, w io.Writer) (int, error) {
	f, err := domain.ParseFilter(f.Month, f.Day)
	if err != nil {
		return 0, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	if format != domain.FormatCSV && format != domain.FormatXLSX {
		return 0, fmt.Errorf("service.ExportService.Export: format %q: %w", format, domain.ErrValidation)
	}

	rs, c, err := s.datasets.Dataset(ctx, city)
	if err != nil {
		return 0, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	s.metrics.CountQuery("export")
	view := stats.Apply(rs, f)

	switch format {
	case domain.FormatXLSX:
		err = writeXLSX(view, w)
	default:
		err = writeCSV(view, w)
	}
	if err != nil {
		return 0, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	s.log.InfoContext(ctx, "export written", "city", c, "format", format, "filter", f.String(), "rows", view.Len())
	return view.Len(), nil
}

func writeCSV(rs *domain.RecordSet, w io.Writer) error {
	cols := rs.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(cols.ExportHeaders()); err != nil {
		return err
	}
	for r := range rs.All() {
		if err := cw.Write(domain.NewExportRow(r).Cells(cols)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(rs *domain.RecordSet, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return err
	}

	cols := rs.Columns()
	if err := sw.SetRow("A1", cells(cols.ExportHeaders())); err != nil {
		return err
	}
	row := 2
	for r := range rs.All() {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(domain.NewExportRow(r).Cells(cols))); err != nil {
			return err
		}
		row++
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

func cells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
