package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSXWriter writes reports as Excel workbooks into a directory.
type XLSXWriter struct {
	dir string
}

// NewXLSXWriter creates a writer that stores one workbook per user and day in dir.
func NewXLSXWriter(dir string) *XLSXWriter {
	return &XLSXWriter{dir: dir}
}

// Path returns the file a report is written to.
func (w *XLSXWriter) Path(r Report) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.xlsx", r.UserID, r.AsOf.UTC().Format("2006-01-02")))
}

// Write saves the report, replacing any workbook of the same user and day.
func (w *XLSXWriter) Write(_ context.Context, r Report) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer closeWorkbook(f)

	path := w.Path(r)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	slog.Info("xlsx report written", "user", r.UserID, "path", path)
	return nil
}

// WriteXLSX streams the report as a workbook to out.
func WriteXLSX(out io.Writer, r Report) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer closeWorkbook(f)

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func buildWorkbook(r Report) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9EAD3"}},
	})
	if err != nil {
		closeWorkbook(f)
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for i, t := range r.Tables {
		if err := writeTable(f, i, t, header); err != nil {
			closeWorkbook(f)
			return nil, fmt.Errorf("writing sheet %s: %w", t.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeTable(f *excelize.File, index int, t Table, headerStyle int) error {
	if index == 0 {
		if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(t.Name); err != nil {
		return err
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return err
		}
	}

	if len(t.Header) == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(t.Header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(t.Name, "A", last, 16); err != nil {
		return err
	}
	return f.SetPanes(t.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func closeWorkbook(f *excelize.File) {
	if err := f.Close(); err != nil {
		slog.Warn("failed to close workbook", "error", err)
	}
}
