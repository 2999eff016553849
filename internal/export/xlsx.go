package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// DefaultSheet is the worksheet holding the result table.
const DefaultSheet = "Invoices"

const (
	minColWidth = 10
	maxColWidth = 60
)

// XLSXSink writes the table as a single-sheet workbook, replacing any existing file.
type XLSXSink struct {
	path   string
	sheet  string
	logger *slog.Logger
}

func NewXLSXSink(path string, logger *slog.Logger) *XLSXSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXSink{path: path, sheet: DefaultSheet, logger: logger}
}

func (s *XLSXSink) Destination() string { return s.path }

func (s *XLSXSink) Write(ctx context.Context, t Table) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return common.OutputWriteError(s.path, err)
	}
	b, err := RenderXLSX(t, s.sheet)
	if err != nil {
		return common.OutputWriteError(s.path, err)
	}
	if err := writeFile(s.path, b); err != nil {
		return common.OutputWriteError(s.path, err)
	}
	s.logger.Info("export.xlsx.ok",
		"path", s.path,
		"rows", t.Len(),
		"columns", len(t.Columns),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// RenderXLSX returns the workbook bytes: a bold header row followed by one row per table row.
// All cells are written as text so identifiers such as "000123" keep their leading zeros.
func RenderXLSX(t Table, sheet string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	widths := make([]int, len(t.Columns))
	write := func(col, row int, v string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if n := utf8.RuneCountInString(v); n > widths[col-1] {
			widths[col-1] = n
		}
		return f.SetCellStr(sheet, cell, v)
	}

	for i, h := range t.Columns {
		if err := write(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	for r, cells := range t.Rows {
		for c, v := range cells {
			if err := write(c+1, r+2, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
	}

	if len(t.Columns) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, fmt.Errorf("header style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return nil, fmt.Errorf("header style: %w", err)
		}
		for i, w := range widths {
			name, _ := excelize.ColumnNumberToName(i + 1)
			_ = f.SetColWidth(sheet, name, name, float64(clamp(w+2, minColWidth, maxColWidth)))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
