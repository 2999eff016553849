package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// CSVSink writes the table as RFC 4180 CSV with a header line, replacing any existing file.
type CSVSink struct {
	path   string
	logger *slog.Logger
}

func NewCSVSink(path string, logger *slog.Logger) *CSVSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSink{path: path, logger: logger}
}

func (s *CSVSink) Destination() string { return s.path }

func (s *CSVSink) Write(ctx context.Context, t Table) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return common.OutputWriteError(s.path, err)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if len(t.Columns) > 0 {
		_ = w.Write(t.Columns)
	}
	_ = w.WriteAll(t.Rows)
	if err := w.Error(); err != nil {
		return common.OutputWriteError(s.path, err)
	}
	if err := writeFile(s.path, buf.Bytes()); err != nil {
		return common.OutputWriteError(s.path, err)
	}
	s.logger.Info("export.csv.ok",
		"path", s.path,
		"rows", t.Len(),
		"columns", len(t.Columns),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
