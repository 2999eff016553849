package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// Sink persists a whole table in one write.
type Sink interface {
	Write(ctx context.Context, t Table) error
	Destination() string
}

// NewSink picks the writer from the destination's extension: .xlsx or .csv.
func NewSink(path string, logger *slog.Logger) (Sink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return NewXLSXSink(path, logger), nil
	case ".csv":
		return NewCSVSink(path, logger), nil
	default:
		return nil, common.ConfigError(fmt.Sprintf("unsupported output format %q (use .xlsx or .csv)", filepath.Ext(path)), nil)
	}
}

// writeFile replaces path with data, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
