package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-native" | "pdf-text"
	Duration time.Duration
	Warnings []string
}

// FieldExtractor is Stage 2: text -> fields.
type FieldExtractor interface {
	ExtractFields(text string) Row
}
