package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID      contextKey = "run_id"
	ContextKeySourcePath contextKey = "source_path"
)

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithSourcePath adds the document being processed to the context
func WithSourcePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ContextKeySourcePath, path)
}

// SourcePathFromContext extracts the document path from context
func SourcePathFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(ContextKeySourcePath).(string); ok {
		return p
	}
	return ""
}

// WithTimeout creates a context with the specified timeout; a non-positive timeout returns a plain cancelable context.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
