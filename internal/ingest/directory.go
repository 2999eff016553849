package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches the PDFs directly inside the root folder.
const DefaultPattern = "*.pdf"

// Document is one candidate input file.
type Document struct {
	Path    string
	Size    int64
	ModTime time.Time
}

type DirStats struct {
	Scanned uint32 // entries visited
	Matched uint32 // documents returned
	Skipped uint32 // hidden or unsupported entries that matched the pattern's shape
	Failed  uint32 // entries that could not be read while walking
}

// Options controls ListDocuments.
type Options struct {
	Pattern    string // doublestar glob relative to root; "**/*.pdf" recurses
	SkipHidden bool
}

// ListDocuments walks root and returns the PDF files whose slash-separated path relative to
// root matches opts.Pattern, compared case-insensitively. Results are in lexical path order.
// An existing root with no matching files is not an error.
func ListDocuments(ctx context.Context, root string, opts Options) ([]Document, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	pattern = strings.ToLower(filepath.ToSlash(pattern))
	if !doublestar.ValidatePattern(pattern) {
		return nil, DirStats{}, fmt.Errorf("invalid pattern %q", opts.Pattern)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, DirStats{}, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, DirStats{}, fmt.Errorf("root %s is not a directory", root)
	}

	recursive := strings.Contains(pattern, "**")
	patternDepth := strings.Count(pattern, "/")

	var (
		docs  []Document
		stats DirStats
	)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return walkErr
		}
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if opts.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive && strings.Count(rel, "/") >= patternDepth {
				return filepath.SkipDir
			}
			return nil
		}

		ok, err := doublestar.Match(pattern, strings.ToLower(rel))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) || !d.Type().IsRegular() {
			stats.Skipped++
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			stats.Failed++
			return nil
		}
		stats.Matched++
		docs = append(docs, Document{Path: path, Size: fi.Size(), ModTime: fi.ModTime()})
		return nil
	})
	if err != nil {
		return docs, stats, fmt.Errorf("walk: %w", err)
	}
	return docs, stats, nil
}

// Paths returns the document paths in order.
func Paths(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}
