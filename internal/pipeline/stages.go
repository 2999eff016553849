package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
)

// acquisition is the collecting-phase result for one document.
type acquisition struct {
	path       string
	text       extract.TextExtractionResult
	err        error
	startedAt  time.Time
	finishedAt time.Time
}

// collect acquires every document's text. Results keep the input order whatever the
// number of workers.
func (p *Pipeline) collect(ctx context.Context, paths []string) []acquisition {
	out := make([]acquisition, len(paths))
	workers := p.cfg.Workers
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers <= 1 {
		for i, path := range paths {
			out[i] = p.acquire(ctx, path)
		}
		return out
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		p.logger.Warn("pipeline.pool.unavailable", "workers", workers, "error", err)
		for i, path := range paths {
			out[i] = p.acquire(ctx, path)
		}
		return out
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		idx, docPath := i, path
		if err := pool.Submit(func() {
			defer wg.Done()
			out[idx] = p.acquire(ctx, docPath)
		}); err != nil {
			wg.Done()
			out[idx] = acquisition{path: docPath, err: common.DocumentReadError(docPath, fmt.Errorf("submit: %w", err))}
		}
	}
	wg.Wait()
	return out
}

func (p *Pipeline) acquire(ctx context.Context, path string) (a acquisition) {
	a = acquisition{path: path, startedAt: time.Now()}
	defer func() {
		if r := recover(); r != nil {
			a.err = common.DocumentReadError(path, fmt.Errorf("text extraction panic: %v", r))
		}
		a.finishedAt = time.Now()
	}()

	res, err := p.text.Extract(common.WithSourcePath(ctx, path), path)
	if err != nil {
		a.err = common.DocumentReadError(path, err)
		return a
	}
	a.text = res
	return a
}

// extractRow runs the field extractor on an acquired document and applies the
// validation filter.
func (p *Pipeline) extractRow(a acquisition) (extract.Row, constants.JobStatus) {
	row := p.fields.ExtractFields(a.text.Text).WithSource(a.path)
	if !row.HasValue(p.required) {
		return row, constants.JobStatusRejected
	}
	return row, constants.JobStatusExtracted
}
