package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Report summarizes a directory ingestion.
type Report struct {
	Files    int
	Ingested int
	Skipped  int
	Failed   int
	Triples  int

	// Results holds one entry per successfully handled file, sorted by path.
	Results []*Result

	errs []error
}

// Err joins the per-file errors, or returns nil when every file succeeded.
func (r *Report) Err() error {
	return errors.Join(r.errs...)
}

// IngestDir walks root recursively and ingests every regular file on the
// worker pool. Hidden files and directories are skipped. Per-file failures
// are collected in the report; only walk errors and cancellation are
// returned directly.
func (p *Pipeline) IngestDir(ctx context.Context, root string) (*Report, error) {
	paths, err := collectFiles(root)
	if err != nil {
		return nil, err
	}
	p.logger.Info("ingesting directory", "root", root, "files", len(paths))

	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, len(paths), 10)
	}

	report := &Report{Files: len(paths)}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(path string, res *Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			report.Failed++
			report.errs = append(report.errs, fmt.Errorf("%s: %w", path, err))
		case res.Skipped:
			report.Skipped++
			report.Results = append(report.Results, res)
		default:
			report.Ingested++
			report.Triples += res.Triples
			report.Results = append(report.Results, res)
		}
		if tracker != nil {
			tracker.Record(res, err)
		}
	}

	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			res, err := p.IngestFile(ctx, path)
			record(path, res, err)
		})
		if submitErr != nil {
			wg.Done()
			record(path, nil, submitErr)
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}
	slices.SortFunc(report.Results, func(a, b *Result) int {
		return strings.Compare(a.Path, b.Path)
	})

	p.logger.Info("directory ingested",
		"root", root,
		"ingested", report.Ingested,
		"skipped", report.Skipped,
		"failed", report.Failed)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func collectFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}
