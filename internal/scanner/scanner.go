// Package scanner runs the per-page pipeline: render the page, apply the
// heuristic detector, invoke the external linter, and merge the two issue
// streams into one deduplicated PageResult. Batch scanning fans pages out
// over a bounded worker pool and restores input order before returning, so
// the scorer's input contract is independent of pool size.
package scanner

import (
	"context"
	"fmt"
	"sync"

	"github.com/a11yscan/a11yscan/internal/detect"
	"github.com/a11yscan/a11yscan/internal/linter"
	"github.com/a11yscan/a11yscan/internal/models"
	"github.com/a11yscan/a11yscan/internal/render"
)

// Linter is the slice of linter.Runner the scanner needs; tests substitute
// fakes.
type Linter interface {
	Run(ctx context.Context, url string) ([]models.Issue, error)
}

// Progress is invoked after each page completes. Batch calls it from worker
// goroutines; implementations must be safe for concurrent use.
type Progress func(result models.PageResult)

// Scanner coordinates one or more page scans.
type Scanner struct {
	NewRenderer render.Factory
	Linter      Linter // nil disables the external linter
	Detect      detect.Options
	Workers     int // pool size for Batch; <=1 scans strictly sequentially
	Progress    Progress
}

// ScanPage runs the full pipeline for one URL on the given renderer.
//
// Failure handling follows partial-failure isolation: a navigation failure
// or linter hard failure marks the page error; a detector evaluation
// failure fails open and only costs the heuristic issues.
func (s *Scanner) ScanPage(ctx context.Context, r render.Renderer, url string) models.PageResult {
	page := models.PageResult{URL: url, Status: models.PageStatusOK, Issues: []models.Issue{}}

	if err := r.Navigate(ctx, url); err != nil {
		page.Status = models.PageStatusError
		page.Issues = []models.Issue{linter.SentinelIssue(url, fmt.Errorf("navigation failed: %w", err))}
		return page
	}

	if snap, err := r.Snapshot(ctx); err == nil {
		page.Issues = append(page.Issues, detect.Run(snap, s.Detect)...)
	}
	// else: evaluation failed inside the page; no heuristic issues.

	if s.Linter != nil {
		lintIssues, err := s.Linter.Run(ctx, url)
		page.Issues = append(page.Issues, lintIssues...)
		if err != nil {
			page.Status = models.PageStatusError
		}
	}

	page.Issues = models.Dedupe(page.Issues)
	return page
}

// Batch scans every URL and returns results in input order. One page's
// failure never aborts the batch. Each worker owns one renderer, so the
// pool size bounds rendering-environment use.
func (s *Scanner) Batch(ctx context.Context, urls []string) []models.PageResult {
	results := make([]models.PageResult, len(urls))

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(urls) {
		workers = len(urls)
	}

	type job struct {
		index int
		url   string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := s.NewRenderer(ctx)
			for j := range jobs {
				var result models.PageResult
				if err != nil {
					result = models.PageResult{
						URL:    j.url,
						Status: models.PageStatusError,
						Issues: []models.Issue{linter.SentinelIssue(j.url, fmt.Errorf("renderer unavailable: %w", err))},
					}
				} else {
					result = s.ScanPage(ctx, r, j.url)
				}
				results[j.index] = result
				if s.Progress != nil {
					s.Progress(result)
				}
			}
			if r != nil {
				_ = r.Close()
			}
		}()
	}

	for i, url := range urls {
		jobs <- job{index: i, url: url}
	}
	close(jobs)
	wg.Wait()

	return results
}
