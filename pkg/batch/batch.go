// Package batch validates many MIDI files concurrently
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/james-see/smfcheck/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome for one file. Err is set when the file could not be
// read; Report is nil in that case.
type Result struct {
	Path   string
	Report *validator.FileReport
	Err    error
}

// OK reports whether the file was read and passed validation
func (r Result) OK() bool {
	return r.Err == nil && r.Report != nil && r.Report.OK
}

// Options configures a batch run
type Options struct {
	Validator validator.Options
	// Jobs bounds concurrent validations, defaults to runtime.NumCPU()
	Jobs int
	// Progress is called from worker goroutines as each file completes
	Progress func(done, total int, r Result)
	Logger   *slog.Logger
}

// ValidateFile reads path and validates its contents
func ValidateFile(path string, opts validator.Options) (*validator.FileReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return validator.Validate(path, data, opts), nil
}

// Run validates every path on a bounded pool of workers. Results come back
// sorted by path, case-insensitively. When ctx is cancelled no new files are
// started and the results gathered so far are returned with ctx.Err().
func Run(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(paths))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := ValidateFile(p, opts.Validator)
			r := Result{Path: p, Report: report, Err: err}
			if err != nil {
				logger.Warn("read failed", "path", p, "error", err)
			} else {
				logger.Debug("validated", "path", p, "ok", report.OK,
					"errors", report.ErrorCount(), "warnings", report.WarningCount())
			}

			mu.Lock()
			results = append(results, r)
			done := len(results)
			mu.Unlock()

			if opts.Progress != nil {
				opts.Progress(done, len(paths), r)
			}
			return nil
		})
	}

	err := g.Wait()
	sort.Slice(results, func(i, j int) bool {
		return strings.ToLower(results[i].Path) < strings.ToLower(results[j].Path)
	})
	if err == nil {
		err = ctx.Err()
	}
	return results, err
}

// Reports returns the reports of all readable files, in result order
func Reports(results []Result) []*validator.FileReport {
	out := make([]*validator.FileReport, 0, len(results))
	for _, r := range results {
		if r.Report != nil {
			out = append(out, r.Report)
		}
	}
	return out
}

// Summary counts passing and failing results. Unreadable files count as failed.
func Summary(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.OK() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
