package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-docassets"
	"github.com/alnah/go-docassets/internal/fileutil"
	"github.com/alnah/go-docassets/internal/hints"
)

// dirPermissions is rwxr-x---: owner full, group read+execute.
const dirPermissions = 0o750

// Sentinel errors for batch operations.
var (
	ErrReadDocument  = errors.New("failed to read document")
	ErrWriteDocument = errors.New("failed to write document")
	ErrDiagnostics   = errors.New("references left unchanged")
)

// Rewriter is the engine surface the batch needs.
type Rewriter interface {
	Rewrite(input docassets.Input) *docassets.Result
}

// Compile-time interface implementation check.
var _ Rewriter = (*docassets.Engine)(nil)

// RewriteResult holds the outcome of a single document.
type RewriteResult struct {
	InputPath   string
	OutputPath  string
	Copied      int
	Diagnostics []docassets.Diagnostic
	Err         error
	Duration    time.Duration
}

// rewriteBatch rewrites docs with at most workers documents in flight.
// A failing document never stops the others; after cancellation the
// remaining documents report ctx.Err().
func rewriteBatch(ctx context.Context, rw Rewriter, docs []Document, workers int) []RewriteResult {
	if len(docs) == 0 {
		return nil
	}

	results := make([]RewriteResult, len(docs))

	var g errgroup.Group
	g.SetLimit(max(1, min(workers, len(docs))))

	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = RewriteResult{InputPath: doc.InputPath, Err: err}
				return nil
			}
			results[i] = rewriteFile(rw, doc)
			return nil
		})
	}

	// Error ignored: workers record failures in results and always return nil.
	_ = g.Wait()
	return results
}

// rewriteFile rewrites one document against its own directory and writes
// the result atomically.
func rewriteFile(rw Rewriter, doc Document) RewriteResult {
	start := time.Now()
	result := RewriteResult{InputPath: doc.InputPath, OutputPath: doc.OutputPath}

	content, err := os.ReadFile(doc.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadDocument, err)
		result.Duration = time.Since(start)
		return result
	}

	baseDir := filepath.Dir(doc.InputPath)
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	res := rw.Rewrite(docassets.Input{Text: string(content), BaseDir: baseDir})
	result.Copied = len(res.Copied)
	result.Diagnostics = res.Diagnostics

	if err := os.MkdirAll(filepath.Dir(doc.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: creating output directory: %v%s", ErrWriteDocument, err, hints.ForOutputDirectory())
		result.Duration = time.Since(start)
		return result
	}

	if err := fileutil.WriteFileAtomic(doc.OutputPath, res.Text); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteDocument, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	return result
}

// ResultSummary tallies a batch.
type ResultSummary struct {
	Succeeded   int
	Failed      int
	Copied      int
	Diagnostics int
}

// countResults tallies succeeded and failed documents, copies and diagnostics.
func countResults(results []RewriteResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		summary.Copied += r.Copied
		summary.Diagnostics += len(r.Diagnostics)
	}
	return summary
}

// printResults writes per-document lines and a summary, returning the tally.
// Failures and diagnostics always go to stderr; successes are silenced by quiet.
func printResults(results []RewriteResult, quiet, verbose bool, env *Environment) ResultSummary {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		reportDiagnostics(env.Stderr, r.InputPath, r.Diagnostics)

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d copied, %v)\n",
				r.InputPath, r.OutputPath, r.Copied, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Wrote %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed, %d assets copied, %d references unchanged\n",
			summary.Succeeded, summary.Failed, summary.Copied, summary.Diagnostics)
	}

	return summary
}

// reportDiagnostics writes one warning per reference left unchanged.
func reportDiagnostics(w io.Writer, path string, diags []docassets.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "warning: %s: %s%s\n", path, d, hints.ForCopyFailure(d.Err))
	}
}
