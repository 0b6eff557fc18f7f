package merge

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/sem-merge/internal/redact"
)

// DefaultTimeout bounds a single merge call.
const DefaultTimeout = 2 * time.Minute

// RemoteSource returns the upstream version of a file.
type RemoteSource interface {
	Content(ctx context.Context, path string) (string, bool)
}

// Merger produces a merged document from two versions.
type Merger interface {
	Merge(ctx context.Context, local, remote, path string) (string, error)
}

// Store remembers settled merge outputs. *cache.Cache satisfies it.
type Store interface {
	CertifiedResult(candidate, remote, filePath string) (string, bool)
	RecordMerge(remote, filePath, merged string)
}

// Options tunes an Engine.
type Options struct {
	// Timeout bounds each merge call. Zero means DefaultTimeout.
	Timeout time.Duration
	// Concurrency caps files in flight. Zero or less means no cap.
	Concurrency int
	// SkipSecrets skips files whose local or remote text looks like it
	// carries a credential, so it is never sent to the provider.
	SkipSecrets bool
	// SkipPaths are glob patterns of files never sent to the provider.
	SkipPaths []string
	Logger    *zap.Logger
}

// Engine runs the per-file merge decision over a set of files.
type Engine struct {
	remote RemoteSource
	merger Merger
	store  Store
	opts   Options
	log    *zap.Logger
}

// NewEngine wires the collaborators of a run.
func NewEngine(remote RemoteSource, merger Merger, store Store, opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{remote: remote, merger: merger, store: store, opts: opts, log: log}
}

// ProcessFiles handles every file concurrently and collects the results in
// input order. A failing file never affects the others.
func (e *Engine) ProcessFiles(ctx context.Context, files []string) Result {
	results := make([]FileResult, len(files))

	var g errgroup.Group
	if e.opts.Concurrency > 0 {
		g.SetLimit(e.opts.Concurrency)
	}
	for i, path := range files {
		g.Go(func() error {
			results[i] = e.ProcessFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Files: results, Total: len(files)}
	var errs *multierror.Error
	for _, r := range results {
		if r.Outcome.Succeeded() {
			res.Successes++
		}
		if r.Err != nil {
			errs = multierror.Append(errs, r.Err)
		}
	}
	res.Err = errs.ErrorOrNil()
	return res
}

// ProcessFile runs the decision sequence for one file.
func (e *Engine) ProcessFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	outcome, err := e.process(ctx, path)
	res := FileResult{Path: path, Outcome: outcome, Duration: time.Since(start)}

	fields := []zap.Field{
		zap.String("path", path),
		zap.String("outcome", string(outcome)),
		zap.Duration("duration", res.Duration),
	}
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		e.log.Warn("merge failed", append(fields, zap.String("error", redact.Secrets(err.Error())))...)
	} else {
		e.log.Debug("file processed", fields...)
	}
	return res
}

func (e *Engine) process(ctx context.Context, path string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeFailed, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("stat: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("reading local file: %w", err)
	}
	local := string(data)

	remote, ok := e.remote.Content(ctx, path)
	if !ok {
		return OutcomeSkippedAbsent, nil
	}
	if local == remote {
		return OutcomeSkippedNoChange, nil
	}
	if e.guarded(path, local, remote) {
		return OutcomeSkippedSecret, nil
	}

	if _, ok := e.store.CertifiedResult(local, remote, path); ok {
		return OutcomeCertified, nil
	}

	mctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	merged, err := e.merger.Merge(mctx, local, remote, path)
	if err != nil {
		return OutcomeFailed, err
	}

	e.store.RecordMerge(remote, path, merged)

	if err := os.WriteFile(path, []byte(merged), info.Mode().Perm()); err != nil {
		return OutcomeFailed, fmt.Errorf("writing merged file: %w", err)
	}
	return OutcomeMerged, nil
}

func (e *Engine) guarded(path, local, remote string) bool {
	if redact.MatchesPath(path, e.opts.SkipPaths) {
		return true
	}
	if !e.opts.SkipSecrets {
		return false
	}
	return redact.ContainsSecret(local) || redact.ContainsSecret(remote)
}
