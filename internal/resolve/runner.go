package resolve

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// AdapterFactory builds one adapter chain plus its teardown. Sequential
// runs call it once; bounded-parallel runs call it once per worker so every
// worker owns its rendering session exclusively.
type AdapterFactory func(ctx context.Context) ([]Adapter, func(), error)

// CommitFn receives each finished Result. The runner guarantees it is
// called from a single goroutine, in both execution modes.
type CommitFn func(Result) error

// DefaultParallelWorkers is the bounded-parallel worker count used when
// parallel mode is requested without an explicit width.
const DefaultParallelWorkers = 4

type RunnerConfig struct {
	Factory     AdapterFactory
	MaxAttempts int
	// Parallel is the worker count; values below 2 select sequential
	// mode with one shared session chain.
	Parallel int
}

type Runner struct {
	cfg RunnerConfig
}

func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Runner{cfg: cfg}
}

// Run resolves every row and hands each Result to commit as it arrives.
// Context cancellation stops new rows while letting in-flight rows finish
// and commit. A fatal adapter error has the same effect and is returned
// after all finished work has been committed.
func (r *Runner) Run(ctx context.Context, rows []Row, commit CommitFn) error {
	if r.cfg.Parallel > 1 {
		return r.runParallel(ctx, rows, commit)
	}
	return r.runSequential(ctx, rows, commit)
}

func (r *Runner) runSequential(ctx context.Context, rows []Row, commit CommitFn) error {
	adapters, teardown, err := r.cfg.Factory(ctx)
	if err != nil {
		return fmt.Errorf("build adapter chain: %w", err)
	}
	defer teardown()

	orch := NewOrchestrator(adapters, r.cfg.MaxAttempts)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := orch.Resolve(ctx, row)
		// Whatever the row produced is committed before the error
		// decision; partial progress survives a fatal abort.
		if cerr := commit(res); cerr != nil {
			return fmt.Errorf("commit %s: %w", row.Key, cerr)
		}
		logResult(res)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runParallel(ctx context.Context, rows []Row, commit CommitFn) error {
	jobs := make(chan Row)
	results := make(chan Result)

	workers, wctx := errgroup.WithContext(ctx)
	go func() {
		defer close(jobs)
		for _, row := range rows {
			select {
			case jobs <- row:
			case <-wctx.Done():
				return
			}
		}
	}()

	for i := 0; i < r.cfg.Parallel; i++ {
		workers.Go(func() error {
			adapters, teardown, err := r.cfg.Factory(wctx)
			if err != nil {
				return fmt.Errorf("build adapter chain: %w", err)
			}
			defer teardown()
			orch := NewOrchestrator(adapters, r.cfg.MaxAttempts)
			for row := range jobs {
				res, rerr := orch.Resolve(wctx, row)
				// The collector drains results until the group is
				// done, so in-flight rows always deliver, fatal
				// abort included.
				results <- res
				if rerr != nil {
					return rerr
				}
			}
			return nil
		})
	}

	var commitErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range results {
			if commitErr == nil {
				commitErr = commit(res)
			}
			logResult(res)
		}
	}()

	err := workers.Wait()
	close(results)
	<-done

	if commitErr != nil {
		return fmt.Errorf("commit: %w", commitErr)
	}
	return err
}

func logResult(res Result) {
	if res.Found {
		log.Printf("weight-resolve product=%q grams=%.0f method=%s", res.Name, res.Grams, res.Method)
		return
	}
	log.Printf("weight-resolve product=%q unresolved, queued for manual review", res.Name)
}
