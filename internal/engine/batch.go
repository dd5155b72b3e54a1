package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// BatchRunner audits multiple sites concurrently. Each site still gets
// its own sequential engine, so the per-site ordering guarantees are
// unchanged; only whole runs overlap.
//
// Design decision: We use a factory rather than sharing one engine
// because engines are single-use and hold per-run state (the frontier's
// seen-set above all). A fresh engine per seed keeps runs isolated.
type BatchRunner struct {
	// engineFactory builds a fresh engine for one seed URL.
	engineFactory func(seedURL string) (*Engine, error)

	// concurrency is the maximum number of simultaneous runs.
	concurrency int

	logger *slog.Logger
}

// BatchResult is the outcome of one seed's run. Err is set when the run
// could not start (bad seed) or was cancelled; the report may be non-nil
// alongside a cancellation error.
type BatchResult struct {
	// SeedURL is the seed this result belongs to.
	SeedURL string

	// Report holds the run's findings, nil when the engine could not start.
	Report *model.RunReport

	// Err is the startup or cancellation error, if any.
	Err error
}

// BatchOption configures a BatchRunner.
type BatchOption func(*BatchRunner)

// WithConcurrency sets the maximum number of concurrent runs.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets the batch-level logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRunner) {
		b.logger = logger
	}
}

// NewBatchRunner creates a batch runner around an engine factory.
func NewBatchRunner(engineFactory func(seedURL string) (*Engine, error), opts ...BatchOption) *BatchRunner {
	b := &BatchRunner{
		engineFactory: engineFactory,
		concurrency:   4,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run audits every seed and returns one result per seed, in input order.
// A failing seed never stops the others; its failure is recorded in its
// BatchResult. The error return is non-nil only when the context was
// cancelled.
func (b *BatchRunner) Run(ctx context.Context, seeds []string) ([]BatchResult, error) {
	b.logger.Info("starting batch audit",
		"sites", len(seeds),
		"concurrency", b.concurrency)
	start := time.Now()

	results := make([]BatchResult, len(seeds))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				mu.Lock()
				results[i] = BatchResult{SeedURL: seed, Err: ctx.Err()}
				mu.Unlock()
				return nil
			default:
			}

			result := b.runOne(ctx, seed)

			mu.Lock()
			results[i] = result
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only propagates a cancelled
	// context observed by errgroup itself.
	if err := g.Wait(); err != nil {
		return results, err
	}

	b.logger.Info("batch audit finished",
		"sites", len(seeds),
		"elapsed", time.Since(start))

	return results, ctx.Err()
}

// runOne audits a single seed.
func (b *BatchRunner) runOne(ctx context.Context, seed string) BatchResult {
	eng, err := b.engineFactory(seed)
	if err != nil {
		b.logger.Warn("skipping seed", "seed", seed, "error", err)
		return BatchResult{SeedURL: seed, Err: err}
	}

	report, err := eng.Run(ctx, seed)
	if err != nil {
		b.logger.Warn("run ended early", "seed", seed, "error", err)
	}
	return BatchResult{SeedURL: seed, Report: report, Err: err}
}
