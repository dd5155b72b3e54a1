package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuniko-soft/webaudit/internal/auditor"
	"github.com/yuniko-soft/webaudit/internal/crawler"
	"github.com/yuniko-soft/webaudit/internal/model"
)

// ErrEngineReused is returned when Run is called twice on one engine.
var ErrEngineReused = errors.New("engine already ran: create a new engine per run")

// engineName is the auditor field value for findings the engine itself
// emits (crawl and parse failures).
const engineName = "engine"

// Engine runs one audit: it drains the frontier page by page, fetching,
// parsing, and dispatching to the auditors, and accumulates everything
// into a RunReport. An Engine is single-use; run state is not reset.
//
// Design decision: The crawl loop is strictly sequential. Fetch is the
// only blocking step, and the politeness rate limit makes concurrent
// fetching of one site pointless; in exchange the finding stream has a
// total order (crawl order, then auditor registration order, then
// emission order) that makes runs diffable.
type Engine struct {
	frontier *crawler.Frontier
	fetcher  *crawler.Fetcher
	registry *auditor.Registry

	// maxPages is the page budget, enforced at dequeue. URLs still queued
	// when the budget runs out are reported, not fetched.
	maxPages int

	logger *slog.Logger
	ran    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPages sets the page budget.
func WithMaxPages(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine from its collaborators. The frontier is expected
// to be freshly seeded; the registry's auditors define the per-page
// dispatch order.
func New(frontier *crawler.Frontier, fetcher *crawler.Fetcher, registry *auditor.Registry, opts ...Option) *Engine {
	e := &Engine{
		frontier: frontier,
		fetcher:  fetcher,
		registry: registry,
		maxPages: 50,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the crawl-and-audit loop until the frontier is exhausted,
// the page budget is spent, or the context is cancelled. Page-level
// failures become findings and never abort the run; the returned error is
// non-nil only for reuse or context cancellation, and the report is valid
// in the cancellation case too.
func (e *Engine) Run(ctx context.Context, seedURL string) (*model.RunReport, error) {
	if e.ran {
		return nil, ErrEngineReused
	}
	e.ran = true

	// The report records the canonical seed so saved runs and later
	// compare lookups agree on one URL form.
	if canonical, err := crawler.Canonicalize(seedURL); err == nil {
		seedURL = canonical
	}

	report := model.NewRunReport(seedURL)
	report.Auditors = e.registry.Names()
	start := time.Now()

	defer func() {
		report.FrontierRemaining = e.frontier.Remaining()
		report.Elapsed = time.Since(start)
	}()

	e.logger.Info("starting audit run",
		"seed", seedURL,
		"max_pages", e.maxPages,
		"auditors", report.Auditors)

	for report.PagesVisited < e.maxPages {
		pageURL, ok := e.frontier.Next()
		if !ok {
			break
		}

		select {
		case <-ctx.Done():
			e.logger.Warn("audit run cancelled", "seed", seedURL)
			return report, ctx.Err()
		default:
		}

		e.visit(ctx, pageURL, report)
	}

	e.logger.Info("audit run finished",
		"seed", seedURL,
		"pages_visited", report.PagesVisited,
		"pages_failed", report.PagesFailed,
		"findings", len(report.Findings),
		"frontier_remaining", e.frontier.Remaining())

	return report, nil
}

// visit processes one URL: fetch, parse, audit, expand.
func (e *Engine) visit(ctx context.Context, pageURL string, report *model.RunReport) {
	e.logger.Debug("fetching page", "url", pageURL)

	page, err := e.fetcher.Fetch(ctx, pageURL)
	report.PagesVisited++
	if err != nil {
		report.PagesFailed++
		report.AddFinding(crawlErrorFinding(pageURL, err))
		e.logger.Debug("fetch failed", "url", pageURL, "error", err)
		return
	}

	if err := crawler.ParseDocument(page); err != nil {
		report.PagesFailed++
		report.AddFinding(parseErrorFinding(pageURL, err))
		e.logger.Debug("parse failed", "url", pageURL, "error", err)
		return
	}

	report.AddFindings(e.registry.RunAll(page))

	// Link expansion comes after auditing so findings for this page are
	// complete before any neighbor is admitted.
	for _, link := range page.Links {
		e.frontier.Offer(link)
	}
}

// crawlErrorFinding converts a fetch failure into its single finding.
func crawlErrorFinding(pageURL string, err error) model.Finding {
	return model.NewFinding(pageURL, engineName, model.SeverityError,
		model.CategoryCrawlError,
		fmt.Sprintf("failed to fetch %s: %v", pageURL, err))
}

// parseErrorFinding converts a parse failure into its single finding.
func parseErrorFinding(pageURL string, err error) model.Finding {
	return model.NewFinding(pageURL, engineName, model.SeverityError,
		model.CategoryParseError,
		fmt.Sprintf("failed to parse %s: %v", pageURL, err))
}
