package auditor

import (
	"fmt"
	"log/slog"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// Auditor inspects one parsed page and reports findings. Implementations
// must be stateless with respect to pages: the same page must always
// yield the same findings, and no state may leak between pages.
//
// Design decision: Audit returns a slice instead of streaming findings
// through a channel because:
//  1. Auditors are synchronous and page-scoped; there is nothing to stream
//  2. The engine owns finding ordering, which a slice preserves trivially
//  3. Implementations stay free of concurrency concerns
type Auditor interface {
	// Name returns the auditor's stable identifier, used in findings
	// and CLI flags.
	Name() string

	// Audit inspects the page and returns its findings in emission order.
	Audit(page *model.Page) []model.Finding
}

// Registry holds auditors in registration order and dispatches pages to
// them. Registration order is part of the engine's ordering guarantee:
// findings for one page appear grouped by auditor in this order.
type Registry struct {
	auditors []Auditor
	logger   *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends an auditor. Order of registration is preserved in
// dispatch order.
func (r *Registry) Register(a Auditor) {
	r.auditors = append(r.auditors, a)
}

// Names returns the registered auditor names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.auditors))
	for _, a := range r.auditors {
		names = append(names, a.Name())
	}
	return names
}

// Len returns the number of registered auditors.
func (r *Registry) Len() int {
	return len(r.auditors)
}

// RunAll dispatches the page to every auditor in registration order and
// concatenates their findings.
//
// A panicking auditor is isolated: the panic is recovered, converted into
// a single auditor-failure finding, and the remaining auditors still run.
// One misbehaving plugin must never cost the page its other audits or the
// run its life.
func (r *Registry) RunAll(page *model.Page) []model.Finding {
	var findings []model.Finding

	for _, a := range r.auditors {
		findings = append(findings, r.runOne(a, page)...)
	}

	return findings
}

// runOne dispatches to a single auditor with panic isolation.
func (r *Registry) runOne(a Auditor, page *model.Page) (findings []model.Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("auditor panicked",
				"auditor", a.Name(),
				"url", page.URL,
				"panic", rec)
			findings = []model.Finding{
				model.NewFinding(
					page.URL,
					a.Name(),
					model.SeverityError,
					model.CategoryAuditorFailure,
					fmt.Sprintf("auditor %s failed on %s: %v", a.Name(), page.URL, rec),
				),
			}
		}
	}()

	return a.Audit(page)
}
