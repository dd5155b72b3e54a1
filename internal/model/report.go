package model

import "time"

// RunReport accumulates everything produced by one audit run.
// It is populated by the engine as the crawl progresses and handed to the
// report writers and the history database when the frontier is exhausted.
type RunReport struct {
	// SeedURL is the canonical URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// DateAudited is when the run started.
	DateAudited time.Time `json:"date_audited"`

	// Findings is the append-only ordered finding sequence.
	// Order: crawl order, then auditor registration order, then emission
	// order within an auditor.
	Findings []Finding `json:"findings"`

	// PagesVisited is the number of pages fetched (successfully or not).
	PagesVisited int `json:"pages_visited"`

	// PagesFailed is the number of pages that failed to fetch or parse.
	PagesFailed int `json:"pages_failed"`

	// FrontierRemaining is how many discovered URLs were still queued when
	// the run ended. Non-zero means the page budget stopped the crawl.
	FrontierRemaining int `json:"frontier_remaining"`

	// Auditors lists the active auditors in registration order.
	Auditors []string `json:"auditors"`

	// Elapsed is the total wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// NewRunReport creates a report for a run starting now.
func NewRunReport(seedURL string) *RunReport {
	return &RunReport{
		SeedURL:     seedURL,
		DateAudited: time.Now(),
		Findings:    make([]Finding, 0),
	}
}

// AddFinding appends a finding to the run's sequence.
func (r *RunReport) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
}

// AddFindings appends a batch of findings, preserving their order.
func (r *RunReport) AddFindings(fs []Finding) {
	r.Findings = append(r.Findings, fs...)
}

// Summary derives the aggregate counters from the finding sequence.
// It is recomputed at report time rather than maintained incrementally,
// so the finding sequence stays the single source of truth.
func (r *RunReport) Summary() RunSummary {
	s := RunSummary{
		SeedURL:           r.SeedURL,
		DateAudited:       r.DateAudited,
		PagesVisited:      r.PagesVisited,
		PagesFailed:       r.PagesFailed,
		FrontierRemaining: r.FrontierRemaining,
		TotalFindings:     len(r.Findings),
		ByCategory:        make(map[string]int),
	}

	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityError:
			s.ErrorCount++
		case SeverityWarning:
			s.WarningCount++
		case SeverityInfo:
			s.InfoCount++
		}
		s.ByCategory[f.Category]++
	}

	return s
}

// FindingsBySeverity returns the findings with the given severity,
// preserving their order in the run sequence.
func (r *RunReport) FindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range r.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}

// FindingsByAuditor returns the findings produced by the named auditor.
func (r *RunReport) FindingsByAuditor(auditor string) []Finding {
	var result []Finding
	for _, f := range r.Findings {
		if f.Auditor == auditor {
			result = append(result, f)
		}
	}
	return result
}

// RunSummary holds the aggregate counters for one run.
// Derived from the finding sequence; never persisted independently.
type RunSummary struct {
	// SeedURL is the crawl's starting URL.
	SeedURL string `json:"seed_url"`

	// DateAudited is when the run started.
	DateAudited time.Time `json:"date_audited"`

	// PagesVisited is the number of pages fetched.
	PagesVisited int `json:"pages_visited"`

	// PagesFailed is the number of pages that failed to fetch or parse.
	PagesFailed int `json:"pages_failed"`

	// FrontierRemaining is the count of queued-but-unfetched URLs at run end.
	FrontierRemaining int `json:"frontier_remaining"`

	// ErrorCount is the number of error-severity findings.
	ErrorCount int `json:"error_count"`

	// WarningCount is the number of warning-severity findings.
	WarningCount int `json:"warning_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`

	// TotalFindings is the total finding count.
	TotalFindings int `json:"total_findings"`

	// ByCategory counts findings per category.
	ByCategory map[string]int `json:"by_category,omitempty"`
}
