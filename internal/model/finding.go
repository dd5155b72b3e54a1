package model

// Categories used by the engine itself. Auditors define their own category
// strings (e.g. "color", "meta", "content"); these three are reserved for
// failures surfaced by the crawl loop and the dispatch boundary.
const (
	// CategoryCrawlError marks pages that could not be fetched after retries.
	CategoryCrawlError = "crawl-error"

	// CategoryParseError marks pages whose body was not HTML at all.
	CategoryParseError = "parse-error"

	// CategoryAuditorFailure marks an auditor that panicked on a page.
	CategoryAuditorFailure = "auditor-failure"
)

// Finding is a single audit observation tied to a page and an auditor.
// Findings are immutable once produced and accumulate in an append-only
// sequence for the whole run: crawl order first, then auditor registration
// order, then emission order within an auditor.
type Finding struct {
	// PageURL is the canonical URL of the audited page.
	PageURL string `json:"page_url"`

	// Auditor is the name of the auditor that produced this finding.
	// The engine uses "engine" for crawl and parse failures.
	Auditor string `json:"auditor"`

	// Severity is the risk level of the finding.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity, kept alongside the
	// numeric value so serialized reports stay readable without this package.
	SeverityText string `json:"severity_text"`

	// Category groups related findings (e.g. "color", "texture", "meta",
	// "heading", "content", or one of the reserved engine categories).
	Category string `json:"category"`

	// Message is the human-readable description of the observation.
	Message string `json:"message"`

	// Property is the rule or attribute that was checked
	// (e.g. "background-color", "title-length", "word-count").
	Property string `json:"property,omitempty"`

	// Expected describes what the rule required.
	Expected string `json:"expected,omitempty"`

	// Found is the offending value that was actually observed
	// (e.g. a rogue hex color, the measured title length).
	Found string `json:"found,omitempty"`

	// Selector locates the element within the page when known
	// (e.g. "section.hero-section > h2.heading-xl").
	Selector string `json:"selector,omitempty"`
}

// NewFinding creates a Finding with the severity text filled in.
// Use struct literals for the optional detail fields.
func NewFinding(pageURL, auditor string, severity Severity, category, message string) Finding {
	return Finding{
		PageURL:      pageURL,
		Auditor:      auditor,
		Severity:     severity,
		SeverityText: severity.String(),
		Category:     category,
		Message:      message,
	}
}
