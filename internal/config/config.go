package config

import (
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These are chosen to be polite to target
// servers while keeping a typical small-site audit under a minute.
const (
	// DefaultMaxPages is the default page budget per run. This prevents
	// runaway crawling on large or infinitely-generating sites.
	// Override with the --max-pages CLI flag.
	DefaultMaxPages = 50

	// DefaultRateInterval is the minimum time between consecutive fetch
	// starts, enforced process-wide regardless of URL. 500ms is a
	// reasonable politeness setting for production websites.
	DefaultRateInterval = 500 * time.Millisecond

	// DefaultTimeout is the per-request timeout. Clearnet sites respond
	// quickly; 30 seconds covers slow shared hosting without stalling
	// the whole run on a dead endpoint.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is how many additional attempts are made for
	// transient failures (timeouts, 5xx). 4xx responses are never retried.
	DefaultRetries = 2

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is generous for HTML pages while preventing memory exhaustion.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent identifies webaudit in HTTP requests. A descriptive
	// User-Agent lets site operators identify audit traffic in their logs.
	DefaultUserAgent = "webaudit/1.0 (site design/SEO/content audit)"

	// DefaultConcurrency is the number of sites audited in parallel when
	// multiple seed URLs are given. Each site is still crawled
	// sequentially; this only parallelizes across sites.
	DefaultConcurrency = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "webaudit"
)

// Known auditor names, in canonical registration order.
var KnownAuditors = []string{"design", "seo", "content"}

// Config holds all options for an audit run. It is populated from CLI
// flags, validated once, and then read-only for the duration of the run.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without benefit.
type Config struct {
	// Seeds is the list of starting URLs, one audit run per seed.
	Seeds []string

	// MaxPages is the page budget: the maximum number of distinct pages
	// fetched per run. Zero means use DefaultMaxPages.
	MaxPages int

	// RateInterval is the minimum interval between fetch starts.
	RateInterval time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Retries is the number of retry attempts for transient fetch failures.
	Retries int

	// ExcludePatterns holds regular expressions; URLs matching any of them
	// are never admitted to the frontier.
	ExcludePatterns []string

	// Auditors is the set of active auditors in registration order.
	// Valid values: "design", "seo", "content".
	Auditors []string

	// PalettePath is the YAML file holding brand palette rule data.
	// Required when the design auditor is active.
	PalettePath string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Format selects the report output: "text", "csv", "json",
	// "markdown", or "excel".
	Format string

	// OutputPath is the report destination file. Empty means stdout
	// (except for excel, which requires a file path).
	OutputPath string

	// Concurrency is the number of seeds audited in parallel.
	Concurrency int

	// Verbose enables debug-level logging.
	Verbose bool

	// SaveToDB controls whether run results are written to the history
	// database for later comparison.
	SaveToDB bool

	// DBDir is the directory holding the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero. This also documents the defaults.
func NewConfig() *Config {
	return &Config{
		MaxPages:     DefaultMaxPages,
		RateInterval: DefaultRateInterval,
		Timeout:      DefaultTimeout,
		Retries:      DefaultRetries,
		Auditors:     append([]string(nil), KnownAuditors...),
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		Format:       "text",
		Concurrency:  DefaultConcurrency,
		SaveToDB:     true,
		DBDir:        XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for webaudit.
// On Linux: ~/.local/share/webaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any crawling begins;
// configuration errors are the only fatal errors in the system.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.RateInterval < 0 {
		return ErrInvalidRateInterval
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Retries < 0 {
		return ErrInvalidRetries
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	switch c.Format {
	case "text", "csv", "json", "markdown", "excel":
	default:
		return ErrUnknownFormat
	}
	if c.Format == "excel" && c.OutputPath == "" {
		return ErrExcelNeedsOutput
	}

	if len(c.Auditors) == 0 {
		return ErrNoAuditors
	}
	for _, name := range c.Auditors {
		if !knownAuditor(name) {
			return ErrUnknownAuditor
		}
	}

	// Exclusion patterns must compile; a typo here would silently change
	// the crawl scope, so fail fast instead.
	for _, p := range c.ExcludePatterns {
		if _, err := regexp.Compile(p); err != nil {
			return ErrInvalidExcludePattern
		}
	}

	return nil
}

// DesignActive reports whether the design auditor is in the active set.
func (c *Config) DesignActive() bool {
	for _, name := range c.Auditors {
		if name == "design" {
			return true
		}
	}
	return false
}

func knownAuditor(name string) bool {
	for _, k := range KnownAuditors {
		if k == name {
			return true
		}
	}
	return false
}
