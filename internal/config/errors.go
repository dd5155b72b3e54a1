package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrNoSeed is returned when no seed URL is given.
	ErrNoSeed = errors.New("no seed URL specified: provide at least one starting URL")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid page budget: must be positive")

	// ErrInvalidRateInterval is returned when the rate-limit interval is negative.
	ErrInvalidRateInterval = errors.New("invalid rate interval: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the retry count is negative.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidConcurrency is returned when the batch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrUnknownFormat is returned for unrecognized report formats.
	ErrUnknownFormat = errors.New("unknown report format: use text, csv, json, markdown, or excel")

	// ErrExcelNeedsOutput is returned when excel output has no file path.
	ErrExcelNeedsOutput = errors.New("excel format requires --output: workbooks cannot be written to stdout")

	// ErrNoAuditors is returned when the active auditor set is empty.
	ErrNoAuditors = errors.New("no auditors selected: choose from design, seo, content")

	// ErrUnknownAuditor is returned for unrecognized auditor names.
	ErrUnknownAuditor = errors.New("unknown auditor: choose from design, seo, content")

	// ErrInvalidExcludePattern is returned when an exclusion regexp does not compile.
	ErrInvalidExcludePattern = errors.New("invalid exclusion pattern: must be a valid regular expression")

	// ErrPaletteRequired is returned when the design auditor is active
	// but no palette file was provided.
	ErrPaletteRequired = errors.New("design auditor requires a palette file: use --palette")
)
