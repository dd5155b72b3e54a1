package model

// Severity represents how serious an audit finding is.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no compliance impact.
	// Examples: word-count statistics, matched palette colors worth recording.
	SeverityInfo Severity = iota

	// SeverityWarning indicates issues that should be reviewed but don't
	// break brand or SEO compliance outright.
	// Examples: near-miss colors, title length slightly out of range,
	// thin page content.
	SeverityWarning

	// SeverityError indicates clear violations that need fixing.
	// Examples: rogue colors not in the palette, missing meta description,
	// pages that failed to fetch or parse.
	SeverityError
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a severity name back to its Severity value.
// Unknown names map to SeverityInfo, matching the permissive behavior
// used when loading historical runs from the database.
func ParseSeverity(name string) Severity {
	switch name {
	case "ERROR":
		return SeverityError
	case "WARNING":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
