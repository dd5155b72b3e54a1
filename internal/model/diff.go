package model

import "strings"

// RunDiff is the comparison of two runs against the same site: which
// findings appeared, which were fixed, and which persist.
type RunDiff struct {
	// New holds findings present in the later run only.
	New []Finding `json:"new"`

	// Resolved holds findings present in the earlier run only.
	Resolved []Finding `json:"resolved"`

	// Unchanged holds findings present in both runs.
	Unchanged []Finding `json:"unchanged"`
}

// DiffFindings compares two finding sequences and classifies every
// finding as new, resolved, or unchanged. Order within each class
// follows the later run's sequence (the earlier run's for Resolved).
//
// Identity is the finding's location and subject (page, auditor,
// category, property, selector, found value), not its message text, so
// rewording a message between versions does not churn the diff.
func DiffFindings(earlier, later []Finding) RunDiff {
	var diff RunDiff

	earlierKeys := make(map[string]int, len(earlier))
	for _, f := range earlier {
		earlierKeys[findingKey(f)]++
	}

	laterKeys := make(map[string]int, len(later))
	for _, f := range later {
		laterKeys[findingKey(f)]++
	}

	// Duplicate keys are matched pairwise: two identical findings in
	// both runs stay unchanged, a third copy in one run counts as
	// new or resolved.
	seen := make(map[string]int, len(later))
	for _, f := range later {
		key := findingKey(f)
		seen[key]++
		if seen[key] <= earlierKeys[key] {
			diff.Unchanged = append(diff.Unchanged, f)
		} else {
			diff.New = append(diff.New, f)
		}
	}

	seen = make(map[string]int, len(earlier))
	for _, f := range earlier {
		key := findingKey(f)
		seen[key]++
		if seen[key] > laterKeys[key] {
			diff.Resolved = append(diff.Resolved, f)
		}
	}

	return diff
}

// findingKey builds the identity key used by DiffFindings.
func findingKey(f Finding) string {
	return strings.Join([]string{
		f.PageURL, f.Auditor, f.Category, f.Property, f.Selector, f.Found,
	}, "\x1f")
}
