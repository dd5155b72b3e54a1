package model

import "testing"

// TestDiffFindings verifies run comparison classification.
func TestDiffFindings(t *testing.T) {
	t.Parallel()

	rogue := NewFinding("https://example.com/", "design", SeverityError, "rogue-color", "color #ff0000 not approved")
	rogue.Property = "color"
	rogue.Found = "#ff0000"

	title := NewFinding("https://example.com/about", "seo", SeverityWarning, "title", "title too short")
	title.Property = "title-length"
	title.Found = "12"

	thin := NewFinding("https://example.com/blog", "content", SeverityWarning, "thin-content", "only 80 words")
	thin.Property = "word-count"
	thin.Found = "80"

	t.Run("classifies new, resolved, and unchanged", func(t *testing.T) {
		t.Parallel()

		earlier := []Finding{rogue, title}
		later := []Finding{title, thin}

		diff := DiffFindings(earlier, later)
		if len(diff.New) != 1 || diff.New[0].Category != "thin-content" {
			t.Errorf("unexpected new findings: %+v", diff.New)
		}
		if len(diff.Resolved) != 1 || diff.Resolved[0].Category != "rogue-color" {
			t.Errorf("unexpected resolved findings: %+v", diff.Resolved)
		}
		if len(diff.Unchanged) != 1 || diff.Unchanged[0].Category != "title" {
			t.Errorf("unexpected unchanged findings: %+v", diff.Unchanged)
		}
	})

	t.Run("message rewording does not churn the diff", func(t *testing.T) {
		t.Parallel()

		reworded := title
		reworded.Message = "the page title is shorter than recommended"

		diff := DiffFindings([]Finding{title}, []Finding{reworded})
		if len(diff.Unchanged) != 1 || len(diff.New) != 0 || len(diff.Resolved) != 0 {
			t.Errorf("expected reworded finding to stay unchanged, got %+v", diff)
		}
	})

	t.Run("duplicate findings match pairwise", func(t *testing.T) {
		t.Parallel()

		diff := DiffFindings([]Finding{rogue}, []Finding{rogue, rogue})
		if len(diff.Unchanged) != 1 {
			t.Errorf("expected 1 unchanged, got %d", len(diff.Unchanged))
		}
		if len(diff.New) != 1 {
			t.Errorf("expected 1 new for the extra duplicate, got %d", len(diff.New))
		}
	})

	t.Run("identical runs produce no churn", func(t *testing.T) {
		t.Parallel()

		fs := []Finding{rogue, title, thin}
		diff := DiffFindings(fs, fs)
		if len(diff.New) != 0 || len(diff.Resolved) != 0 || len(diff.Unchanged) != 3 {
			t.Errorf("expected all unchanged, got %+v", diff)
		}
	})

	t.Run("empty earlier run makes everything new", func(t *testing.T) {
		t.Parallel()

		diff := DiffFindings(nil, []Finding{rogue})
		if len(diff.New) != 1 || len(diff.Resolved) != 0 {
			t.Errorf("unexpected diff: %+v", diff)
		}
	})
}
