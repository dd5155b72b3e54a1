package model

import "testing"

// TestRunReportSummary verifies the aggregate counters derived from the
// finding sequence.
func TestRunReportSummary(t *testing.T) {
	t.Parallel()

	t.Run("counts findings by severity and category", func(t *testing.T) {
		t.Parallel()

		report := NewRunReport("https://example.com/")
		report.PagesVisited = 4
		report.PagesFailed = 1
		report.AddFinding(NewFinding("https://example.com/", "design", SeverityError, "rogue-color", "rogue"))
		report.AddFinding(NewFinding("https://example.com/", "design", SeverityWarning, "near-miss-color", "near"))
		report.AddFinding(NewFinding("https://example.com/a", "seo", SeverityWarning, "title", "short"))
		report.AddFinding(NewFinding("https://example.com/a", "content", SeverityInfo, "content-statistics", "stats"))

		s := report.Summary()
		if s.ErrorCount != 1 || s.WarningCount != 2 || s.InfoCount != 1 {
			t.Errorf("unexpected severity counts: %d/%d/%d", s.ErrorCount, s.WarningCount, s.InfoCount)
		}
		if s.TotalFindings != 4 {
			t.Errorf("expected 4 total findings, got %d", s.TotalFindings)
		}
		if s.ByCategory["title"] != 1 || s.ByCategory["rogue-color"] != 1 {
			t.Errorf("unexpected category counts: %v", s.ByCategory)
		}
		if s.PagesVisited != 4 || s.PagesFailed != 1 {
			t.Errorf("unexpected page counts: %d/%d", s.PagesVisited, s.PagesFailed)
		}
	})

	t.Run("empty report has zero counts", func(t *testing.T) {
		t.Parallel()

		s := NewRunReport("https://example.com/").Summary()
		if s.TotalFindings != 0 || s.ErrorCount != 0 {
			t.Errorf("expected zero counts, got %+v", s)
		}
	})

	t.Run("filters preserve sequence order", func(t *testing.T) {
		t.Parallel()

		report := NewRunReport("https://example.com/")
		report.AddFinding(NewFinding("https://example.com/1", "seo", SeverityWarning, "title", "first"))
		report.AddFinding(NewFinding("https://example.com/2", "design", SeverityWarning, "texture", "second"))
		report.AddFinding(NewFinding("https://example.com/3", "seo", SeverityError, "meta", "third"))

		warnings := report.FindingsBySeverity(SeverityWarning)
		if len(warnings) != 2 || warnings[0].Message != "first" || warnings[1].Message != "second" {
			t.Errorf("unexpected warning order: %+v", warnings)
		}

		seo := report.FindingsByAuditor("seo")
		if len(seo) != 2 || seo[0].Message != "first" || seo[1].Message != "third" {
			t.Errorf("unexpected auditor filter: %+v", seo)
		}
	})
}

// TestParseSeverity verifies the round trip through severity names.
func TestParseSeverity(t *testing.T) {
	t.Parallel()

	for _, s := range []Severity{SeverityInfo, SeverityWarning, SeverityError} {
		if got := ParseSeverity(s.String()); got != s {
			t.Errorf("round trip failed for %v: got %v", s, got)
		}
	}
	if got := ParseSeverity("bogus"); got != SeverityInfo {
		t.Errorf("expected unknown names to map to info, got %v", got)
	}
}
