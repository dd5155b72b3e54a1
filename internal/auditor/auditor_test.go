package auditor

import (
	"testing"

	"github.com/yuniko-soft/webaudit/internal/crawler"
	"github.com/yuniko-soft/webaudit/internal/model"
)

// parsePage builds a parsed Page from raw HTML for auditor tests.
func parsePage(t *testing.T, pageURL, html string) *model.Page {
	t.Helper()
	page := &model.Page{
		URL:         pageURL,
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Raw:         []byte(html),
	}
	if err := crawler.ParseDocument(page); err != nil {
		t.Fatalf("failed to parse test page: %v", err)
	}
	return page
}

// stubAuditor returns fixed findings, optionally panicking.
type stubAuditor struct {
	name     string
	findings []model.Finding
	panics   bool
}

func (s *stubAuditor) Name() string { return s.name }

func (s *stubAuditor) Audit(page *model.Page) []model.Finding {
	if s.panics {
		panic("boom")
	}
	return s.findings
}

// TestRegistryRunAll verifies dispatch order and panic isolation.
func TestRegistryRunAll(t *testing.T) {
	t.Parallel()

	page := &model.Page{URL: "https://example.com/"}

	t.Run("findings follow registration order", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		r.Register(&stubAuditor{name: "first", findings: []model.Finding{
			model.NewFinding(page.URL, "first", model.SeverityInfo, "x", "a"),
			model.NewFinding(page.URL, "first", model.SeverityInfo, "x", "b"),
		}})
		r.Register(&stubAuditor{name: "second", findings: []model.Finding{
			model.NewFinding(page.URL, "second", model.SeverityInfo, "x", "c"),
		}})

		findings := r.RunAll(page)
		if len(findings) != 3 {
			t.Fatalf("expected 3 findings, got %d", len(findings))
		}
		wantMessages := []string{"a", "b", "c"}
		for i, w := range wantMessages {
			if findings[i].Message != w {
				t.Errorf("finding %d: expected message %q, got %q", i, w, findings[i].Message)
			}
		}
	})

	t.Run("panicking auditor yields one failure finding", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		r.Register(&stubAuditor{name: "broken", panics: true})
		r.Register(&stubAuditor{name: "healthy", findings: []model.Finding{
			model.NewFinding(page.URL, "healthy", model.SeverityInfo, "x", "ok"),
		}})

		findings := r.RunAll(page)
		if len(findings) != 2 {
			t.Fatalf("expected 2 findings, got %d", len(findings))
		}

		failure := findings[0]
		if failure.Category != model.CategoryAuditorFailure {
			t.Errorf("expected auditor-failure category, got %q", failure.Category)
		}
		if failure.Severity != model.SeverityError {
			t.Errorf("expected error severity, got %v", failure.Severity)
		}
		if failure.Auditor != "broken" {
			t.Errorf("expected auditor name 'broken', got %q", failure.Auditor)
		}

		// The healthy auditor must still have run.
		if findings[1].Message != "ok" {
			t.Errorf("expected healthy auditor to run after the panic, got %q", findings[1].Message)
		}
	})

	t.Run("Names preserves registration order", func(t *testing.T) {
		t.Parallel()
		r := NewRegistry()
		r.Register(&stubAuditor{name: "design"})
		r.Register(&stubAuditor{name: "seo"})
		r.Register(&stubAuditor{name: "content"})

		names := r.Names()
		want := []string{"design", "seo", "content"}
		if len(names) != len(want) {
			t.Fatalf("expected %d names, got %d", len(want), len(names))
		}
		for i, w := range want {
			if names[i] != w {
				t.Errorf("name %d: expected %q, got %q", i, w, names[i])
			}
		}
	})
}
