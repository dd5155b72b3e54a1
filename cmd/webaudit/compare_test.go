package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/yuniko-soft/webaudit/internal/database"
	"github.com/yuniko-soft/webaudit/internal/model"
)

// testLogger returns a quiet logger for command tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestNewCompareCmd tests the compare command creation.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "compare [url]" {
			t.Errorf("expected use 'compare [url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has list flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list")
		if flag == nil {
			t.Fatal("expected list flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has list-sites flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list-sites")
		if flag == nil {
			t.Fatal("expected list-sites flag")
		}
		if flag.Shorthand != "L" {
			t.Errorf("expected shorthand 'L', got %q", flag.Shorthand)
		}
	})

	t.Run("has with-run-id flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("with-run-id")
		if flag == nil {
			t.Fatal("expected with-run-id flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})
}

// seedComparisonDB saves two runs for the same site and returns the
// database. The earlier run has one error and one warning; the later run
// resolves the error, keeps the warning, and adds a new info finding.
func seedComparisonDB(t *testing.T, seedURL string) *database.AuditDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	ctx := context.Background()

	earlier := model.NewRunReport(seedURL)
	earlier.DateAudited = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	earlier.PagesVisited = 3
	earlier.AddFinding(model.NewFinding(seedURL, "design", model.SeverityError,
		"color", "rogue color #ff0000"))
	earlier.AddFinding(model.NewFinding(seedURL, "seo", model.SeverityWarning,
		"meta", "missing meta description"))

	later := model.NewRunReport(seedURL)
	later.DateAudited = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	later.PagesVisited = 3
	later.AddFinding(model.NewFinding(seedURL, "seo", model.SeverityWarning,
		"meta", "missing meta description"))
	later.AddFinding(model.NewFinding(seedURL, "content", model.SeverityInfo,
		"content", "thin page body"))

	if _, err := db.SaveRunReport(ctx, earlier); err != nil {
		t.Fatalf("failed to save earlier run: %v", err)
	}
	if _, err := db.SaveRunReport(ctx, later); err != nil {
		t.Fatalf("failed to save later run: %v", err)
	}

	return db
}

// captureStdout runs fn while collecting everything written to stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	r.Close()

	return buf.String(), fnErr
}

// TestRunComparison tests comparing two saved runs.
func TestRunComparison(t *testing.T) {
	const seedURL = "https://example.com/"

	t.Run("compares latest two runs", func(t *testing.T) {
		db := seedComparisonDB(t, seedURL)

		output, err := captureStdout(t, func() error {
			return runComparison(context.Background(), db, seedURL, 0, false)
		})
		if err != nil {
			t.Fatalf("runComparison() error = %v", err)
		}

		if !strings.Contains(output, "IMPROVED") {
			t.Errorf("expected improved trend, got output:\n%s", output)
		}
		if !strings.Contains(output, "New Findings (1)") {
			t.Errorf("expected 1 new finding, got output:\n%s", output)
		}
		if !strings.Contains(output, "Resolved Findings (1)") {
			t.Errorf("expected 1 resolved finding, got output:\n%s", output)
		}
		if !strings.Contains(output, "Unchanged: 1 findings") {
			t.Errorf("expected 1 unchanged finding, got output:\n%s", output)
		}
	})

	t.Run("outputs JSON comparison", func(t *testing.T) {
		db := seedComparisonDB(t, seedURL)

		output, err := captureStdout(t, func() error {
			return runComparison(context.Background(), db, seedURL, 0, true)
		})
		if err != nil {
			t.Fatalf("runComparison() error = %v", err)
		}

		var result ComparisonResult
		if err := json.Unmarshal([]byte(output), &result); err != nil {
			t.Fatalf("expected valid JSON output: %v", err)
		}

		if result.SeedURL != seedURL {
			t.Errorf("expected seed URL %q, got %q", seedURL, result.SeedURL)
		}
		if result.Trend.Direction != trendImproved {
			t.Errorf("expected direction %q, got %q", trendImproved, result.Trend.Direction)
		}
		if result.Trend.ErrorDelta != -1 {
			t.Errorf("expected error delta -1, got %d", result.Trend.ErrorDelta)
		}
		if len(result.Diff.New) != 1 || len(result.Diff.Resolved) != 1 {
			t.Errorf("expected 1 new and 1 resolved finding, got %d/%d",
				len(result.Diff.New), len(result.Diff.Resolved))
		}
	})

	t.Run("compares against a specific run ID", func(t *testing.T) {
		db := seedComparisonDB(t, seedURL)

		runs, err := db.ListRuns(context.Background(), seedURL)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		earlierID := runs[len(runs)-1].ID

		output, err := captureStdout(t, func() error {
			return runComparison(context.Background(), db, seedURL, earlierID, false)
		})
		if err != nil {
			t.Fatalf("runComparison() error = %v", err)
		}
		if !strings.Contains(output, "Run Comparison") {
			t.Errorf("expected comparison output, got:\n%s", output)
		}
	})

	t.Run("fails for unknown run ID", func(t *testing.T) {
		db := seedComparisonDB(t, seedURL)

		_, err := captureStdout(t, func() error {
			return runComparison(context.Background(), db, seedURL, 9999, false)
		})
		if err == nil {
			t.Error("expected error for unknown run ID")
		}
	})

	t.Run("fails with a single run", func(t *testing.T) {
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		report := model.NewRunReport(seedURL)
		if _, err := db.SaveRunReport(context.Background(), report); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		_, err = captureStdout(t, func() error {
			return runComparison(context.Background(), db, seedURL, 0, false)
		})
		if err == nil {
			t.Error("expected error when only one run exists")
		}
		if !strings.Contains(err.Error(), "at least 2 runs") {
			t.Errorf("expected 'at least 2 runs' error, got %v", err)
		}
	})

	t.Run("fails when no runs exist", func(t *testing.T) {
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		_, err = captureStdout(t, func() error {
			return runComparison(context.Background(), db, seedURL, 0, false)
		})
		if err == nil {
			t.Error("expected error for empty history")
		}
	})
}

// TestListRunHistory tests the --list output.
func TestListRunHistory(t *testing.T) {
	const seedURL = "https://example.com/"

	t.Run("lists saved runs", func(t *testing.T) {
		db := seedComparisonDB(t, seedURL)

		output, err := captureStdout(t, func() error {
			return listRunHistory(context.Background(), db, seedURL)
		})
		if err != nil {
			t.Fatalf("listRunHistory() error = %v", err)
		}

		if !strings.Contains(output, "2 runs") {
			t.Errorf("expected 2 runs in output, got:\n%s", output)
		}
		if !strings.Contains(output, "E:1 W:1") {
			t.Errorf("expected severity counts for earlier run, got:\n%s", output)
		}
	})

	t.Run("reports empty history", func(t *testing.T) {
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		output, err := captureStdout(t, func() error {
			return listRunHistory(context.Background(), db, seedURL)
		})
		if err != nil {
			t.Fatalf("listRunHistory() error = %v", err)
		}
		if !strings.Contains(output, "No run history") {
			t.Errorf("expected empty-history message, got:\n%s", output)
		}
	})
}

// TestListAuditedSites tests the --list-sites output.
func TestListAuditedSites(t *testing.T) {
	t.Run("lists distinct sites", func(t *testing.T) {
		db := seedComparisonDB(t, "https://example.com/")

		report := model.NewRunReport("https://example.org/")
		if _, err := db.SaveRunReport(context.Background(), report); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		output, err := captureStdout(t, func() error {
			return listAuditedSites(context.Background(), db)
		})
		if err != nil {
			t.Fatalf("listAuditedSites() error = %v", err)
		}

		if !strings.Contains(output, "Audited sites (2)") {
			t.Errorf("expected 2 sites in output, got:\n%s", output)
		}
		if !strings.Contains(output, "https://example.com/") ||
			!strings.Contains(output, "https://example.org/") {
			t.Errorf("expected both sites listed, got:\n%s", output)
		}
	})

	t.Run("reports empty database", func(t *testing.T) {
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		output, err := captureStdout(t, func() error {
			return listAuditedSites(context.Background(), db)
		})
		if err != nil {
			t.Fatalf("listAuditedSites() error = %v", err)
		}
		if !strings.Contains(output, "No audited sites") {
			t.Errorf("expected empty-database message, got:\n%s", output)
		}
	})
}

// TestCalculateTrend tests the severity delta and direction derivation.
func TestCalculateTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		earlier RunSummaryMeta
		later   RunSummaryMeta
		want    string
	}{
		{
			name:    "fewer errors improves",
			earlier: RunSummaryMeta{ErrorCount: 2, WarningCount: 1},
			later:   RunSummaryMeta{ErrorCount: 1, WarningCount: 1},
			want:    trendImproved,
		},
		{
			name:    "more warnings worsens",
			earlier: RunSummaryMeta{WarningCount: 1},
			later:   RunSummaryMeta{WarningCount: 3},
			want:    trendWorsened,
		},
		{
			name:    "error outweighs resolved warnings",
			earlier: RunSummaryMeta{WarningCount: 5},
			later:   RunSummaryMeta{ErrorCount: 1},
			want:    trendWorsened,
		},
		{
			name:    "info changes do not move the trend",
			earlier: RunSummaryMeta{InfoCount: 1},
			later:   RunSummaryMeta{InfoCount: 10},
			want:    trendUnchanged,
		},
		{
			name:    "identical counts unchanged",
			earlier: RunSummaryMeta{ErrorCount: 1, WarningCount: 2},
			later:   RunSummaryMeta{ErrorCount: 1, WarningCount: 2},
			want:    trendUnchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := calculateTrend(tt.earlier, tt.later)
			if got.Direction != tt.want {
				t.Errorf("expected direction %q, got %q", tt.want, got.Direction)
			}
		})
	}
}

// TestFormatDelta tests delta formatting with explicit signs.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{delta: 3, want: "+3"},
		{delta: -2, want: "-2"},
		{delta: 0, want: "0"},
	}

	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

// TestFormatSeverityCounts tests the run-history severity column.
func TestFormatSeverityCounts(t *testing.T) {
	t.Parallel()

	t.Run("formats all severities", func(t *testing.T) {
		t.Parallel()
		meta := database.RunMetadata{ErrorCount: 1, WarningCount: 2, InfoCount: 3}
		if got := formatSeverityCounts(meta); got != "E:1 W:2 I:3" {
			t.Errorf("expected 'E:1 W:2 I:3', got %q", got)
		}
	})

	t.Run("omits zero counts", func(t *testing.T) {
		t.Parallel()
		meta := database.RunMetadata{WarningCount: 2}
		if got := formatSeverityCounts(meta); got != "W:2" {
			t.Errorf("expected 'W:2', got %q", got)
		}
	})

	t.Run("reports clean runs", func(t *testing.T) {
		t.Parallel()
		meta := database.RunMetadata{}
		if got := formatSeverityCounts(meta); got != "No findings" {
			t.Errorf("expected 'No findings', got %q", got)
		}
	})
}
