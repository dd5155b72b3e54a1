package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuniko-soft/webaudit/internal/config"
	"github.com/yuniko-soft/webaudit/internal/crawler"
	"github.com/yuniko-soft/webaudit/internal/database"
	"github.com/yuniko-soft/webaudit/internal/model"
)

// Constants for trend direction and summary messages.
const (
	trendWorsened  = "worsened"
	trendImproved  = "improved"
	trendUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares audit runs stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [url]",
		Short: "Compare audit runs from the history database",
		Long: `Compare shows what changed between two audit runs of the same site:
- New findings that appeared since the earlier run
- Resolved findings that are no longer present
- Severity count deltas

By default the two most recent runs are compared. The comparison
requires at least two saved runs for the site. Runs are saved
automatically by 'webaudit audit' unless --no-save was used.

Examples:
  # Compare the latest two runs for a site
  webaudit compare https://example.com

  # List saved runs for a site
  webaudit compare --list https://example.com

  # Compare the latest run against a specific earlier run by ID
  webaudit compare --with-run-id 5 https://example.com

  # Output the comparison in JSON format
  webaudit compare --json https://example.com

  # List every site in the database
  webaudit compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List run history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all audited sites in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest run with a specific run by ID (use --list to see IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so bad input does
	// not leave a lock behind.
	var seedURL string
	if !listSites {
		if len(args) == 0 {
			return errors.New("site URL is required (use --list-sites to see audited sites)")
		}
		seedURL, err = crawler.Canonicalize(args[0])
		if err != nil {
			return fmt.Errorf("invalid site URL: %w", err)
		}
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listSites {
		return listAuditedSites(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listRunHistory(ctx, db, seedURL)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, seedURL, withRunID, jsonOutput)
}

// listAuditedSites lists all sites that have saved runs.
func listAuditedSites(ctx context.Context, db *database.AuditDB) error {
	runs, err := db.ListRuns(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	seen := make(map[string]bool)
	var sites []string
	for _, r := range runs {
		if !seen[r.SeedURL] {
			seen[r.SeedURL] = true
			sites = append(sites, r.SeedURL)
		}
	}

	if len(sites) == 0 {
		fmt.Println("No audited sites found in the database.")
		fmt.Println("\nUse 'webaudit audit <url>' to audit a site.")
		return nil
	}

	fmt.Printf("Audited sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Printf("  • %s\n", site)
	}
	fmt.Println("\nUse 'webaudit compare --list <url>' to see run history for a site.")

	return nil
}

// listRunHistory lists all saved runs for a site.
func listRunHistory(ctx context.Context, db *database.AuditDB, seedURL string) error {
	runs, err := db.ListRuns(ctx, seedURL)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No run history found for %s\n", seedURL)
		fmt.Println("\nUse 'webaudit audit' to audit this site.")
		return nil
	}

	fmt.Printf("Run history for %s (%d runs):\n\n", seedURL, len(runs))
	fmt.Printf("  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Pages", "Findings")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range runs {
		fmt.Printf("  %-6d  %-20s  %-8d  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.PagesVisited,
			formatSeverityCounts(meta),
		)
	}

	fmt.Println("\nUse 'webaudit compare <url>' to compare the latest two runs.")
	fmt.Println("Use 'webaudit compare --with-run-id <id> <url>' to compare with a specific run.")

	return nil
}

// formatSeverityCounts formats a run's severity totals for display.
func formatSeverityCounts(meta database.RunMetadata) string {
	var parts []string
	if meta.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("E:%d", meta.ErrorCount))
	}
	if meta.WarningCount > 0 {
		parts = append(parts, fmt.Sprintf("W:%d", meta.WarningCount))
	}
	if meta.InfoCount > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", meta.InfoCount))
	}
	if len(parts) == 0 {
		return "No findings"
	}
	return strings.Join(parts, " ")
}

// ComparisonResult holds the result of comparing two audit runs.
type ComparisonResult struct {
	// SeedURL is the audited site.
	SeedURL string `json:"seed_url"`

	// EarlierRun and LaterRun summarize the two compared runs.
	EarlierRun RunSummaryMeta `json:"earlier_run"`
	LaterRun   RunSummaryMeta `json:"later_run"`

	// Diff classifies every finding as new, resolved, or unchanged.
	Diff model.RunDiff `json:"diff"`

	// Trend describes the overall change between the runs.
	Trend Trend `json:"trend"`
}

// RunSummaryMeta summarizes one side of the comparison.
type RunSummaryMeta struct {
	// ID is the run's database identifier.
	ID int64 `json:"id"`

	// DateAudited is when the run started.
	DateAudited time.Time `json:"date_audited"`

	// Severity totals for the run.
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	InfoCount    int `json:"info_count"`

	// TotalFindings is the run's total finding count.
	TotalFindings int `json:"total_findings"`
}

// Trend describes the severity deltas between two runs.
type Trend struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// ErrorDelta, WarningDelta, and InfoDelta are the count changes.
	ErrorDelta   int `json:"error_delta"`
	WarningDelta int `json:"warning_delta"`
	InfoDelta    int `json:"info_delta"`
}

// runComparison loads the two runs and prints their diff.
func runComparison(ctx context.Context, db *database.AuditDB, seedURL string, withRunID int64, jsonOutput bool) error {
	runs, err := db.ListRuns(ctx, seedURL)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		return fmt.Errorf("no run history found for %s", seedURL)
	}
	if len(runs) < 2 && withRunID == 0 {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	later := runs[0]

	var earlier database.RunMetadata
	if withRunID > 0 {
		found := false
		for _, r := range runs {
			if r.ID == withRunID {
				earlier = r
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("run ID %d not found for %s", withRunID, seedURL)
		}
		if earlier.ID == later.ID {
			return fmt.Errorf("run ID %d is the latest run; nothing to compare against", withRunID)
		}
	} else {
		earlier = runs[1]
	}

	earlierFindings, err := db.GetFindings(ctx, earlier.ID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", earlier.ID, err)
	}
	laterFindings, err := db.GetFindings(ctx, later.ID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", later.ID, err)
	}

	result := &ComparisonResult{
		SeedURL:    seedURL,
		EarlierRun: runSummaryMeta(earlier),
		LaterRun:   runSummaryMeta(later),
		Diff:       model.DiffFindings(earlierFindings, laterFindings),
	}
	result.Trend = calculateTrend(result.EarlierRun, result.LaterRun)

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return outputComparisonText(result)
}

// runSummaryMeta converts stored run metadata to the comparison view.
func runSummaryMeta(meta database.RunMetadata) RunSummaryMeta {
	return RunSummaryMeta{
		ID:            meta.ID,
		DateAudited:   meta.Timestamp,
		ErrorCount:    meta.ErrorCount,
		WarningCount:  meta.WarningCount,
		InfoCount:     meta.InfoCount,
		TotalFindings: meta.ErrorCount + meta.WarningCount + meta.InfoCount,
	}
}

// calculateTrend derives the severity deltas and overall direction.
// Errors weigh more than warnings; info findings do not affect direction.
func calculateTrend(earlier, later RunSummaryMeta) Trend {
	trend := Trend{
		ErrorDelta:   later.ErrorCount - earlier.ErrorCount,
		WarningDelta: later.WarningCount - earlier.WarningCount,
		InfoDelta:    later.InfoCount - earlier.InfoCount,
	}

	earlierScore := earlier.ErrorCount*10 + earlier.WarningCount
	laterScore := later.ErrorCount*10 + later.WarningCount

	switch {
	case laterScore < earlierScore:
		trend.Direction = trendImproved
	case laterScore > earlierScore:
		trend.Direction = trendWorsened
	default:
		trend.Direction = trendUnchanged
	}

	return trend
}

// outputComparisonText prints the comparison in human-readable form.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Run Comparison: %s\n", result.SeedURL)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nTrend: %s\n", formatTrendDirection(result.Trend.Direction))

	fmt.Printf("\nEarlier run: #%d  %s\n",
		result.EarlierRun.ID, result.EarlierRun.DateAudited.Format("2006-01-02 15:04:05"))
	fmt.Printf("Later run:   #%d  %s\n",
		result.LaterRun.ID, result.LaterRun.DateAudited.Format("2006-01-02 15:04:05"))

	fmt.Println("\nFindings Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Earlier", "Later", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Error",
		result.EarlierRun.ErrorCount, result.LaterRun.ErrorCount,
		formatDelta(result.Trend.ErrorDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Warning",
		result.EarlierRun.WarningCount, result.LaterRun.WarningCount,
		formatDelta(result.Trend.WarningDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.EarlierRun.InfoCount, result.LaterRun.InfoCount,
		formatDelta(result.Trend.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.EarlierRun.TotalFindings, result.LaterRun.TotalFindings,
		formatDelta(result.LaterRun.TotalFindings-result.EarlierRun.TotalFindings))

	if len(result.Diff.New) > 0 {
		fmt.Printf("\nNew Findings (%d):\n", len(result.Diff.New))
		for _, f := range result.Diff.New {
			fmt.Printf("  [+] [%s] %s/%s: %s\n", f.SeverityText, f.Auditor, f.Category, f.Message)
			fmt.Printf("      Page: %s\n", f.PageURL)
		}
	}

	if len(result.Diff.Resolved) > 0 {
		fmt.Printf("\nResolved Findings (%d):\n", len(result.Diff.Resolved))
		for _, f := range result.Diff.Resolved {
			fmt.Printf("  [-] [%s] %s/%s: %s\n", f.SeverityText, f.Auditor, f.Category, f.Message)
		}
	}

	if n := len(result.Diff.Unchanged); n > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", n)
	}

	return nil
}

// formatTrendDirection formats the trend direction for display.
func formatTrendDirection(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (fewer issues)"
	case trendWorsened:
		return "WORSENED (more issues)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
