package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and per-severity grouping.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// showEmpty controls whether severity sections with no findings are shown.
	showEmpty bool

	// verbose enables the expected/found detail lines in the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty severity sections.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with expected/found details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *TextWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeCategories(&sb, report)
	w.writeFindings(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *TextWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         WEBAUDIT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Site:           %s\n", report.SeedURL))
	sb.WriteString(fmt.Sprintf("Audit Date:     %s\n", report.DateAudited.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages Visited:  %d\n", report.PagesVisited))
	sb.WriteString(fmt.Sprintf("Pages Failed:   %d\n", report.PagesFailed))
	if len(report.Auditors) > 0 {
		sb.WriteString(fmt.Sprintf("Auditors:       %s\n", strings.Join(report.Auditors, ", ")))
	}

	if report.FrontierRemaining > 0 {
		sb.WriteString(fmt.Sprintf("Status:         PAGE BUDGET REACHED (%d URLs not visited)\n", report.FrontierRemaining))
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *TextWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	summary := report.Summary()

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  ERROR:   %d\n", summary.ErrorCount))
	sb.WriteString(fmt.Sprintf("  WARNING: %d\n", summary.WarningCount))
	sb.WriteString(fmt.Sprintf("  INFO:    %d\n", summary.InfoCount))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:   %d findings\n", summary.TotalFindings))
	sb.WriteString("\n")
}

// writeCategories writes the per-category breakdown, sorted by name so
// the output is stable between runs.
func (w *TextWriter) writeCategories(sb *strings.Builder, report *model.RunReport) {
	summary := report.Summary()
	if len(summary.ByCategory) == 0 {
		return
	}

	categories := make([]string, 0, len(summary.ByCategory))
	for c := range summary.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS BY CATEGORY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("  %-30s %d\n", c, summary.ByCategory[c]))
	}
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by severity, errors first.
func (w *TextWriter) writeFindings(sb *strings.Builder, report *model.RunReport) {
	if len(report.Findings) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, severity := range severityOrder {
		findings := report.FindingsBySeverity(severity)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}

		w.writeFindingsForSeverity(sb, severity, findings)
	}
}

// writeFindingsForSeverity writes findings of a specific severity level.
func (w *TextWriter) writeFindingsForSeverity(sb *strings.Builder, severity model.Severity, findings []model.Finding) {
	indicator := w.getSeverityIndicator(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", indicator, severity.String()))

	if len(findings) == 0 {
		sb.WriteString("  No findings\n\n")
		return
	}

	for _, finding := range findings {
		sb.WriteString(fmt.Sprintf("  * [%s/%s] %s\n", finding.Auditor, finding.Category, finding.Message))
		sb.WriteString(fmt.Sprintf("    Page: %s\n", finding.PageURL))
		if finding.Selector != "" {
			sb.WriteString(fmt.Sprintf("    Selector: %s\n", finding.Selector))
		}
		if w.verbose {
			if finding.Expected != "" {
				sb.WriteString(fmt.Sprintf("    Expected: %s\n", finding.Expected))
			}
			if finding.Found != "" {
				sb.WriteString(fmt.Sprintf("    Found: %s\n", finding.Found))
			}
		}
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *TextWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityError:
		return "!!"
	case model.SeverityWarning:
		return "!"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by webaudit\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
