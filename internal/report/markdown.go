package report

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := report.Summary()

	w.writeHeader(md, report)
	w.writeSummary(md, summary)
	w.writeCategories(md, summary)
	w.writeFindings(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Website Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.SeedURL + "`"},
			{"Audit Date", report.DateAudited.Format("2006-01-02 15:04:05 MST")},
			{"Pages Visited", strconv.Itoa(report.PagesVisited)},
			{"Pages Failed", strconv.Itoa(report.PagesFailed)},
			{"Auditors", strings.Join(report.Auditors, ", ")},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.RunReport) string {
	if report.FrontierRemaining > 0 {
		return "⚠️ Page budget reached (" + strconv.Itoa(report.FrontierRemaining) + " URLs not visited)"
	}
	return "✅ Complete"
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary model.RunSummary) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Error", strconv.Itoa(summary.ErrorCount)},
			{"🟡 Warning", strconv.Itoa(summary.WarningCount)},
			{"⚪ Info", strconv.Itoa(summary.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(summary.TotalFindings) + "**"},
		},
	})
	md.PlainText("")

	if summary.TotalFindings > 0 {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary model.RunSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	if summary.ErrorCount > 0 {
		chart.LabelAndIntValue("Error", uint64(summary.ErrorCount))
	}
	if summary.WarningCount > 0 {
		chart.LabelAndIntValue("Warning", uint64(summary.WarningCount))
	}
	if summary.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(summary.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary model.RunSummary) {
	switch {
	case summary.ErrorCount > 0:
		md.Cautionf(
			"Compliance violations detected! %d error finding(s) require fixing.",
			summary.ErrorCount,
		)
	case summary.WarningCount > 0:
		md.Warningf(
			"%d warning finding(s) should be reviewed.",
			summary.WarningCount,
		)
	case summary.TotalFindings > 0:
		md.Note("Only informational findings recorded.")
	default:
		md.Tip("No issues detected.")
	}
	md.PlainText("")
}

// writeCategories writes the per-category breakdown table, sorted by
// name so the output is stable between runs.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, summary model.RunSummary) {
	if len(summary.ByCategory) == 0 {
		return
	}

	categories := make([]string, 0, len(summary.ByCategory))
	for c := range summary.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	md.H2("Findings by Category")
	md.PlainText("")

	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c, strconv.Itoa(summary.ByCategory[c])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFindings writes all findings grouped by severity.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Findings")
	md.PlainText("")

	if len(report.Findings) == 0 {
		md.PlainText("No findings recorded.")
		md.PlainText("")
		return
	}

	headers := map[model.Severity]string{
		model.SeverityError:   "### 🔴 Error",
		model.SeverityWarning: "### 🟡 Warning",
		model.SeverityInfo:    "### ⚪ Info",
	}

	for _, severity := range severityOrder {
		findings := report.FindingsBySeverity(severity)
		if len(findings) == 0 {
			continue
		}

		md.PlainText(headers[severity])
		md.PlainText("")
		w.writeFindingsTable(md, findings)
	}
}

// writeFindingsTable writes a table of findings with details.
func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, findings []model.Finding) {
	headers := []string{"Page", "Auditor", "Category", "Message", "Found"}

	rows := make([][]string, len(findings))
	for i, f := range findings {
		found := f.Found
		if found == "" {
			found = "-"
		}

		rows[i] = []string{
			truncateString(f.PageURL, 40),
			f.Auditor,
			f.Category,
			truncateString(f.Message, 60),
			truncateString(found, 40),
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webaudit](https://github.com/yuniko-soft/webaudit)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
