package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// Excel styling palette. Kept close to the web report colors so the
// spreadsheet and the HTML dashboards read the same.
const (
	excelHeaderBG  = "002D68"
	excelHeaderFG  = "FFFFFF"
	excelErrorBG   = "FEE2E2"
	excelErrorFG   = "991B1B"
	excelWarningBG = "FEF3C7"
	excelWarningFG = "92400E"
	excelInfoBG    = "D1FAE5"
	excelInfoFG    = "065F46"
)

// excelColumns is the column layout for per-auditor finding sheets.
var excelColumns = []struct {
	header string
	width  float64
}{
	{"Page URL", 40},
	{"Severity", 12},
	{"Category", 22},
	{"Property", 18},
	{"Expected", 30},
	{"Found", 30},
	{"Message", 55},
	{"Selector", 40},
}

// ExcelWriter outputs reports as an Excel workbook with a Summary sheet
// and one sheet per auditor. This format is designed for handing audit
// results to design and marketing teams.
//
// Design decision: We use xuri/excelize rather than emitting CSV and
// asking users to import it because:
// 1. Severity rows can be color coded for quick triage
// 2. A summary dashboard sheet travels with the data
// 3. Frozen header rows and auto-filters work out of the box
type ExcelWriter struct {
	baseWriter
}

// NewExcelWriter creates an ExcelWriter that outputs to the given writer.
// The destination is normally a file; Excel output is binary.
func NewExcelWriter(output io.Writer) *ExcelWriter {
	return &ExcelWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the workbook and writes it to the output.
func (w *ExcelWriter) Write(report *model.RunReport) (int, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook, nothing to release

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return 0, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if err := w.writeSummarySheet(f, report); err != nil {
		return 0, err
	}

	// One sheet per auditor, in registration order. The engine's own
	// crawl and parse failures get their own sheet when present.
	sheets := append([]string{}, report.Auditors...)
	if len(report.FindingsByAuditor("engine")) > 0 {
		sheets = append(sheets, "engine")
	}

	for _, auditor := range sheets {
		findings := report.FindingsByAuditor(auditor)
		if err := w.writeAuditorSheet(f, auditor, findings); err != nil {
			return 0, err
		}
	}

	n, err := f.WriteTo(w.output)
	return int(n), err
}

// writeSummarySheet fills the Summary dashboard: run metadata, severity
// counts, and the per-category breakdown.
func (w *ExcelWriter) writeSummarySheet(f *excelize.File, report *model.RunReport) error {
	const sheet = "Summary"
	summary := report.Summary()

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 16, Bold: true, Color: excelHeaderBG},
	})
	if err != nil {
		return err
	}
	headerStyle, err := w.headerStyle(f)
	if err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Website Audit Report: "+report.SeedURL)
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	f.SetCellValue(sheet, "A2", "Generated: "+report.DateAudited.Format("2006-01-02 15:04:05 MST"))

	rows := [][2]any{
		{"Pages Visited", report.PagesVisited},
		{"Pages Failed", report.PagesFailed},
		{"URLs Not Visited", report.FrontierRemaining},
		{"Errors", summary.ErrorCount},
		{"Warnings", summary.WarningCount},
		{"Info", summary.InfoCount},
		{"Total Findings", summary.TotalFindings},
	}

	f.SetCellValue(sheet, "A4", "Metric")
	f.SetCellValue(sheet, "B4", "Value")
	f.SetCellStyle(sheet, "A4", "B4", headerStyle)

	for i, row := range rows {
		r := 5 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row[0])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), row[1])
	}

	// Category breakdown below the metrics, sorted for stable output.
	categories := make([]string, 0, len(summary.ByCategory))
	for c := range summary.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	catHeader := 5 + len(rows) + 1
	f.SetCellValue(sheet, fmt.Sprintf("A%d", catHeader), "Category")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", catHeader), "Count")
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", catHeader), fmt.Sprintf("B%d", catHeader), headerStyle)

	for i, c := range categories {
		r := catHeader + 1 + i
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), c)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), summary.ByCategory[c])
	}

	f.SetColWidth(sheet, "A", "A", 40)
	f.SetColWidth(sheet, "B", "B", 16)
	return nil
}

// writeAuditorSheet fills one sheet with the named auditor's findings,
// severity rows color coded, header row frozen and filterable.
func (w *ExcelWriter) writeAuditorSheet(f *excelize.File, auditor string, findings []model.Finding) error {
	if _, err := f.NewSheet(auditor); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", auditor, err)
	}

	headerStyle, err := w.headerStyle(f)
	if err != nil {
		return err
	}
	severityStyles, err := w.severityStyles(f)
	if err != nil {
		return err
	}

	for i, col := range excelColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(auditor, cell, col.header)

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		f.SetColWidth(auditor, name, name, col.width)
	}
	lastCol, err := excelize.ColumnNumberToName(len(excelColumns))
	if err != nil {
		return err
	}
	f.SetCellStyle(auditor, "A1", lastCol+"1", headerStyle)

	for i, finding := range findings {
		r := i + 2
		values := []any{
			finding.PageURL,
			finding.SeverityText,
			finding.Category,
			finding.Property,
			finding.Expected,
			finding.Found,
			finding.Message,
			finding.Selector,
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r)
			if err != nil {
				return err
			}
			f.SetCellValue(auditor, cell, v)
		}

		if style, ok := severityStyles[finding.Severity]; ok {
			cell := fmt.Sprintf("B%d", r)
			f.SetCellStyle(auditor, cell, cell, style)
		}
	}

	if err := f.SetPanes(auditor, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	filterRange := fmt.Sprintf("A1:%s%d", lastCol, len(findings)+1)
	return f.AutoFilter(auditor, filterRange, nil)
}

// headerStyle builds the shared navy header row style.
func (w *ExcelWriter) headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: excelHeaderFG, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{excelHeaderBG}, Pattern: 1},
	})
}

// severityStyles builds the fill styles for the severity cells.
func (w *ExcelWriter) severityStyles(f *excelize.File) (map[model.Severity]int, error) {
	styles := make(map[model.Severity]int, 3)

	for severity, colors := range map[model.Severity][2]string{
		model.SeverityError:   {excelErrorBG, excelErrorFG},
		model.SeverityWarning: {excelWarningBG, excelWarningFG},
		model.SeverityInfo:    {excelInfoBG, excelInfoFG},
	} {
		id, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Color: colors[1]},
			Fill: excelize.Fill{Type: "pattern", Color: []string{colors[0]}, Pattern: 1},
		})
		if err != nil {
			return nil, err
		}
		styles[severity] = id
	}

	return styles, nil
}
