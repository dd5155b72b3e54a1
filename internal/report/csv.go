package report

import (
	"encoding/csv"
	"io"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// csvHeader is the column layout for CSV reports. One row per finding,
// in run-sequence order.
var csvHeader = []string{
	"page_url", "auditor", "severity", "category",
	"property", "expected", "found", "message", "selector",
}

// CSVWriter outputs reports as CSV, one finding per row.
// This format is designed for spreadsheet import and ad-hoc filtering.
//
// Design decision: We use standard encoding/csv rather than a third-party
// CSV library because:
// 1. RFC 4180 quoting is all the format needs
// 2. It's part of the standard library (no extra dependencies)
// 3. Streaming row writes keep memory flat for large runs
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs every finding as one CSV row, preceded by a header row.
func (w *CSVWriter) Write(report *model.RunReport) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write(csvHeader); err != nil {
		return counter.n, err
	}

	for _, f := range report.Findings {
		row := []string{
			f.PageURL,
			f.Auditor,
			f.SeverityText,
			f.Category,
			f.Property,
			f.Expected,
			f.Found,
			f.Message,
			f.Selector,
		}
		if err := cw.Write(row); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// countingWriter tracks bytes written to the wrapped writer.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
