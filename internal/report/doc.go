// Package report renders audit run reports in the supported output
// formats: human-readable text, JSON, CSV, Markdown, and Excel. All
// writers consume the same RunReport and preserve its finding order.
package report
