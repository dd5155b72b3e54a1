// Package auditor defines the pluggable page auditor contract and the
// built-in auditors: design (brand palette compliance), seo (metadata
// correctness), and content (copy quality). Auditors are stateless per
// page; rule data is fixed at construction.
package auditor
