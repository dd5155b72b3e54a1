// Package engine orchestrates audit runs: the single-site crawl loop
// that drives the frontier, fetcher, parser, and auditors into one
// ordered finding stream, and the batch runner that audits multiple
// sites concurrently.
package engine
