// Package crawler implements the crawl pipeline primitives: URL
// canonicalization, the BFS frontier with at-most-once admission, the
// rate-limited HTTP fetcher with bounded retries, and the HTML parser
// that extracts audit-relevant content from fetched pages.
package crawler
