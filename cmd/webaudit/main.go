// Package main provides the entry point for the webaudit CLI.
//
// webaudit crawls a website and audits every page for brand design
// compliance, SEO hygiene, and content quality.
//
// Usage:
//
//	webaudit audit https://example.com
//	webaudit audit --palette palette.yaml https://example.com
//
// See --help for all available options.
package main

// main is the entry point for webaudit.
func main() {
	Execute()
}
