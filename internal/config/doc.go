// Package config provides configuration structures and utilities for
// webaudit. It defines the crawl and report options supplied by the CLI
// and the brand palette rule data consumed by the design auditor.
package config
