// Package model defines the core data structures shared across webaudit:
// findings, severity levels, crawled pages, and run reports.
//
// This package has no dependencies on other internal packages, making it
// safe to import from anywhere in the codebase. All types here are data
// containers; behavior lives in the packages that produce or consume them.
package model
