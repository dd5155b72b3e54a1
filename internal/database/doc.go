// Package database persists audit run history in SQLite. Stored runs
// feed the compare command, which diffs the finding sequences of two
// runs against the same site.
package database
