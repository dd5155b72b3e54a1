package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yuniko-soft/webaudit/internal/model"
)

// AuditDB provides SQLite-based storage for audit run history.
// It manages connection pooling and provides methods for saving and
// loading runs.
//
// Design decision: We store findings both as normalized rows and as a
// JSON snapshot of the full report. The rows power the compare command's
// diff queries; the snapshot reproduces the exact report a writer saw,
// including fields added in later versions.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// ErrRunNotFound is returned when the requested run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "webaudit.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple connections buy nothing
	// for our append-then-read workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- One row per audit run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		pages_visited INTEGER NOT NULL,
		pages_failed INTEGER NOT NULL,
		frontier_remaining INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		info_count INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed_url);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- One row per finding, in run-sequence order (position column)
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		page_url TEXT NOT NULL,
		auditor TEXT NOT NULL,
		severity TEXT NOT NULL,
		category TEXT NOT NULL,
		property TEXT,
		expected TEXT,
		found TEXT,
		message TEXT NOT NULL,
		selector TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_category ON findings(category);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRunReport stores a completed run and its findings, returning the
// new run's ID. The run row and its finding rows are written in one
// transaction so partial runs never appear in the history.
func (adb *AuditDB) SaveRunReport(ctx context.Context, report *model.RunReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summary := report.Summary()

	tx, err := adb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (seed_url, timestamp, pages_visited, pages_failed,
		frontier_remaining, error_count, warning_count, info_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.SeedURL,
		report.DateAudited.UTC().Format("2006-01-02 15:04:05"),
		report.PagesVisited,
		report.PagesFailed,
		report.FrontierRemaining,
		summary.ErrorCount,
		summary.WarningCount,
		summary.InfoCount,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO findings (run_id, position, page_url, auditor, severity,
		category, property, expected, found, message, selector)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // read-only cleanup

	for i, f := range report.Findings {
		if _, err := stmt.ExecContext(ctx,
			runID, i, f.PageURL, f.Auditor, f.SeverityText,
			f.Category, f.Property, f.Expected, f.Found, f.Message, f.Selector,
		); err != nil {
			return 0, fmt.Errorf("failed to insert finding %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// GetRun retrieves a full run report by its ID from the JSON snapshot.
func (adb *AuditDB) GetRun(ctx context.Context, id int64) (*model.RunReport, error) {
	var reportJSON string
	err := adb.db.QueryRowContext(ctx,
		`SELECT report_json FROM runs WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}

	return &report, nil
}

// GetFindings retrieves a run's findings from the normalized rows, in
// run-sequence order.
func (adb *AuditDB) GetFindings(ctx context.Context, runID int64) ([]model.Finding, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT page_url, auditor, severity, category, property, expected, found, message, selector
	FROM findings
	WHERE run_id = ?
	ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []model.Finding
	for rows.Next() {
		var f model.Finding
		var severity string
		if err := rows.Scan(
			&f.PageURL, &f.Auditor, &severity, &f.Category,
			&f.Property, &f.Expected, &f.Found, &f.Message, &f.Selector,
		); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.SeverityText = severity
		f.Severity = model.ParseSeverity(severity)
		findings = append(findings, f)
	}

	return findings, rows.Err()
}

// RunMetadata summarizes one stored run for history listings.
type RunMetadata struct {
	// ID is the run's database identifier.
	ID int64

	// SeedURL is the site the run audited.
	SeedURL string

	// Timestamp is when the run started.
	Timestamp time.Time

	// PagesVisited is the number of pages fetched.
	PagesVisited int

	// ErrorCount, WarningCount, and InfoCount are the severity totals.
	ErrorCount   int
	WarningCount int
	InfoCount    int
}

// ListRuns returns run metadata, newest first. When seedURL is non-empty
// only that site's runs are listed.
func (adb *AuditDB) ListRuns(ctx context.Context, seedURL string) ([]RunMetadata, error) {
	query := `
	SELECT id, seed_url, timestamp, pages_visited, error_count, warning_count, info_count
	FROM runs
	`
	args := make([]any, 0, 1)
	if seedURL != "" {
		query += " WHERE seed_url = ?"
		args = append(args, seedURL)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string
		if err := rows.Scan(
			&meta.ID, &meta.SeedURL, &timestamp, &meta.PagesVisited,
			&meta.ErrorCount, &meta.WarningCount, &meta.InfoCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// LatestRunID returns the most recent run ID for a site.
func (adb *AuditDB) LatestRunID(ctx context.Context, seedURL string) (int64, error) {
	var id int64
	err := adb.db.QueryRowContext(ctx, `
	SELECT id FROM runs
	WHERE seed_url = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1`, seedURL).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRunNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get latest run: %w", err)
	}
	return id, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
