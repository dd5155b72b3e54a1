package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yuniko-soft/webaudit/internal/auditor"
	"github.com/yuniko-soft/webaudit/internal/config"
	"github.com/yuniko-soft/webaudit/internal/crawler"
	"github.com/yuniko-soft/webaudit/internal/database"
	"github.com/yuniko-soft/webaudit/internal/engine"
	"github.com/yuniko-soft/webaudit/internal/log"
	"github.com/yuniko-soft/webaudit/internal/model"
	"github.com/yuniko-soft/webaudit/internal/report"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [url...]",
		Short: "Crawl a website and audit it for design, SEO, and content issues",
		Long: `Audit crawls a website breadth-first from each seed URL and runs every
page through the active auditors.

The crawl stays on the seed's host, respects a page budget, and rate
limits its requests. Pages that fail to fetch or parse become findings
rather than aborting the run.

Examples:
  # Audit a site with all auditors (palette required for design)
  webaudit audit --palette palette.yaml https://example.com

  # SEO and content checks only, no palette needed
  webaudit audit --auditors seo,content https://example.com

  # Audit several sites concurrently and write one Excel workbook each
  webaudit audit --palette palette.yaml --format excel --output report.xlsx \
    https://example.com https://example.org

  # Skip archives and the admin area
  webaudit audit --auditors seo --exclude '/wp-admin/' --exclude '\.pdf$' \
    https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runAuditCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch per site")
	cmd.Flags().Duration("rate-limit", config.DefaultRateInterval,
		"Minimum interval between requests (0 disables rate limiting)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request HTTP timeout")
	cmd.Flags().Int("retries", config.DefaultRetries,
		"Retry attempts for timeouts and 5xx responses")
	cmd.Flags().StringSliceP("exclude", "x", nil,
		"Regular expression for URLs to skip (repeatable)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Auditor flags
	cmd.Flags().StringSliceP("auditors", "a", config.KnownAuditors,
		"Auditors to run, in order (design, seo, content)")
	cmd.Flags().String("palette", "",
		"Brand palette YAML file (required when the design auditor is active)")

	// Batch flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of sites audited in parallel")

	// Report flags
	cmd.Flags().StringP("format", "f", "text",
		"Report format: text, csv, json, markdown, or excel")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to this file instead of stdout (required for excel)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save the run to the history database")

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.DesignActive() && cfg.PalettePath == "" {
		return config.ErrPaletteRequired
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Graceful shutdown on interrupt: the engine returns a partial report
	// on cancellation, which is still reported and saved.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAudit(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Seeds = args

	var err error

	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.RateInterval, err = cmd.Flags().GetDuration("rate-limit"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Retries, err = cmd.Flags().GetInt("retries"); err != nil {
		return nil, err
	}
	if cfg.ExcludePatterns, err = cmd.Flags().GetStringSlice("exclude"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.Auditors, err = cmd.Flags().GetStringSlice("auditors"); err != nil {
		return nil, err
	}
	if cfg.PalettePath, err = cmd.Flags().GetString("palette"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.Format, err = cmd.Flags().GetString("format"); err != nil {
		return nil, err
	}
	if cfg.OutputPath, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runAudit executes the audit across all seeds.
func runAudit(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var palette *config.Palette
	if cfg.DesignActive() {
		var err error
		palette, err = config.LoadPalette(cfg.PalettePath)
		if err != nil {
			return fmt.Errorf("failed to load palette: %w", err)
		}
		logger.Info("palette loaded",
			"site", palette.SiteName,
			"brand_colors", len(palette.BrandColors))
	}

	var db *database.AuditDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	factory := func(seed string) (*engine.Engine, error) {
		frontier, err := crawler.NewFrontier(seed, cfg.ExcludePatterns)
		if err != nil {
			return nil, err
		}

		fetcher := crawler.NewFetcher(cfg.Timeout,
			crawler.WithRateInterval(cfg.RateInterval),
			crawler.WithRetries(cfg.Retries),
			crawler.WithUserAgent(cfg.UserAgent),
			crawler.WithMaxBodySize(cfg.MaxBodySize))

		registry := buildRegistry(cfg, palette, logger)

		return engine.New(frontier, fetcher, registry,
			engine.WithMaxPages(cfg.MaxPages),
			engine.WithLogger(logger)), nil
	}

	runner := engine.NewBatchRunner(factory,
		engine.WithConcurrency(cfg.Concurrency),
		engine.WithBatchLogger(logger))

	startTime := time.Now()
	results, err := runner.Run(ctx, cfg.Seeds)
	if err != nil {
		logger.Warn("audit interrupted", "error", err)
	}

	multiSeed := len(cfg.Seeds) > 1
	var failed int
	for _, result := range results {
		if result.Report == nil {
			failed++
			fmt.Fprintf(os.Stderr, "Audit failed for %s: %v\n", result.SeedURL, result.Err)
			continue
		}

		fmt.Printf("Audited %s: %d pages, %d findings\n",
			result.SeedURL, result.Report.PagesVisited, len(result.Report.Findings))

		if err := outputReport(cfg, result.Report, multiSeed); err != nil {
			logger.Error("report output failed", "seed", result.SeedURL, "error", err)
			failed++
		}

		if db != nil {
			runID, err := db.SaveRunReport(ctx, result.Report)
			if err != nil {
				logger.Error("failed to save run", "seed", result.SeedURL, "error", err)
			} else {
				logger.Info("run saved", "seed", result.SeedURL, "run_id", runID)
			}
		}
	}

	fmt.Printf("\nDone in %s\n", time.Since(startTime).Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%d of %d audits failed", failed, len(results))
	}
	return nil
}

// buildRegistry assembles the auditor registry in the configured order.
func buildRegistry(cfg *config.Config, palette *config.Palette, logger *slog.Logger) *auditor.Registry {
	registry := auditor.NewRegistry(auditor.WithLogger(logger))
	for _, name := range cfg.Auditors {
		switch name {
		case "design":
			registry.Register(auditor.NewDesignAuditor(palette))
		case "seo":
			registry.Register(auditor.NewSEOAuditor())
		case "content":
			registry.Register(auditor.NewContentAuditor())
		}
	}
	return registry
}

// outputReport writes one run's report in the configured format.
func outputReport(cfg *config.Config, runReport *model.RunReport, multiSeed bool) error {
	var output io.Writer = os.Stdout

	if cfg.OutputPath != "" {
		path := cfg.OutputPath
		if multiSeed {
			path = perSeedPath(path, runReport.SeedURL)
		}

		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err := buildWriter(cfg, output).Write(runReport)
	return err
}

// buildWriter selects the report writer for the configured format.
func buildWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch cfg.Format {
	case "csv":
		return report.NewCSVWriter(output)
	case "json":
		return report.NewJSONWriter(output,
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()))
	case "markdown":
		return report.NewMarkdownWriter(output)
	case "excel":
		return report.NewExcelWriter(output)
	default:
		return report.NewTextWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// perSeedPath derives a per-site output path from the base path by
// inserting the seed's host before the extension, so multi-seed runs
// with --output do not overwrite each other.
func perSeedPath(base, seedURL string) string {
	host := seedURL
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	host = strings.ReplaceAll(host, ":", "_")

	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + host + ext
}
