package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yuniko-soft/webaudit/internal/config"
	"github.com/yuniko-soft/webaudit/internal/model"
)

// TestNewAuditCmd tests the audit command creation.
func TestNewAuditCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAuditCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "audit [url...]" {
			t.Errorf("expected use 'audit [url...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()
		flags := map[string]string{
			"max-pages":   "p",
			"rate-limit":  "",
			"timeout":     "t",
			"retries":     "",
			"exclude":     "x",
			"user-agent":  "",
			"auditors":    "a",
			"palette":     "",
			"concurrency": "b",
			"format":      "f",
			"output":      "o",
			"no-save":     "",
		}
		for name, shorthand := range flags {
			flag := cmd.Flags().Lookup(name)
			if flag == nil {
				t.Errorf("expected %s flag", name)
				continue
			}
			if flag.Shorthand != shorthand {
				t.Errorf("flag %s: expected shorthand %q, got %q", name, shorthand, flag.Shorthand)
			}
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewAuditCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		_ = root.PersistentFlags().Set("verbose", "true")

		auditCmd, _, err := root.Find([]string{"audit"})
		if err != nil {
			t.Fatalf("failed to find audit command: %v", err)
		}

		result := getVerboseFlag(auditCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewAuditCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://example.com" {
			t.Errorf("expected seeds [https://example.com], got %v", cfg.Seeds)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("expected MaxPages %d, got %d", config.DefaultMaxPages, cfg.MaxPages)
		}
		if cfg.Format != "text" {
			t.Errorf("expected format 'text', got %q", cfg.Format)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to default to true")
		}
	})

	t.Run("builds config with custom max-pages", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("max-pages", "10")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxPages != 10 {
			t.Errorf("expected MaxPages 10, got %d", cfg.MaxPages)
		}
	})

	t.Run("builds config with custom rate limit", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("rate-limit", "2s")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.RateInterval != 2*time.Second {
			t.Errorf("expected RateInterval 2s, got %s", cfg.RateInterval)
		}
	})

	t.Run("builds config with auditor subset", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("auditors", "seo,content")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Auditors) != 2 || cfg.Auditors[0] != "seo" || cfg.Auditors[1] != "content" {
			t.Errorf("expected auditors [seo content], got %v", cfg.Auditors)
		}
		if cfg.DesignActive() {
			t.Error("expected design auditor to be inactive")
		}
	})

	t.Run("no-save disables database", func(t *testing.T) {
		cmd := NewAuditCmd()
		_ = cmd.Flags().Set("no-save", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-save")
		}
	})

	t.Run("builds config with multiple seeds", func(t *testing.T) {
		cmd := NewAuditCmd()
		cfg, err := buildConfig(cmd, []string{
			"https://a.example.com", "https://b.example.com", "https://c.example.com",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Seeds) != 3 {
			t.Errorf("expected 3 seeds, got %d", len(cfg.Seeds))
		}
	})
}

// TestRunAuditCmdValidation tests fail-fast validation in the audit command.
func TestRunAuditCmdValidation(t *testing.T) {
	t.Parallel()

	t.Run("rejects run without seeds", func(t *testing.T) {
		t.Parallel()

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"audit"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for no seed URLs")
		}
		if !errors.Is(err, config.ErrNoSeed) {
			t.Errorf("expected ErrNoSeed, got: %v", err)
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"audit", "--format", "pdf", "https://example.com"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for unknown format")
		}
		if !errors.Is(err, config.ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got: %v", err)
		}
	})

	t.Run("rejects unknown auditor", func(t *testing.T) {
		t.Parallel()

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"audit", "--auditors", "accessibility", "https://example.com"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for unknown auditor")
		}
		if !errors.Is(err, config.ErrUnknownAuditor) {
			t.Errorf("expected ErrUnknownAuditor, got: %v", err)
		}
	})

	t.Run("requires palette when design auditor is active", func(t *testing.T) {
		t.Parallel()

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"audit", "https://example.com"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error when design auditor has no palette")
		}
		if !errors.Is(err, config.ErrPaletteRequired) {
			t.Errorf("expected ErrPaletteRequired, got: %v", err)
		}
	})

	t.Run("excel format requires output path", func(t *testing.T) {
		t.Parallel()

		rootCmd := NewRootCmd()
		rootCmd.SetArgs([]string{"audit", "--auditors", "seo", "--format", "excel", "https://example.com"})

		err := rootCmd.Execute()
		if err == nil {
			t.Fatal("expected error for excel format without output")
		}
		if !errors.Is(err, config.ErrExcelNeedsOutput) {
			t.Errorf("expected ErrExcelNeedsOutput, got: %v", err)
		}
	})
}

// TestBuildRegistry tests auditor registry assembly from configuration.
func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	logger := testLogger()

	t.Run("registers auditors in configured order", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Auditors = []string{"content", "seo"}

		registry := buildRegistry(cfg, nil, logger)
		names := registry.Names()
		if len(names) != 2 || names[0] != "content" || names[1] != "seo" {
			t.Errorf("expected [content seo], got %v", names)
		}
	})

	t.Run("registers all known auditors", func(t *testing.T) {
		t.Parallel()

		palette := &config.Palette{SiteName: "test"}
		cfg := config.NewConfig()

		registry := buildRegistry(cfg, palette, logger)
		names := registry.Names()
		if len(names) != 3 {
			t.Errorf("expected 3 auditors, got %v", names)
		}
	})
}

// TestOutputReport tests report output to stdout and files.
func TestOutputReport(t *testing.T) {
	t.Run("writes text report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.txt")

		cfg := config.NewConfig()
		cfg.Format = "text"
		cfg.OutputPath = outputPath

		runReport := model.NewRunReport("https://example.com/")
		runReport.PagesVisited = 1

		if err := outputReport(cfg, runReport, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}
		if !strings.Contains(string(content), "https://example.com/") {
			t.Error("expected report to contain the seed URL")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "subdir", "nested", "report.json")

		cfg := config.NewConfig()
		cfg.Format = "json"
		cfg.OutputPath = outputPath

		runReport := model.NewRunReport("https://example.com/")

		if err := outputReport(cfg, runReport, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created in nested directory")
		}
	})

	t.Run("derives per-seed path for multi-seed runs", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.csv")

		cfg := config.NewConfig()
		cfg.Format = "csv"
		cfg.OutputPath = outputPath

		runReport := model.NewRunReport("https://example.com/")

		if err := outputReport(cfg, runReport, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantPath := filepath.Join(tmpDir, "report.example.com.csv")
		if _, err := os.Stat(wantPath); os.IsNotExist(err) {
			t.Errorf("expected per-seed output file %s to be created", wantPath)
		}
	})
}

// TestPerSeedPath tests the per-site output path derivation.
func TestPerSeedPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		seed string
		want string
	}{
		{
			name: "simple host",
			base: "report.json",
			seed: "https://example.com/",
			want: "report.example.com.json",
		},
		{
			name: "host with port",
			base: "report.xlsx",
			seed: "http://localhost:8080/",
			want: "report.localhost_8080.xlsx",
		},
		{
			name: "no extension",
			base: "report",
			seed: "https://example.org/blog",
			want: "report.example.org",
		},
		{
			name: "nested path",
			base: "out/report.csv",
			seed: "https://example.com/",
			want: "out/report.example.com.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := perSeedPath(tt.base, tt.seed)
			if got != tt.want {
				t.Errorf("perSeedPath(%q, %q) = %q, want %q", tt.base, tt.seed, got, tt.want)
			}
		})
	}
}
