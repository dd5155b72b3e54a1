package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected
// default values. This serves as living documentation of the defaults;
// changes to them must be intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxPages is 50", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 50 {
			t.Errorf("expected MaxPages to be 50, got %d", cfg.MaxPages)
		}
	})

	t.Run("default RateInterval is 500ms", func(t *testing.T) {
		t.Parallel()
		if cfg.RateInterval != 500*time.Millisecond {
			t.Errorf("expected RateInterval to be 500ms, got %v", cfg.RateInterval)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Retries is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.Retries != 2 {
			t.Errorf("expected Retries to be 2, got %d", cfg.Retries)
		}
	})

	t.Run("default auditor set is design, seo, content", func(t *testing.T) {
		t.Parallel()
		want := []string{"design", "seo", "content"}
		if len(cfg.Auditors) != len(want) {
			t.Fatalf("expected %d auditors, got %d", len(want), len(cfg.Auditors))
		}
		for i, name := range want {
			if cfg.Auditors[i] != name {
				t.Errorf("expected auditor %d to be %q, got %q", i, name, cfg.Auditors[i])
			}
		}
	})

	t.Run("default Format is text", func(t *testing.T) {
		t.Parallel()
		if cfg.Format != "text" {
			t.Errorf("expected Format to be 'text', got %q", cfg.Format)
		}
	})

	t.Run("default Concurrency is 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 4 {
			t.Errorf("expected Concurrency to be 4, got %d", cfg.Concurrency)
		}
	})

	t.Run("default SaveToDB is true", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case exercises one specific validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// validConfig returns a minimal valid configuration.
	// Tests modify individual fields to trip specific rules.
	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"https://example.com"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("no seeds returns ErrNoSeed", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Seeds = nil
		if err := cfg.Validate(); !errors.Is(err, ErrNoSeed) {
			t.Errorf("expected ErrNoSeed, got %v", err)
		}
	})

	t.Run("zero page budget returns ErrInvalidMaxPages", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.MaxPages = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidMaxPages) {
			t.Errorf("expected ErrInvalidMaxPages, got %v", err)
		}
	})

	t.Run("negative rate interval returns ErrInvalidRateInterval", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RateInterval = -time.Second
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRateInterval) {
			t.Errorf("expected ErrInvalidRateInterval, got %v", err)
		}
	})

	t.Run("zero rate interval is allowed", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RateInterval = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("zero timeout returns ErrInvalidTimeout", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Timeout = 0
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTimeout) {
			t.Errorf("expected ErrInvalidTimeout, got %v", err)
		}
	})

	t.Run("negative retries returns ErrInvalidRetries", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Retries = -1
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidRetries) {
			t.Errorf("expected ErrInvalidRetries, got %v", err)
		}
	})

	t.Run("unknown format returns ErrUnknownFormat", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Format = "pdf"
		if err := cfg.Validate(); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})

	t.Run("excel format without output returns ErrExcelNeedsOutput", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Format = "excel"
		cfg.OutputPath = ""
		if err := cfg.Validate(); !errors.Is(err, ErrExcelNeedsOutput) {
			t.Errorf("expected ErrExcelNeedsOutput, got %v", err)
		}
	})

	t.Run("excel format with output is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Format = "excel"
		cfg.OutputPath = "report.xlsx"
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("empty auditor set returns ErrNoAuditors", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Auditors = nil
		if err := cfg.Validate(); !errors.Is(err, ErrNoAuditors) {
			t.Errorf("expected ErrNoAuditors, got %v", err)
		}
	})

	t.Run("unknown auditor returns ErrUnknownAuditor", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Auditors = []string{"design", "accessibility"}
		if err := cfg.Validate(); !errors.Is(err, ErrUnknownAuditor) {
			t.Errorf("expected ErrUnknownAuditor, got %v", err)
		}
	})

	t.Run("malformed exclusion pattern returns ErrInvalidExcludePattern", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ExcludePatterns = []string{`\/admin\/(`}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidExcludePattern) {
			t.Errorf("expected ErrInvalidExcludePattern, got %v", err)
		}
	})

	t.Run("valid exclusion pattern passes", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ExcludePatterns = []string{`/admin/`, `\.pdf$`}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

// TestConfigDesignActive verifies detection of the design auditor in the
// active set.
func TestConfigDesignActive(t *testing.T) {
	t.Parallel()

	t.Run("design in set", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Auditors: []string{"seo", "design"}}
		if !cfg.DesignActive() {
			t.Error("expected DesignActive to be true")
		}
	})

	t.Run("design not in set", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Auditors: []string{"seo", "content"}}
		if cfg.DesignActive() {
			t.Error("expected DesignActive to be false")
		}
	})
}

// TestLoadPalette tests palette YAML loading and validation.
func TestLoadPalette(t *testing.T) {
	t.Parallel()

	// writePalette writes YAML content to a temp file and returns its path.
	writePalette := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "palette.yml")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write palette file: %v", err)
		}
		return path
	}

	t.Run("valid palette loads all sections", func(t *testing.T) {
		t.Parallel()
		path := writePalette(t, `
site_name: Example Corp
brand_colors:
  "#1A2B3C": deep-navy
  "#ffffff": surface-light
approved_textures:
  linen-grain.avif: hero background grain
approved_blend_modes:
  - overlay
  - multiply
texture_opacity_range:
  min: 0.05
  max: 0.20
section_rules:
  hero-section:
    background_color: "#1a2b3c"
    blend_mode: overlay
    opacity_range:
      min: 0.05
      max: 0.20
`)

		p, err := LoadPalette(path)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}

		if p.SiteName != "Example Corp" {
			t.Errorf("expected site name 'Example Corp', got %q", p.SiteName)
		}

		// Keys are normalized to lowercase on load.
		name, ok := p.ColorName("#1a2b3c")
		if !ok || name != "deep-navy" {
			t.Errorf("expected deep-navy for #1a2b3c, got %q (found=%v)", name, ok)
		}

		if !p.IsApprovedBlendMode("Overlay") {
			t.Error("expected 'Overlay' to be an approved blend mode (case-insensitive)")
		}
		if p.IsApprovedBlendMode("screen") {
			t.Error("expected 'screen' to be rejected")
		}

		if !p.TextureOpacityRange.Contains(0.15) {
			t.Error("expected 0.15 to be inside the opacity range")
		}
		if p.TextureOpacityRange.Contains(0.30) {
			t.Error("expected 0.30 to be outside the opacity range")
		}
	})

	t.Run("missing file returns ErrPaletteNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadPalette(filepath.Join(t.TempDir(), "nope.yml"))
		if !errors.Is(err, ErrPaletteNotFound) {
			t.Errorf("expected ErrPaletteNotFound, got %v", err)
		}
	})

	t.Run("malformed YAML returns ErrPaletteInvalid", func(t *testing.T) {
		t.Parallel()
		path := writePalette(t, "brand_colors: [not: a: map")
		_, err := LoadPalette(path)
		if !errors.Is(err, ErrPaletteInvalid) {
			t.Errorf("expected ErrPaletteInvalid, got %v", err)
		}
	})

	t.Run("non-hex brand color key returns ErrPaletteInvalid", func(t *testing.T) {
		t.Parallel()
		path := writePalette(t, `
brand_colors:
  "blue": primary
`)
		_, err := LoadPalette(path)
		if !errors.Is(err, ErrPaletteInvalid) {
			t.Errorf("expected ErrPaletteInvalid, got %v", err)
		}
	})

	t.Run("inverted opacity range returns ErrPaletteInvalid", func(t *testing.T) {
		t.Parallel()
		path := writePalette(t, `
texture_opacity_range:
  min: 0.5
  max: 0.1
`)
		_, err := LoadPalette(path)
		if !errors.Is(err, ErrPaletteInvalid) {
			t.Errorf("expected ErrPaletteInvalid, got %v", err)
		}
	})
}

// TestPaletteSectionRulesFor verifies substring matching of section rules,
// including longest-key precedence.
func TestPaletteSectionRulesFor(t *testing.T) {
	t.Parallel()

	p := &Palette{
		SectionRules: map[string]SectionRule{
			"hero":         {BackgroundColor: "#111111"},
			"hero-section": {BackgroundColor: "#222222"},
			"footer":       {BlendMode: "multiply"},
		},
	}

	t.Run("longest key wins", func(t *testing.T) {
		t.Parallel()
		rule := p.SectionRulesFor("hero-section is-dark")
		if rule == nil {
			t.Fatal("expected a rule, got nil")
		}
		if rule.BackgroundColor != "#222222" {
			t.Errorf("expected the more specific rule, got background %q", rule.BackgroundColor)
		}
	})

	t.Run("substring match", func(t *testing.T) {
		t.Parallel()
		rule := p.SectionRulesFor("site-footer dark")
		if rule == nil {
			t.Fatal("expected a rule, got nil")
		}
		if rule.BlendMode != "multiply" {
			t.Errorf("expected blend mode 'multiply', got %q", rule.BlendMode)
		}
	})

	t.Run("no match returns nil", func(t *testing.T) {
		t.Parallel()
		if rule := p.SectionRulesFor("content-grid"); rule != nil {
			t.Errorf("expected nil, got %+v", rule)
		}
	})
}

// TestPaletteIsApprovedTexture verifies texture matching against base file
// names regardless of URL prefix.
func TestPaletteIsApprovedTexture(t *testing.T) {
	t.Parallel()

	p := &Palette{
		ApprovedTextures: map[string]string{
			"linen-grain.avif": "hero background grain",
		},
	}

	t.Run("bare file name", func(t *testing.T) {
		t.Parallel()
		if !p.IsApprovedTexture("linen-grain.avif") {
			t.Error("expected bare file name to be approved")
		}
	})

	t.Run("full CDN URL", func(t *testing.T) {
		t.Parallel()
		if !p.IsApprovedTexture("https://cdn.example.com/assets/linen-grain.avif") {
			t.Error("expected CDN URL with approved base name to be approved")
		}
	})

	t.Run("unapproved file", func(t *testing.T) {
		t.Parallel()
		if p.IsApprovedTexture("noise.png") {
			t.Error("expected unapproved texture to be rejected")
		}
	})
}
