package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Palette loading errors.
var (
	// ErrPaletteNotFound is returned when the palette file does not exist.
	ErrPaletteNotFound = errors.New("palette file not found")

	// ErrPaletteInvalid is returned when the palette file is not valid YAML
	// or holds malformed rule data.
	ErrPaletteInvalid = errors.New("invalid palette file")
)

// LoadPalette reads and validates a palette YAML file.
// Palette problems are fatal: auditing against a half-loaded rule set
// would produce misleading findings, so we refuse to start instead.
func LoadPalette(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPaletteNotFound, path)
		}
		return nil, fmt.Errorf("failed to read palette file: %w", err)
	}

	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaletteInvalid, err)
	}

	if err := validatePalette(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaletteInvalid, err)
	}

	normalizePalette(&p)
	return &p, nil
}

// validatePalette checks the rule data for shapes that would make the
// design auditor misbehave silently.
func validatePalette(p *Palette) error {
	for hex := range p.BrandColors {
		if !validHex(hex) {
			return fmt.Errorf("brand color %q: keys must be 6-digit hex values like #1a2b3c", hex)
		}
	}
	if !p.TextureOpacityRange.IsZero() {
		if err := validOpacityRange(p.TextureOpacityRange); err != nil {
			return fmt.Errorf("texture_opacity_range: %v", err)
		}
	}
	for key, rule := range p.SectionRules {
		if key == "" {
			return errors.New("section_rules: empty class key")
		}
		if rule.BackgroundColor != "" && !validHex(rule.BackgroundColor) {
			return fmt.Errorf("section_rules[%s]: background_color must be 6-digit hex", key)
		}
		if rule.OpacityRange != nil {
			if err := validOpacityRange(*rule.OpacityRange); err != nil {
				return fmt.Errorf("section_rules[%s]: %v", key, err)
			}
		}
	}
	return nil
}

// normalizePalette lowercases color keys so lookups can assume canonical
// form regardless of how the YAML author wrote them.
func normalizePalette(p *Palette) {
	if len(p.BrandColors) > 0 {
		colors := make(map[string]string, len(p.BrandColors))
		for hex, name := range p.BrandColors {
			colors[strings.ToLower(hex)] = name
		}
		p.BrandColors = colors
	}
	for key, rule := range p.SectionRules {
		rule.BackgroundColor = strings.ToLower(rule.BackgroundColor)
		rule.BlendMode = strings.ToLower(rule.BlendMode)
		p.SectionRules[key] = rule
	}
}

func validHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range strings.ToLower(s[1:]) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func validOpacityRange(r OpacityRange) error {
	if r.Min < 0 || r.Max > 1 || r.Min > r.Max {
		return fmt.Errorf("range %.2f-%.2f must satisfy 0 <= min <= max <= 1", r.Min, r.Max)
	}
	return nil
}
