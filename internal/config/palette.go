package config

import "strings"

// Palette holds the brand design rules the design auditor checks pages
// against. It is loaded once from a YAML file and immutable afterwards.
//
// Design decision: We key brand colors by hex value rather than by name
// because the auditor's hot path is "I found this color on the page, is
// it approved and what is it called". Reversing the map at audit time
// for every styled element would be wasteful.
type Palette struct {
	// SiteName is a human-readable label for the site this palette belongs to.
	SiteName string `yaml:"site_name"`

	// BrandColors maps lowercase 6-digit hex values to their brand names,
	// e.g. "#1a2b3c" -> "deep-navy".
	BrandColors map[string]string `yaml:"brand_colors"`

	// ApprovedTextures maps texture file names to a description,
	// e.g. "linen-grain.avif" -> "hero background grain".
	ApprovedTextures map[string]string `yaml:"approved_textures"`

	// ApprovedBlendModes lists the CSS blend modes the brand allows.
	ApprovedBlendModes []string `yaml:"approved_blend_modes"`

	// TextureOpacityRange is the allowed opacity range for texture
	// overlays, as fractions (e.g. 0.05 to 0.20).
	TextureOpacityRange OpacityRange `yaml:"texture_opacity_range"`

	// SectionRules maps a class-name substring to the design rules for
	// sections whose class attribute contains that substring.
	SectionRules map[string]SectionRule `yaml:"section_rules"`
}

// OpacityRange is an inclusive opacity interval with fraction endpoints.
type OpacityRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether the opacity value falls inside the range.
func (r OpacityRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// IsZero reports whether the range was left unset in the palette file.
func (r OpacityRange) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// SectionRule holds the design constraints for one class of page section.
// Zero-value fields mean "no constraint".
type SectionRule struct {
	// BackgroundColor is the required background color as lowercase
	// 6-digit hex. Empty means the background is unconstrained.
	BackgroundColor string `yaml:"background_color,omitempty"`

	// BlendMode is the required mix/background blend mode.
	BlendMode string `yaml:"blend_mode,omitempty"`

	// OpacityRange is the allowed opacity interval for this section.
	// Nil means opacity is unconstrained.
	OpacityRange *OpacityRange `yaml:"opacity_range,omitempty"`
}

// ColorName returns the brand name for a lowercase 6-digit hex color and
// whether it belongs to the palette.
func (p *Palette) ColorName(hex string) (string, bool) {
	name, ok := p.BrandColors[strings.ToLower(hex)]
	return name, ok
}

// IsApprovedBlendMode reports whether the blend mode is in the approved list.
// Comparison is case-insensitive.
func (p *Palette) IsApprovedBlendMode(mode string) bool {
	mode = strings.ToLower(strings.TrimSpace(mode))
	for _, m := range p.ApprovedBlendModes {
		if strings.ToLower(m) == mode {
			return true
		}
	}
	return false
}

// IsApprovedTexture reports whether the texture file name is approved.
// Only the base file name is compared, so CDN URL prefixes do not matter.
func (p *Palette) IsApprovedTexture(fileName string) bool {
	if i := strings.LastIndexByte(fileName, '/'); i >= 0 {
		fileName = fileName[i+1:]
	}
	_, ok := p.ApprovedTextures[fileName]
	return ok
}

// SectionRulesFor returns the rule whose class-name key is a substring of
// the element's class attribute, or nil when no rule applies. When
// multiple keys match, the longest key wins so that more specific rules
// take precedence.
func (p *Palette) SectionRulesFor(classAttr string) *SectionRule {
	var (
		best    *SectionRule
		bestLen int
	)
	for key := range p.SectionRules {
		if len(key) > bestLen && strings.Contains(classAttr, key) {
			rule := p.SectionRules[key]
			best = &rule
			bestLen = len(key)
		}
	}
	return best
}
