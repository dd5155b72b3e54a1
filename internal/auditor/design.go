package auditor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yuniko-soft/webaudit/internal/config"
	"github.com/yuniko-soft/webaudit/internal/model"
)

// Design finding categories.
const (
	CategoryRogueColor    = "rogue-color"
	CategoryNearMissColor = "near-miss-color"
	CategoryTexture       = "unapproved-texture"
	CategoryBlendMode     = "unapproved-blend-mode"
	CategoryOpacity       = "opacity-out-of-range"
	CategorySectionRule   = "section-rule-violation"
)

var (
	cssRuleRegex       = regexp.MustCompile(`(?s)([^{}]+)\{([^}]*)\}`)
	backgroundImgRegex = regexp.MustCompile(`background-image\s*:\s*url\(["']?([^"')\s]+)["']?\)`)
	blendModeRegex     = regexp.MustCompile(`(?:mix-blend-mode|background-blend-mode)\s*:\s*([^;]+)`)
	opacityRegex       = regexp.MustCompile(`opacity\s*:\s*([\d.]+)`)
	backgroundHexRegex = regexp.MustCompile(`background(?:-color)?\s*:\s*(#[0-9a-fA-F]{3,8})`)
)

// DesignAuditor checks pages against a brand palette: every color used in
// inline styles and embedded style blocks must be an approved brand color,
// texture files and blend modes must come from the approved sets, and
// sections matching palette rules must carry their prescribed styling.
//
// Linked stylesheets are not fetched; each page is audited from its own
// bytes so the engine's one-fetch-per-page contract holds.
type DesignAuditor struct {
	palette *config.Palette
}

// NewDesignAuditor creates a design auditor bound to the given palette.
func NewDesignAuditor(palette *config.Palette) *DesignAuditor {
	return &DesignAuditor{palette: palette}
}

// Name implements Auditor.
func (d *DesignAuditor) Name() string {
	return "design"
}

// Audit implements Auditor.
func (d *DesignAuditor) Audit(page *model.Page) []model.Finding {
	if page.Doc == nil {
		return nil
	}

	var findings []model.Finding
	findings = append(findings, d.auditInlineColors(page)...)
	findings = append(findings, d.auditEmbeddedColors(page)...)
	findings = append(findings, d.auditTextures(page)...)
	findings = append(findings, d.auditSections(page)...)
	return findings
}

// auditInlineColors checks colors in style attributes.
func (d *DesignAuditor) auditInlineColors(page *model.Page) []model.Finding {
	var findings []model.Finding

	page.Doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style := s.AttrOr("style", "")
		selector := elementSelector(s)
		for _, pc := range colorsFromStyle(style) {
			if f, bad := d.evaluateColor(page.URL, pc, selector); bad {
				findings = append(findings, f)
			}
		}
	})

	return findings
}

// auditEmbeddedColors checks colors inside <style> blocks. The CSS is
// scanned rule by rule so findings can carry the offending selector.
func (d *DesignAuditor) auditEmbeddedColors(page *model.Page) []model.Finding {
	var findings []model.Finding

	for _, css := range page.StyleBlocks {
		for _, m := range cssRuleRegex.FindAllStringSubmatch(css, -1) {
			selector := strings.TrimSpace(m[1])
			declarations := m[2]
			for _, pc := range colorsFromStyle(declarations) {
				if f, bad := d.evaluateColor(page.URL, pc, selector); bad {
					findings = append(findings, f)
				}
			}
		}
	}

	return findings
}

// evaluateColor classifies one color value against the palette. Approved
// colors and transparent produce no finding.
func (d *DesignAuditor) evaluateColor(pageURL string, pc propertyColor, selector string) (model.Finding, bool) {
	if pc.hex == "transparent" {
		return model.Finding{}, false
	}
	if _, ok := d.palette.ColorName(pc.hex); ok {
		return model.Finding{}, false
	}

	// Near-miss: a palette color within the RGB distance threshold,
	// almost certainly a typo or an eyeballed value.
	if nearest, name, dist := d.nearestBrandColor(pc.hex); nearest != "" && dist <= nearMissThreshold {
		f := model.NewFinding(pageURL, "design", model.SeverityWarning, CategoryNearMissColor,
			fmt.Sprintf("color %s on %s is a near-miss of %s (%s), distance %.0f",
				pc.hex, pc.property, name, nearest, dist))
		f.Property = pc.property
		f.Expected = fmt.Sprintf("%s (%s)", name, nearest)
		f.Found = pc.hex
		f.Selector = selector
		return f, true
	}

	f := model.NewFinding(pageURL, "design", model.SeverityError, CategoryRogueColor,
		fmt.Sprintf("color %s on %s is not in the brand palette", pc.hex, pc.property))
	f.Property = pc.property
	f.Expected = "any approved palette color"
	f.Found = pc.hex
	f.Selector = selector
	return f, true
}

// nearestBrandColor finds the palette color with the smallest RGB
// distance to the given hex value.
func (d *DesignAuditor) nearestBrandColor(hex string) (nearestHex, nearestName string, distance float64) {
	distance = -1
	for brandHex, name := range d.palette.BrandColors {
		dist := colorDistance(hex, brandHex)
		if dist < 0 {
			continue
		}
		if distance < 0 || dist < distance {
			distance = dist
			nearestHex = brandHex
			nearestName = name
		}
	}
	return nearestHex, nearestName, distance
}

// auditTextures checks background-image files, blend modes, and texture
// opacity on styled elements.
func (d *DesignAuditor) auditTextures(page *model.Page) []model.Finding {
	var findings []model.Finding

	page.Doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style := s.AttrOr("style", "")
		selector := elementSelector(s)

		if m := backgroundImgRegex.FindStringSubmatch(style); m != nil && len(d.palette.ApprovedTextures) > 0 {
			textureURL := m[1]
			fileName := textureFileName(textureURL)
			if !d.palette.IsApprovedTexture(fileName) {
				f := model.NewFinding(page.URL, "design", model.SeverityError, CategoryTexture,
					fmt.Sprintf("texture file %s is not in the approved set", fileName))
				f.Property = "background-image"
				f.Expected = "approved texture file"
				f.Found = fileName
				f.Selector = selector
				findings = append(findings, f)
			}
		}

		if m := blendModeRegex.FindStringSubmatch(style); m != nil && len(d.palette.ApprovedBlendModes) > 0 {
			mode := strings.ToLower(strings.TrimSpace(m[1]))
			if !d.palette.IsApprovedBlendMode(mode) {
				f := model.NewFinding(page.URL, "design", model.SeverityError, CategoryBlendMode,
					fmt.Sprintf("blend mode %s is not approved", mode))
				f.Property = "blend-mode"
				f.Expected = strings.Join(d.palette.ApprovedBlendModes, ", ")
				f.Found = mode
				f.Selector = selector
				findings = append(findings, f)
			}
		}

		// Opacity is only policed on elements that carry a texture.
		if backgroundImgRegex.MatchString(style) && !d.palette.TextureOpacityRange.IsZero() {
			if m := opacityRegex.FindStringSubmatch(style); m != nil {
				if opacity, err := strconv.ParseFloat(m[1], 64); err == nil {
					if !d.palette.TextureOpacityRange.Contains(opacity) {
						r := d.palette.TextureOpacityRange
						f := model.NewFinding(page.URL, "design", model.SeverityWarning, CategoryOpacity,
							fmt.Sprintf("texture opacity %.0f%% is outside the allowed %.0f%%-%.0f%% range",
								opacity*100, r.Min*100, r.Max*100))
						f.Property = "opacity"
						f.Expected = fmt.Sprintf("%.0f%%-%.0f%%", r.Min*100, r.Max*100)
						f.Found = fmt.Sprintf("%.0f%%", opacity*100)
						f.Selector = selector
						findings = append(findings, f)
					}
				}
			}
		}
	})

	return findings
}

// auditSections applies the palette's per-section rules to container
// elements whose class attribute matches a rule key.
func (d *DesignAuditor) auditSections(page *model.Page) []model.Finding {
	if len(d.palette.SectionRules) == 0 {
		return nil
	}

	var findings []model.Finding

	page.Doc.Find("div, section, footer, header").Each(func(_ int, s *goquery.Selection) {
		classAttr := s.AttrOr("class", "")
		if classAttr == "" {
			return
		}
		rule := d.palette.SectionRulesFor(classAttr)
		if rule == nil {
			return
		}

		style := s.AttrOr("style", "")
		selector := elementSelector(s)

		if rule.BackgroundColor != "" {
			found := "not set in inline style"
			if m := backgroundHexRegex.FindStringSubmatch(style); m != nil {
				found = normalizeHex(m[1])
			}
			if found != rule.BackgroundColor {
				f := model.NewFinding(page.URL, "design", model.SeverityError, CategorySectionRule,
					fmt.Sprintf("section %s must use background %s, found %s", selector, rule.BackgroundColor, found))
				f.Property = "background-color"
				f.Expected = rule.BackgroundColor
				f.Found = found
				f.Selector = selector
				findings = append(findings, f)
			}
		}

		if rule.BlendMode != "" {
			found := "not set"
			if m := blendModeRegex.FindStringSubmatch(style); m != nil {
				found = strings.ToLower(strings.TrimSpace(m[1]))
			}
			if found != rule.BlendMode {
				f := model.NewFinding(page.URL, "design", model.SeverityWarning, CategorySectionRule,
					fmt.Sprintf("section %s must use blend mode %s, found %s", selector, rule.BlendMode, found))
				f.Property = "blend-mode"
				f.Expected = rule.BlendMode
				f.Found = found
				f.Selector = selector
				findings = append(findings, f)
			}
		}

		if rule.OpacityRange != nil {
			if m := opacityRegex.FindStringSubmatch(style); m != nil {
				if opacity, err := strconv.ParseFloat(m[1], 64); err == nil && !rule.OpacityRange.Contains(opacity) {
					f := model.NewFinding(page.URL, "design", model.SeverityWarning, CategorySectionRule,
						fmt.Sprintf("section %s opacity %.0f%% is outside %.0f%%-%.0f%%",
							selector, opacity*100, rule.OpacityRange.Min*100, rule.OpacityRange.Max*100))
					f.Property = "opacity"
					f.Expected = fmt.Sprintf("%.0f%%-%.0f%%", rule.OpacityRange.Min*100, rule.OpacityRange.Max*100)
					f.Found = fmt.Sprintf("%.0f%%", opacity*100)
					f.Selector = selector
					findings = append(findings, f)
				}
			}
		}
	})

	return findings
}

// textureFileName extracts the base file name from a texture URL,
// dropping any query string.
func textureFileName(textureURL string) string {
	name := textureURL
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return name
}

// elementSelector builds a short CSS-like selector for an element,
// e.g. "div.hero-section.is-dark", for finding context.
func elementSelector(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	sel := s.Nodes[0].Data
	if classes := strings.Fields(s.AttrOr("class", "")); len(classes) > 0 {
		sel += "." + strings.Join(classes, ".")
	}
	if id := s.AttrOr("id", ""); id != "" {
		sel += "#" + id
	}
	return sel
}
