package auditor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// SEO finding categories.
const (
	CategoryTitle       = "title"
	CategoryDescription = "meta-description"
	CategoryOpenGraph   = "open-graph"
	CategoryTwitterCard = "twitter-card"
	CategoryHeadings    = "heading-structure"
	CategoryCanonical   = "canonical"
	CategoryRobots      = "robots"
	CategoryImageAlt    = "image-alt"
)

// Recommended metadata lengths. Search engines truncate titles around 60
// characters and descriptions around 160; shorter than the minimums wastes
// the snippet.
const (
	titleMinLen = 30
	titleMaxLen = 60

	descriptionMinLen = 120
	descriptionMaxLen = 160

	ogDescriptionMaxLen = 200
)

// ogTags are the Open Graph properties every page should declare.
var ogTags = []string{"og:title", "og:description", "og:image", "og:url", "og:type"}

// twitterTags are the Twitter card tags every page should declare.
var twitterTags = []string{"twitter:card", "twitter:title", "twitter:description", "twitter:image"}

// SEOAuditor checks metadata correctness: title and description presence
// and length, social sharing tags, heading structure, canonical links,
// robots directives, and image alt coverage.
type SEOAuditor struct{}

// NewSEOAuditor creates an SEO auditor. It carries no configuration; the
// limits are web-wide standards, not per-site rules.
func NewSEOAuditor() *SEOAuditor {
	return &SEOAuditor{}
}

// Name implements Auditor.
func (a *SEOAuditor) Name() string {
	return "seo"
}

// Audit implements Auditor.
func (a *SEOAuditor) Audit(page *model.Page) []model.Finding {
	var findings []model.Finding
	findings = append(findings, a.auditTitle(page)...)
	findings = append(findings, a.auditDescription(page)...)
	findings = append(findings, a.auditSocialTags(page)...)
	findings = append(findings, a.auditHeadings(page)...)
	findings = append(findings, a.auditCanonical(page)...)
	findings = append(findings, a.auditRobots(page)...)
	findings = append(findings, a.auditImageAlts(page)...)
	return findings
}

func (a *SEOAuditor) auditTitle(page *model.Page) []model.Finding {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		f := model.NewFinding(page.URL, "seo", model.SeverityError, CategoryTitle,
			"page has no title tag")
		f.Property = "title"
		f.Expected = "title tag present"
		f.Found = "missing"
		return []model.Finding{f}
	}

	if n := len(title); n < titleMinLen || n > titleMaxLen {
		f := model.NewFinding(page.URL, "seo", model.SeverityWarning, CategoryTitle,
			fmt.Sprintf("title length %d is outside the recommended %d-%d character range",
				n, titleMinLen, titleMaxLen))
		f.Property = "title-length"
		f.Expected = fmt.Sprintf("%d-%d characters", titleMinLen, titleMaxLen)
		f.Found = fmt.Sprintf("%d characters", n)
		return []model.Finding{f}
	}
	return nil
}

func (a *SEOAuditor) auditDescription(page *model.Page) []model.Finding {
	desc, ok := page.Meta("description")
	desc = strings.TrimSpace(desc)
	if !ok || desc == "" {
		f := model.NewFinding(page.URL, "seo", model.SeverityError, CategoryDescription,
			"page has no meta description")
		f.Property = "description"
		f.Expected = "meta description present"
		f.Found = "missing"
		return []model.Finding{f}
	}

	if n := len(desc); n < descriptionMinLen || n > descriptionMaxLen {
		f := model.NewFinding(page.URL, "seo", model.SeverityWarning, CategoryDescription,
			fmt.Sprintf("meta description length %d is outside the recommended %d-%d character range",
				n, descriptionMinLen, descriptionMaxLen))
		f.Property = "description-length"
		f.Expected = fmt.Sprintf("%d-%d characters", descriptionMinLen, descriptionMaxLen)
		f.Found = fmt.Sprintf("%d characters", n)
		return []model.Finding{f}
	}
	return nil
}

// auditSocialTags checks Open Graph and Twitter card coverage. Missing
// tags degrade link previews but do not break indexing, so they warn.
func (a *SEOAuditor) auditSocialTags(page *model.Page) []model.Finding {
	var findings []model.Finding

	missing := func(category, tag string) model.Finding {
		f := model.NewFinding(page.URL, "seo", model.SeverityWarning, category,
			fmt.Sprintf("missing %s tag", tag))
		f.Property = tag
		f.Expected = tag + " present"
		f.Found = "missing"
		return f
	}

	for _, tag := range ogTags {
		content, ok := page.Meta(tag)
		if !ok || strings.TrimSpace(content) == "" {
			findings = append(findings, missing(CategoryOpenGraph, tag))
			continue
		}
		content = strings.TrimSpace(content)

		switch tag {
		case "og:title":
			if n := len(content); n < titleMinLen || n > titleMaxLen {
				f := model.NewFinding(page.URL, "seo", model.SeverityWarning, CategoryOpenGraph,
					fmt.Sprintf("og:title length %d is outside %d-%d characters", n, titleMinLen, titleMaxLen))
				f.Property = "og:title-length"
				f.Expected = fmt.Sprintf("%d-%d characters", titleMinLen, titleMaxLen)
				f.Found = fmt.Sprintf("%d characters", n)
				findings = append(findings, f)
			}
		case "og:description":
			if n := len(content); n < descriptionMinLen || n > ogDescriptionMaxLen {
				f := model.NewFinding(page.URL, "seo", model.SeverityWarning, CategoryOpenGraph,
					fmt.Sprintf("og:description length %d is outside %d-%d characters", n, descriptionMinLen, ogDescriptionMaxLen))
				f.Property = "og:description-length"
				f.Expected = fmt.Sprintf("%d-%d characters", descriptionMinLen, ogDescriptionMaxLen)
				f.Found = fmt.Sprintf("%d characters", n)
				findings = append(findings, f)
			}
		}
	}

	for _, tag := range twitterTags {
		if content, ok := page.Meta(tag); !ok || strings.TrimSpace(content) == "" {
			findings = append(findings, missing(CategoryTwitterCard, tag))
		}
	}

	return findings
}

// auditHeadings checks for exactly one h1 and no skipped heading levels.
func (a *SEOAuditor) auditHeadings(page *model.Page) []model.Finding {
	var findings []model.Finding

	h1Count := 0
	for _, h := range page.Headings {
		if h.Level == 1 {
			h1Count++
		}
	}

	switch {
	case h1Count == 0:
		f := model.NewFinding(page.URL, "seo", model.SeverityError, CategoryHeadings,
			"page has no h1 heading")
		f.Property = "h1-count"
		f.Expected = "exactly 1 h1"
		f.Found = "0"
		findings = append(findings, f)
	case h1Count > 1:
		f := model.NewFinding(page.URL, "seo", model.SeverityWarning, CategoryHeadings,
			fmt.Sprintf("page has %d h1 headings, expected exactly one", h1Count))
		f.Property = "h1-count"
		f.Expected = "exactly 1 h1"
		f.Found = fmt.Sprintf("%d", h1Count)
		findings = append(findings, f)
	}

	for i := 1; i < len(page.Headings); i++ {
		prev, cur := page.Headings[i-1].Level, page.Headings[i].Level
		if cur > prev+1 {
			f := model.NewFinding(page.URL, "seo", model.SeverityWarning, CategoryHeadings,
				fmt.Sprintf("heading level skips from h%d to h%d", prev, cur))
			f.Property = "heading-hierarchy"
			f.Expected = "no skipped heading levels"
			f.Found = fmt.Sprintf("h%d followed by h%d", prev, cur)
			findings = append(findings, f)
			break
		}
	}

	return findings
}

// auditCanonical checks for a canonical link and whether it is
// self-referencing. A canonical pointing elsewhere may be intentional
// (pagination, syndication), so it is only informational.
func (a *SEOAuditor) auditCanonical(page *model.Page) []model.Finding {
	if page.Doc == nil {
		return nil
	}

	href := strings.TrimSpace(page.Doc.Find(`link[rel="canonical"]`).First().AttrOr("href", ""))
	if href == "" {
		f := model.NewFinding(page.URL, "seo", model.SeverityWarning, CategoryCanonical,
			"page has no canonical link")
		f.Property = "canonical"
		f.Expected = "canonical link present"
		f.Found = "missing"
		return []model.Finding{f}
	}

	if strings.TrimSuffix(href, "/") != strings.TrimSuffix(page.URL, "/") {
		f := model.NewFinding(page.URL, "seo", model.SeverityInfo, CategoryCanonical,
			fmt.Sprintf("canonical link points to %s, not the page itself", href))
		f.Property = "canonical-self-reference"
		f.Expected = page.URL
		f.Found = href
		return []model.Finding{f}
	}
	return nil
}

// auditRobots warns when a robots directive blocks indexing. An absent
// robots tag defaults to index,follow and is fine.
func (a *SEOAuditor) auditRobots(page *model.Page) []model.Finding {
	content, ok := page.Meta("robots")
	if !ok {
		return nil
	}

	if strings.Contains(strings.ToLower(content), "noindex") {
		f := model.NewFinding(page.URL, "seo", model.SeverityWarning, CategoryRobots,
			"robots directive contains noindex, the page will not be indexed")
		f.Property = "robots"
		f.Expected = "page indexable"
		f.Found = content
		return []model.Finding{f}
	}
	return nil
}

// auditImageAlts reports images without alt attributes as a single
// per-page summary finding.
func (a *SEOAuditor) auditImageAlts(page *model.Page) []model.Finding {
	if page.Doc == nil {
		return nil
	}

	total := 0
	missingAlt := 0
	page.Doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		total++
		if _, ok := s.Attr("alt"); !ok {
			missingAlt++
		}
	})

	if missingAlt == 0 {
		return nil
	}

	f := model.NewFinding(page.URL, "seo", model.SeverityWarning, CategoryImageAlt,
		fmt.Sprintf("%d of %d images have no alt attribute", missingAlt, total))
	f.Property = "img-alt"
	f.Expected = "all images carry alt attributes"
	f.Found = fmt.Sprintf("%d missing", missingAlt)
	return []model.Finding{f}
}
