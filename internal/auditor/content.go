package auditor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// Content finding categories.
const (
	CategoryThinContent  = "thin-content"
	CategoryPlaceholder  = "placeholder-content"
	CategoryEmptyHeading = "empty-heading"
	CategoryStatistics   = "content-statistics"
)

// minWordCount is the word count below which a page is flagged as thin.
// Pages under roughly 300 words rarely rank for anything.
const minWordCount = 300

// minParagraphLength is the character count below which a non-empty
// paragraph counts as thin.
const minParagraphLength = 50

// placeholderPatterns match common dummy copy that should never ship.
var placeholderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)lorem ipsum`),
	regexp.MustCompile(`(?i)dolor sit amet`),
	regexp.MustCompile(`(?i)\bplaceholder\b`),
	regexp.MustCompile(`(?i)coming soon`),
	regexp.MustCompile(`(?i)under construction`),
	regexp.MustCompile(`(?i)\btodo\b`),
	regexp.MustCompile(`(?i)\btbd\b`),
	regexp.MustCompile(`(?i)\bfixme\b`),
	regexp.MustCompile(`(?i)insert .{1,40} here`),
	regexp.MustCompile(`(?i)your .{1,40} here`),
}

// ignoredContentTags are excluded from text extraction: they hold chrome
// or code, not page copy.
var ignoredContentTags = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"aside":    true,
	"noscript": true,
	"template": true,
}

// ContentAuditor checks page copy quality: overall word count, placeholder
// text, empty headings, and thin paragraphs. It also emits an informational
// statistics finding per page so reports show content volume alongside the
// problems.
type ContentAuditor struct{}

// NewContentAuditor creates a content auditor.
func NewContentAuditor() *ContentAuditor {
	return &ContentAuditor{}
}

// Name implements Auditor.
func (a *ContentAuditor) Name() string {
	return "content"
}

// Audit implements Auditor.
func (a *ContentAuditor) Audit(page *model.Page) []model.Finding {
	if page.Doc == nil {
		return nil
	}

	text := visibleText(page.Doc)
	words := len(strings.Fields(text))

	var findings []model.Finding
	findings = append(findings, a.auditWordCount(page, words)...)
	findings = append(findings, a.auditPlaceholders(page, text)...)
	findings = append(findings, a.auditHeadings(page)...)
	findings = append(findings, a.auditParagraphs(page)...)
	findings = append(findings, a.statistics(page, words))
	return findings
}

func (a *ContentAuditor) auditWordCount(page *model.Page, words int) []model.Finding {
	if words >= minWordCount {
		return nil
	}
	f := model.NewFinding(page.URL, "content", model.SeverityWarning, CategoryThinContent,
		fmt.Sprintf("page has %d words of visible copy, below the %d word minimum", words, minWordCount))
	f.Property = "word-count"
	f.Expected = fmt.Sprintf(">=%d words", minWordCount)
	f.Found = fmt.Sprintf("%d words", words)
	return []model.Finding{f}
}

func (a *ContentAuditor) auditPlaceholders(page *model.Page, text string) []model.Finding {
	var matched []string
	for _, re := range placeholderPatterns {
		if m := re.FindString(text); m != "" {
			matched = append(matched, strings.ToLower(m))
		}
	}
	if len(matched) == 0 {
		return nil
	}

	f := model.NewFinding(page.URL, "content", model.SeverityError, CategoryPlaceholder,
		fmt.Sprintf("placeholder copy detected: %s", strings.Join(matched, ", ")))
	f.Property = "placeholder-detection"
	f.Expected = "no placeholder content"
	f.Found = strings.Join(matched, ", ")
	return []model.Finding{f}
}

// auditHeadings flags headings with no text, which usually means a
// template slot was never filled in.
func (a *ContentAuditor) auditHeadings(page *model.Page) []model.Finding {
	var findings []model.Finding
	for _, h := range page.Headings {
		if h.Text == "" {
			f := model.NewFinding(page.URL, "content", model.SeverityWarning, CategoryEmptyHeading,
				fmt.Sprintf("empty h%d heading", h.Level))
			f.Property = fmt.Sprintf("h%d", h.Level)
			f.Expected = "meaningful heading text"
			f.Found = "empty"
			findings = append(findings, f)
		}
	}
	return findings
}

// auditParagraphs summarizes paragraph quality. One finding per thin
// paragraph would swamp the report, so pages are flagged only when thin
// and empty paragraphs outnumber substantial ones.
func (a *ContentAuditor) auditParagraphs(page *model.Page) []model.Finding {
	substantial, thin, empty := 0, 0, 0

	page.Doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		n := len(strings.TrimSpace(s.Text()))
		switch {
		case n == 0:
			empty++
		case n < minParagraphLength:
			thin++
		default:
			substantial++
		}
	})

	total := substantial + thin + empty
	if total == 0 || substantial > thin+empty {
		return nil
	}

	f := model.NewFinding(page.URL, "content", model.SeverityWarning, CategoryThinContent,
		fmt.Sprintf("paragraph quality is poor: %d substantial, %d thin, %d empty",
			substantial, thin, empty))
	f.Property = "paragraphs"
	f.Expected = "mostly substantial paragraphs"
	f.Found = fmt.Sprintf("%d substantial of %d total", substantial, total)
	return []model.Finding{f}
}

// statistics emits the per-page informational summary: word count,
// estimated reading time, and image count.
func (a *ContentAuditor) statistics(page *model.Page, words int) model.Finding {
	readingMinutes := (words + 199) / 200
	if readingMinutes < 1 {
		readingMinutes = 1
	}
	images := page.Doc.Find("img").Length()

	f := model.NewFinding(page.URL, "content", model.SeverityInfo, CategoryStatistics,
		fmt.Sprintf("%d words, ~%d minute read, %d images", words, readingMinutes, images))
	f.Property = "statistics"
	f.Found = fmt.Sprintf("%d words", words)
	return f
}

// visibleText extracts the page's visible copy, skipping chrome and code
// elements. The document is walked directly instead of mutated so the
// shared parse tree stays intact for other auditors.
func visibleText(doc *goquery.Document) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && ignoredContentTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Find("body").Nodes {
		walk(n)
	}

	return b.String()
}
