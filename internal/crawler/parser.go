package crawler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// ParseDocument parses a fetched page's body in place, populating the
// page's extracted fields (title, meta tags, headings, links, style
// blocks) and attaching the document handle for deeper auditor queries.
//
// It returns ErrNotHTML when the body is not an HTML document. The
// declared Content-Type is trusted when present; otherwise the body is
// sniffed, because misconfigured servers that omit the header are common
// and their pages still deserve auditing.
//
// Design decision: We use goquery on top of golang.org/x/net/html rather
// than walking the node tree by hand because:
//  1. Auditors need CSS-selector queries (styled elements, og tags)
//  2. goquery tolerates the malformed HTML real sites serve
//  3. One parsed document is shared by extraction and all auditors
func ParseDocument(page *model.Page) error {
	contentType := page.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(page.Raw)
	}
	if !isHTMLContentType(contentType) {
		return fmt.Errorf("%w: content type %q at %s", ErrNotHTML, contentType, page.URL)
	}

	// Decode to UTF-8 before parsing. charset.NewReader consults the
	// Content-Type header, the meta charset tag, and byte sniffing.
	reader, err := charset.NewReader(bytes.NewReader(page.Raw), page.ContentType)
	if err != nil {
		return fmt.Errorf("failed to decode page charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return fmt.Errorf("invalid page URL: %w", err)
	}

	page.Doc = doc
	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.MetaTags = extractMetaTags(doc)
	page.Headings = extractHeadings(doc)
	page.Links = extractLinks(doc, base)
	page.StyleBlocks = extractStyleBlocks(doc)

	return nil
}

// isHTMLContentType reports whether the MIME type denotes an HTML document.
func isHTMLContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(ct, "text/html") ||
		strings.HasPrefix(ct, "application/xhtml+xml")
}

// extractMetaTags collects meta tags keyed by name, falling back to the
// property attribute for OpenGraph and Twitter card tags.
func extractMetaTags(doc *goquery.Document) map[string]string {
	tags := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			name, _ = s.Attr("property")
		}
		content, _ := s.Attr("content")
		if name != "" && content != "" {
			// First occurrence wins; duplicate meta tags are themselves
			// an SEO finding, detected from the document by the auditor.
			if _, exists := tags[name]; !exists {
				tags[name] = content
			}
		}
	})
	return tags
}

// extractHeadings collects h1-h6 elements in document order.
func extractHeadings(doc *goquery.Document) []model.Heading {
	var headings []model.Heading
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level := int(s.Nodes[0].Data[1] - '0')
		headings = append(headings, model.Heading{
			Level: level,
			Text:  strings.TrimSpace(s.Text()),
		})
	})
	return headings
}

// extractLinks collects anchor targets resolved against the base URL and
// canonicalized, deduplicated in first-seen order. Non-navigational
// schemes (mailto, javascript, tel, data) are skipped.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || href == "#" {
			return
		}
		if strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "data:") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}

		canonical, err := Canonicalize(resolved.String())
		if err != nil {
			return
		}
		if !seen[canonical] {
			seen[canonical] = true
			links = append(links, canonical)
		}
	})

	return links
}

// extractStyleBlocks collects the text content of <style> elements for
// the design auditor's embedded CSS checks.
func extractStyleBlocks(doc *goquery.Document) []string {
	var blocks []string
	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		if css := strings.TrimSpace(s.Text()); css != "" {
			blocks = append(blocks, css)
		}
	})
	return blocks
}
