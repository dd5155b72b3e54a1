package model

import (
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is the result of fetching and parsing one URL. It holds both the
// raw response and the content extracted in the single parsing pass.
//
// Design decision: We extract commonly needed data (title, meta tags,
// headings, links) into plain fields during parsing rather than making
// every auditor walk the document tree. The goquery handle remains
// available for auditors that need deeper queries, such as the design
// auditor's styled-element traversal.
//
// A Page is owned by the engine for the duration of one crawl iteration
// and discarded after the auditors run; only Findings persist.
type Page struct {
	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type"`

	// Headers contains all HTTP response headers.
	Headers http.Header `json:"-"`

	// Raw contains the raw response body bytes, capped by the fetcher.
	Raw []byte `json:"-"`

	// Title is the page title from the <title> tag.
	Title string `json:"title,omitempty"`

	// MetaTags maps meta tag names (or OpenGraph property attributes)
	// to their content values.
	MetaTags map[string]string `json:"meta_tags,omitempty"`

	// Headings contains all h1-h6 elements in document order.
	Headings []Heading `json:"headings,omitempty"`

	// Links contains outbound anchor targets, resolved against the page
	// URL and canonicalized. Used for frontier expansion.
	Links []string `json:"links,omitempty"`

	// StyleBlocks contains the contents of <style> elements, used by the
	// design auditor to check embedded CSS.
	StyleBlocks []string `json:"-"`

	// Doc is the parsed document handle for auditor queries.
	Doc *goquery.Document `json:"-"`

	// FetchDuration is how long the HTTP fetch took.
	FetchDuration time.Duration `json:"fetch_duration"`
}

// Heading is one h1-h6 element.
type Heading struct {
	// Level is the heading level, 1 through 6.
	Level int `json:"level"`

	// Text is the trimmed text content of the heading.
	Text string `json:"text"`
}

// GetHeader returns the first value of the named response header.
func (p *Page) GetHeader(name string) string {
	if p.Headers == nil {
		return ""
	}
	return p.Headers.Get(name)
}

// Meta returns the content of the named meta tag and whether it was present.
func (p *Page) Meta(name string) (string, bool) {
	v, ok := p.MetaTags[name]
	return v, ok
}

// IsHTML reports whether the content type indicates an HTML document.
func (p *Page) IsHTML() bool {
	return strings.HasPrefix(p.ContentType, "text/html") ||
		strings.HasPrefix(p.ContentType, "application/xhtml+xml")
}
