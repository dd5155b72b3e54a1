package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// Frontier is the BFS queue of URLs waiting to be fetched. It guarantees
// at-most-once admission: a canonical URL that has ever been offered is
// never admitted again, even after it has been dequeued.
//
// Design decision: We keep the seen-set inside the frontier rather than in
// the engine because admission and deduplication are one decision. A URL
// is "seen" the moment it is offered, not when it is fetched, so re-offers
// from later pages are rejected without the engine tracking anything.
type Frontier struct {
	// host is the seed's canonical host. Only same-host URLs are admitted.
	host string

	// queue holds admitted URLs in discovery order.
	queue []string

	// seen tracks every canonical URL ever offered.
	seen map[string]bool

	// exclude holds compiled exclusion patterns. Matching URLs are
	// remembered in seen but never queued.
	exclude []*regexp.Regexp

	// mutex protects queue and seen.
	mutex sync.Mutex
}

// NewFrontier creates a frontier scoped to the seed URL's host and seeds
// the queue with the canonical seed. Exclusion patterns were validated by
// config, so compilation failures here are programmer errors.
func NewFrontier(seedURL string, excludePatterns []string) (*Frontier, error) {
	canonical, err := Canonicalize(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}

	u, err := url.Parse(canonical)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}

	f := &Frontier{
		host: u.Host,
		seen: make(map[string]bool),
	}
	for _, p := range excludePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, re)
	}

	f.seen[canonical] = true
	f.queue = append(f.queue, canonical)
	return f, nil
}

// Offer canonicalizes a discovered URL and admits it to the queue when it
// is same-host, not excluded, and never seen before. It reports whether
// the URL was admitted. Unparseable URLs are silently dropped; a single
// bad href must not disturb the crawl.
func (f *Frontier) Offer(rawURL string) bool {
	canonical, err := Canonicalize(rawURL)
	if err != nil {
		return false
	}

	u, err := url.Parse(canonical)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !strings.EqualFold(u.Host, f.host) {
		return false
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.seen[canonical] {
		return false
	}
	// Excluded URLs are marked seen so they are not re-evaluated on every
	// page that links to them.
	f.seen[canonical] = true

	for _, re := range f.exclude {
		if re.MatchString(canonical) {
			return false
		}
	}

	f.queue = append(f.queue, canonical)
	return true
}

// Next dequeues the oldest queued URL. The second return value is false
// when the frontier is exhausted.
func (f *Frontier) Next() (string, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next, true
}

// Exhausted reports whether the queue is empty.
func (f *Frontier) Exhausted() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.queue) == 0
}

// Remaining returns the number of queued-but-unfetched URLs.
func (f *Frontier) Remaining() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.queue)
}

// SeenCount returns the number of distinct canonical URLs ever offered.
func (f *Frontier) SeenCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.seen)
}

// trackingParams are query parameters that identify marketing campaigns,
// not content. Two URLs differing only in these point at the same page.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"msclkid": true,
}

// Canonicalize reduces a URL to its canonical form so that equivalent
// URLs deduplicate to one frontier entry:
//   - scheme and host lowercased
//   - fragment removed
//   - default ports removed (:80 for http, :443 for https)
//   - tracking parameters removed (utm_*, fbclid, gclid, msclkid)
//   - remaining query parameters sorted by key
//   - trailing slash removed, except for the root path
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("not an absolute URL: %q", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Strip default ports.
	if (u.Scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(u.Scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndexByte(u.Host, ':')]
	}

	// Drop tracking parameters. url.Values.Encode sorts keys, which gives
	// us stable ordering for the rest.
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if trackingParams[key] || strings.HasPrefix(key, "utm_") {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}

	// Empty path and "/" are the same page.
	if u.Path == "" {
		u.Path = "/"
	}
	// Trailing slash is not significant except at the root.
	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}
