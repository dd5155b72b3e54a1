package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/yuniko-soft/webaudit/internal/model"
)

// maxRedirects limits how many redirects one fetch will follow.
const maxRedirects = 10

// Fetcher retrieves pages over HTTP with politeness rate limiting and
// bounded retries.
//
// Design decision: We enforce the rate limit before EVERY request attempt,
// including retries, with a single process-wide limiter. The politeness
// contract is with the target server, not with the logical page, so a
// retry storm must not be faster than a normal crawl.
type Fetcher struct {
	// client performs the HTTP requests.
	client *http.Client

	// limiter spaces out request starts.
	limiter *rate.Limiter

	// retries is the number of extra attempts for transient failures.
	retries int

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize caps how many body bytes are read.
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRateInterval sets the minimum interval between request starts.
// Zero disables rate limiting (useful in tests).
func WithRateInterval(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithRetries sets how many additional attempts are made after a
// transient failure.
func WithRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		f.retries = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// NewFetcher creates a Fetcher with the given request timeout.
//
// Design decision: We build the http.Client internally rather than
// accepting one because the redirect policy and timeout are part of this
// component's contract. Tests exercise behavior through httptest servers
// instead of swapping the client.
func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return ErrTooManyRedirects
				}
				return nil
			},
		},
		limiter:     rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		retries:     2,
		userAgent:   "webaudit/1.0",
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves one URL. On success the returned page has its response
// fields populated (status, headers, body, timing); content extraction is
// the parser's job. On failure the error wraps one of the package's
// sentinel errors.
//
// Retry policy: timeouts and 5xx responses are retried up to the
// configured count; 4xx responses and connection failures are terminal.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*model.Page, error) {
	var lastErr error

	for attempt := 0; attempt <= f.retries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		page, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if !retryable(err) {
			break
		}
	}

	return nil, lastErr
}

// fetchOnce performs a single request attempt.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, URL: pageURL}
	}

	return &model.Page{
		URL:           pageURL,
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		Headers:       resp.Header,
		Raw:           body,
		FetchDuration: elapsed,
	}, nil
}

// classifyTransportError maps a transport-level error onto the package's
// sentinel errors.
func classifyTransportError(err error) error {
	if errors.Is(err, ErrTooManyRedirects) {
		return fmt.Errorf("%w: %v", ErrTooManyRedirects, err)
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

// retryable reports whether the error class is worth another attempt.
// Only timeouts and 5xx statuses are transient; 4xx means the server
// understood the request and said no.
func retryable(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return false
}

// HTTPStatusError reports a non-2xx final response. It unwraps to
// ErrHTTPStatus so callers can classify with errors.Is while still
// reading the exact code.
type HTTPStatusError struct {
	// StatusCode is the final HTTP status code.
	StatusCode int

	// URL is the requested URL.
	URL string
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http error status: %d %s for %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Unwrap makes errors.Is(err, ErrHTTPStatus) work.
func (e *HTTPStatusError) Unwrap() error {
	return ErrHTTPStatus
}
