package crawler

import "errors"

// Fetch and parse errors. The engine converts these into findings rather
// than aborting the run, so they carry enough meaning on their own for a
// one-line finding message.
var (
	// ErrTimeout indicates the request exceeded the configured timeout.
	// Timeouts are transient and eligible for retry.
	ErrTimeout = errors.New("request timed out")

	// ErrNetwork indicates a connection-level failure (DNS, refused,
	// reset). Network errors are terminal for the URL.
	ErrNetwork = errors.New("network error")

	// ErrTooManyRedirects indicates the redirect chain exceeded the limit.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrHTTPStatus indicates a non-2xx final status. 5xx occurrences are
	// retried; 4xx are terminal.
	ErrHTTPStatus = errors.New("http error status")

	// ErrNotHTML indicates the response body is not an HTML document and
	// cannot be audited.
	ErrNotHTML = errors.New("response is not HTML")
)
