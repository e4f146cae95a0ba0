package resolve

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"arcvalue/pkg/itemvalue"
)

// DefaultTimeout bounds a single source request.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 4 << 20

// DefaultUserAgent is sent with every upstream request.
const DefaultUserAgent = "arcvalue/1.0 (+item value lookup)"

// NewHTTPClient returns a client with the default per-request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// StatusError reports a non-2xx upstream response. It unwraps to
// itemvalue.ErrSourceUnavailable.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d: %v", e.URL, e.Code, itemvalue.ErrSourceUnavailable)
}

func (e *StatusError) Unwrap() error { return itemvalue.ErrSourceUnavailable }

// GetPage fetches an HTML page. See StatusError for non-2xx responses.
func GetPage(ctx context.Context, client *http.Client, target, userAgent string) ([]byte, error) {
	return getBody(ctx, client, target, userAgent, "text/html")
}

// getBody performs a GET and returns the body of a 2xx response. Non-2xx
// statuses are reported as a *StatusError.
func getBody(ctx context.Context, client *http.Client, target, userAgent, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "build request %s", target)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "GET %s", target)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "read body %s", target)
	}
	return body, nil
}
