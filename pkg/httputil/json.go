package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const maxBodyBytes = 16 << 20

// StatusError is returned for non-2xx responses. Body holds at most a short
// prefix of the response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// StatusCode extracts the HTTP status from err, or 0 when err is not a
// StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Retry controls how GetJSON and PostFormJSON retry transient failures.
type Retry struct {
	Attempts uint
	Delay    time.Duration
}

var DefaultRetry = Retry{Attempts: 3, Delay: 250 * time.Millisecond}

// Request describes a JSON call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Form    url.Values
	Retry   *Retry
}

// GetJSON fetches rawURL and decodes the JSON body into out. Network errors
// and 5xx responses are retried, everything else fails immediately.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, out interface{}) error {
	return DoJSON(ctx, client, Request{Method: http.MethodGet, URL: rawURL, Headers: headers}, out)
}

// PostFormJSON posts form url-encoded and decodes the JSON body into out.
func PostFormJSON(ctx context.Context, client *http.Client, rawURL string, form url.Values, headers map[string]string, out interface{}) error {
	return DoJSON(ctx, client, Request{Method: http.MethodPost, URL: rawURL, Form: form, Headers: headers}, out)
}

func DoJSON(ctx context.Context, client *http.Client, r Request, out interface{}) error {
	policy := DefaultRetry
	if r.Retry != nil {
		policy = *r.Retry
	}
	if policy.Attempts == 0 {
		policy.Attempts = 1
	}

	return retry.Do(
		func() error {
			return doOnce(ctx, client, r, out)
		},
		retry.Context(ctx),
		retry.Attempts(policy.Attempts),
		retry.Delay(policy.Delay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
}

func doOnce(ctx context.Context, client *http.Client, r Request, out interface{}) error {
	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(r.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := orDefault(client).Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(data)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return &StatusError{StatusCode: resp.StatusCode, URL: redact(r.URL), Body: snippet}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return retry.Unrecoverable(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return true
}

// redact drops the query string, which often carries API keys.
func redact(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
