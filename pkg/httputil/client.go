// Package httputil holds the HTTP plumbing shared by every upstream client:
// a pooled transport and JSON calls with retries.
package httputil

import (
	"net/http"
	"sync"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// Adapters fan out to a handful of hosts at once.
	maxIdleConns        = 50
	maxIdleConnsPerHost = 4
	idleConnTimeout     = 90 * time.Second

	userAgent = "gostremiomux/1.0"
)

var (
	defaultOnce   sync.Once
	defaultClient *http.Client
)

// NewHTTPClient returns a client with a pooled transport that honours
// HTTP(S)_PROXY.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConnsPerHost,
			IdleConnTimeout:     idleConnTimeout,
		},
	}
}

// orDefault lets callers pass a nil client.
func orDefault(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	defaultOnce.Do(func() {
		defaultClient = NewHTTPClient(defaultTimeout)
	})
	return defaultClient
}
