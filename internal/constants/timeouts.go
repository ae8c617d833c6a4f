// Package constants defines timeout values and retry limits used throughout the application.
package constants

import "time"

// Timeout constants for various operations
const (
	// Default per-adapter timeout when the user config leaves it unset
	DefaultAdapterTimeout = 10 * time.Second

	// Added on top of the longest adapter timeout to form the outer deadline
	AggregationOverhead = 2 * time.Second

	// Upper bound accepted for a user-configured adapter timeout
	MaxAdapterTimeout = 60 * time.Second

	// HTTP client timeout for upstream calls
	RequestTimeout = 30 * time.Second

	// Debrid calls per playback request
	ResolveTimeout = 20 * time.Second

	// Suggested delay before a client retries a pending download
	PendingRetryAfter = 30 * time.Second
)

// Server timeouts
const (
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 15 * time.Second
)
