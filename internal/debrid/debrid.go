// Package debrid turns a selected torrent into a playable URL through the
// user's debrid store account, and maps every store failure onto a closed
// set of outcome kinds.
package debrid

import (
	"context"
	"time"
)

// Kind classifies why a resolution failed.
type Kind string

const (
	KindLegallyUnavailable Kind = "legally_unavailable"
	KindQuotaExceeded      Kind = "quota_exceeded"
	KindForbidden          Kind = "forbidden"
	KindUnauthorized       Kind = "unauthorized"
	KindUnsupported        Kind = "unsupported_or_invalid_content"
	KindNoMatchingFile     Kind = "no_matching_file"
	KindUnknown            Kind = "unknown"
)

// Kinds lists every failure kind.
var Kinds = []Kind{
	KindLegallyUnavailable,
	KindQuotaExceeded,
	KindForbidden,
	KindUnauthorized,
	KindUnsupported,
	KindNoMatchingFile,
	KindUnknown,
}

type State string

const (
	StatePending  State = "pending"
	StateResolved State = "resolved"
	StateFailed   State = "failed"
)

// Result is the outcome of one resolution.
type Result struct {
	State      State         `json:"state"`
	URL        string        `json:"url,omitempty"`
	Kind       Kind          `json:"kind,omitempty"`
	RetryAfter time.Duration `json:"retryAfter,omitempty"`
}

func Resolved(url string) Result {
	return Result{State: StateResolved, URL: url}
}

func Pending(retryAfter time.Duration) Result {
	return Result{State: StatePending, RetryAfter: retryAfter}
}

func Failed(kind Kind) Result {
	return Result{State: StateFailed, Kind: kind}
}

// StoreAuth identifies the user's store account. Token is opaque.
type StoreAuth struct {
	Provider string
	Token    string
}

// Locator points at one file of a torrent. FileIdx is -1 when unknown;
// Season and Episode are zero for movies.
type Locator struct {
	InfoHash string
	FileIdx  int
	Filename string
	Season   int
	Episode  int
	Sources  []string
}

func (l Locator) IsEpisode() bool {
	return l.Season > 0 && l.Episode > 0
}

// Magnet is a torrent added to a store.
type Magnet struct {
	ID    string
	Ready bool
}

// File is one file of a stored torrent. Index follows the torrent's own file
// order; Link is the store's restricted link for the file.
type File struct {
	Index int
	Path  string
	Size  int64
	Link  string
}

// Provider is a debrid store. Errors are provider specific and interpreted
// by Classify.
type Provider interface {
	AddMagnet(ctx context.Context, token, magnet string) (Magnet, error)
	MagnetFiles(ctx context.Context, token, id string) ([]File, error)
	Unlock(ctx context.Context, token string, file File) (string, error)
}
