// Package fallback maps resolution outcomes to the explanatory videos served
// from the static directory.
package fallback

import "github.com/amaumene/gostremiomux/internal/debrid"

const (
	// Pending is the asset shown while the store is still downloading.
	Pending = "downloading.mp4"
	// NoSources backs the stream listed when every adapter failed.
	NoSources = "no_sources.mp4"
)

var assets = map[debrid.Kind]string{
	debrid.KindLegallyUnavailable: "legally_unavailable.mp4",
	debrid.KindQuotaExceeded:      "quota_exceeded.mp4",
	debrid.KindForbidden:          "forbidden.mp4",
	debrid.KindUnauthorized:       "unauthorized.mp4",
	debrid.KindUnsupported:        "unsupported.mp4",
	debrid.KindNoMatchingFile:     "no_matching_file.mp4",
	debrid.KindUnknown:            "failed.mp4",
}

// Asset returns the file name for a failure kind. Unlisted kinds get the
// generic failure video.
func Asset(kind debrid.Kind) string {
	if a, ok := assets[kind]; ok {
		return a
	}
	return assets[debrid.KindUnknown]
}

// ForResult returns the asset for a pending or failed result, and false for
// a resolved one.
func ForResult(r debrid.Result) (string, bool) {
	switch r.State {
	case debrid.StatePending:
		return Pending, true
	case debrid.StateFailed:
		return Asset(r.Kind), true
	}
	return "", false
}

// All lists every asset file name, pending first, then failure kinds in
// declaration order, then NoSources.
func All() []string {
	out := []string{Pending}
	for _, k := range debrid.Kinds {
		out = append(out, assets[k])
	}
	return append(out, NoSources)
}
