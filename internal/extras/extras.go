// Package extras encodes and decodes the optional parameters of a Stremio
// catalog request ("genre=Action&skip=20").
package extras

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/amaumene/gostremiomux/internal/validation"
)

// Extras holds optional catalog parameters. The zero value means "no filter".
// Values are immutable: the With* methods return modified copies.
type Extras struct {
	Genre  string `json:"genre,omitempty" validate:"max=100"`
	Search string `json:"search,omitempty" validate:"max=200"`
	Skip   *int   `json:"skip,omitempty" validate:"omitempty,gte=0,lte=100000"`
}

const (
	keyGenre  = "genre"
	keySearch = "search"
	keySkip   = "skip"
)

var validate = validation.New()

// IsEmpty reports whether no parameter is set.
func (e Extras) IsEmpty() bool {
	return e.Genre == "" && e.Search == "" && e.Skip == nil
}

// SkipValue returns the pagination offset, zero when unset.
func (e Extras) SkipValue() int {
	if e.Skip == nil {
		return 0
	}
	return *e.Skip
}

// Page converts the skip offset into a 1-based page number.
func (e Extras) Page(pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return e.SkipValue()/pageSize + 1
}

// WithGenre returns a copy of e with genre set.
func (e Extras) WithGenre(genre string) Extras {
	e.Genre = genre
	return e
}

// WithSearch returns a copy of e with search set.
func (e Extras) WithSearch(search string) Extras {
	e.Search = search
	return e
}

// WithSkip returns a copy of e with skip set.
func (e Extras) WithSkip(skip int) Extras {
	e.Skip = &skip
	return e
}

// WithoutSkip returns a copy of e with skip cleared.
func (e Extras) WithoutSkip() Extras {
	e.Skip = nil
	return e
}

// Encode serialises the set fields as key=value pairs joined by '&', in
// genre, search, skip order.
func Encode(e Extras) string {
	parts := make([]string, 0, 3)
	if e.Genre != "" {
		parts = append(parts, keyGenre+"="+escape(e.Genre))
	}
	if e.Search != "" {
		parts = append(parts, keySearch+"="+escape(e.Search))
	}
	if e.Skip != nil {
		parts = append(parts, keySkip+"="+strconv.Itoa(*e.Skip))
	}
	return strings.Join(parts, "&")
}

// Decode parses raw into Extras. Any malformed piece, unknown or repeated
// key, or value failing validation yields the empty Extras.
func Decode(raw string) Extras {
	if raw == "" {
		return Extras{}
	}

	var e Extras
	seen := make(map[string]bool, 3)
	for _, piece := range strings.Split(raw, "&") {
		key, rawValue, ok := strings.Cut(piece, "=")
		if !ok || seen[key] {
			return Extras{}
		}
		seen[key] = true

		val, err := url.PathUnescape(rawValue)
		if err != nil {
			return Extras{}
		}

		switch key {
		case keyGenre:
			e.Genre = val
		case keySearch:
			e.Search = val
		case keySkip:
			n, err := strconv.Atoi(val)
			if err != nil {
				return Extras{}
			}
			e.Skip = &n
		default:
			return Extras{}
		}
	}

	if !validate.Check(e) {
		return Extras{}
	}
	return e
}

// escape percent-encodes like encodeURIComponent: spaces become %20, not '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
