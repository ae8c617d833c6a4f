// Package parser turns free-form release titles into structured attributes.
package parser

import (
	"regexp"
	"slices"
	"strings"

	"github.com/cehbz/torrentname"
)

// Release holds the attributes extracted from a release title. A Release is
// never modified after Parse returns it.
type Release struct {
	Raw        string   `json:"raw"`
	Title      string   `json:"title"`
	Year       int      `json:"year,omitempty"`
	Seasons    []int    `json:"seasons,omitempty"`
	Episodes   []int    `json:"episodes,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
	Quality    string   `json:"quality,omitempty"`
	Codec      string   `json:"codec,omitempty"`
	HDR        []string `json:"hdr,omitempty"`
	Audio      []string `json:"audio,omitempty"`
	BitDepth   string   `json:"bitDepth,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	Group      string   `json:"group,omitempty"`
	Container  string   `json:"container,omitempty"`
	Complete   bool     `json:"complete,omitempty"`
	Confidence int      `json:"confidence,omitempty"`
}

type location struct {
	start, end int
}

type state struct {
	release  Release
	resolved map[field]location
}

var spaces = regexp.MustCompile(`\s+`)

// Parse extracts structured attributes from title. It never fails: patterns
// that do not match simply leave their attribute empty.
func Parse(title string) Release {
	st := &state{
		release:  Release{Raw: title},
		resolved: make(map[field]location),
	}

	for i := range handlers {
		st.run(&handlers[i], title)
	}

	st.release.Title = extractTitle(title, st.resolved)

	if info := torrentname.Parse(title); info != nil {
		st.release.Confidence = int(info.Confidence)
		if st.release.Title == "" {
			st.release.Title = strings.TrimSpace(info.Title)
		}
	}

	return st.release
}

func (st *state) run(h *handler, title string) {
	if _, done := st.resolved[h.field]; done && !accumulating[h.field] {
		return
	}

	idx := h.pattern.FindStringSubmatchIndex(title)
	if idx == nil {
		return
	}
	if st.precededBy(h.skipIfBefore, idx[0]) {
		return
	}

	m := make([]string, len(idx)/2)
	for g := range m {
		if idx[2*g] >= 0 {
			m[g] = title[idx[2*g]:idx[2*g+1]]
		}
	}

	v, ok := h.extract(m)
	if !ok {
		return
	}

	if !st.apply(h.field, v) {
		return
	}
	if _, seen := st.resolved[h.field]; !seen {
		st.resolved[h.field] = location{start: idx[0], end: idx[1]}
	}
}

func (st *state) precededBy(fields []field, pos int) bool {
	for _, f := range fields {
		if loc, ok := st.resolved[f]; ok && loc.start < pos {
			return true
		}
	}
	return false
}

func (st *state) apply(f field, v value) bool {
	r := &st.release
	switch f {
	case fieldResolution:
		r.Resolution = v.str
	case fieldYear:
		r.Year = v.ints[0]
	case fieldSeasons:
		r.Seasons = v.ints
	case fieldEpisodes:
		r.Episodes = v.ints
	case fieldQuality:
		r.Quality = v.str
	case fieldCodec:
		r.Codec = v.str
	case fieldBitDepth:
		r.BitDepth = v.str
	case fieldGroup:
		r.Group = v.str
	case fieldContainer:
		r.Container = v.str
	case fieldComplete:
		r.Complete = v.flag
	case fieldHDR:
		return appendUnique(&r.HDR, v.str)
	case fieldAudio:
		return appendUnique(&r.Audio, v.str)
	case fieldLanguages:
		return appendUnique(&r.Languages, v.str)
	default:
		return false
	}
	return true
}

func appendUnique(dst *[]string, s string) bool {
	if slices.Contains(*dst, s) {
		return false
	}
	*dst = append(*dst, s)
	return true
}

// extractTitle returns the text ahead of the first recognised attribute. A
// leading [group] tag is skipped. Language tags often appear inside real
// titles, so they never end the title.
func extractTitle(raw string, resolved map[field]location) string {
	start, end := 0, len(raw)
	if g, ok := resolved[fieldGroup]; ok && g.start == 0 {
		start = g.end
	}
	for f, loc := range resolved {
		if f == fieldLanguages {
			continue
		}
		if loc.start >= start && loc.start < end {
			end = loc.start
		}
	}
	if start >= end {
		return ""
	}

	t := raw[start:end]
	if !strings.Contains(t, " ") {
		t = strings.NewReplacer(".", " ", "_", " ").Replace(t)
	}
	t = spaces.ReplaceAllString(t, " ")
	return strings.Trim(t, " -[](){}.,")
}
