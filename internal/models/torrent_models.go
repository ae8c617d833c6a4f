// Package models defines the wire types of the Stremio protocol and the
// upstream APIs, plus the merged stream candidate.
package models

import "github.com/amaumene/gostremiomux/internal/parser"

// Candidate is one stream offered by an adapter, parsed and tagged with where
// it came from. Exactly one locator is set: InfoHash (with FileIdx, -1 when
// unknown) or URL.
type Candidate struct {
	Release     parser.Release `json:"release"`
	AdapterID   string         `json:"adapterId"`
	AdapterName string         `json:"adapterName"`
	Priority    int            `json:"priority"`
	Index       int            `json:"index"`

	InfoHash string   `json:"infoHash,omitempty"`
	FileIdx  int      `json:"fileIdx"`
	URL      string   `json:"url,omitempty"`
	Sources  []string `json:"sources,omitempty"`

	Size     int64  `json:"size,omitempty"`
	Seeders  int    `json:"seeders,omitempty"`
	Indexer  string `json:"indexer,omitempty"`
	Filename string `json:"filename,omitempty"`
}

func (c Candidate) HasHash() bool {
	return c.InfoHash != ""
}

// IsEphemeral reports whether the candidate is a bare URL, which upstreams
// usually sign with a short expiry.
func (c Candidate) IsEphemeral() bool {
	return c.InfoHash == "" && c.URL != ""
}

func (c Candidate) HasFileIdx() bool {
	return c.FileIdx >= 0
}
