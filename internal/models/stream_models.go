package models

// Stream is a single playable entry in a Stremio stream response. Exactly one
// of URL or InfoHash is set.
type Stream struct {
	Name          string               `json:"name,omitempty"`
	Title         string               `json:"title,omitempty"`
	Description   string               `json:"description,omitempty"`
	URL           string               `json:"url,omitempty"`
	InfoHash      string               `json:"infoHash,omitempty"`
	FileIdx       *int                 `json:"fileIdx,omitempty"`
	Sources       []string             `json:"sources,omitempty"`
	BehaviorHints *StreamBehaviorHints `json:"behaviorHints,omitempty"`
}

type StreamBehaviorHints struct {
	BingeGroup  string `json:"bingeGroup,omitempty"`
	Filename    string `json:"filename,omitempty"`
	VideoSize   int64  `json:"videoSize,omitempty"`
	NotWebReady bool   `json:"notWebReady,omitempty"`
}

// StreamResponse is the response format for stream endpoints.
type StreamResponse struct {
	Streams     []Stream `json:"streams"`
	CacheMaxAge int      `json:"cacheMaxAge,omitempty"`
}

// Text returns the description, falling back to the legacy title field.
func (s Stream) Text() string {
	if s.Description != "" {
		return s.Description
	}
	return s.Title
}
