// Package adapters connects the addon to upstream stream sources. Each preset
// turns one kind of upstream into the common Adapter contract.
package adapters

import (
	"context"
	"strconv"
	"strings"

	apperrors "github.com/amaumene/gostremiomux/internal/errors"
	"github.com/amaumene/gostremiomux/internal/extras"
	"github.com/amaumene/gostremiomux/internal/models"
	"github.com/amaumene/gostremiomux/internal/parser"
)

// Adapter is one configured upstream. Implementations must be safe for
// concurrent use and honour ctx on every call.
type Adapter interface {
	ID() string
	Manifest(ctx context.Context) (*models.Manifest, error)
	Catalog(ctx context.Context, mediaType, catalogID string, ex extras.Extras) ([]models.Meta, error)
	Meta(ctx context.Context, mediaType, id string) (*models.Meta, error)
	Streams(ctx context.Context, req StreamRequest) ([]RawStream, error)
}

// ErrUnsupported is returned by adapters for operations their upstream lacks.
var ErrUnsupported = apperrors.NewUnsupportedError("operation not supported by adapter")

// StreamRequest identifies the media a stream lookup is for.
type StreamRequest struct {
	MediaType string
	ID        string
	IMDBID    string
	Season    int
	Episode   int
	ClientIP  string
}

// IsEpisode reports whether the request targets a single series episode.
func (r StreamRequest) IsEpisode() bool {
	return r.Season > 0 && r.Episode > 0
}

// ParseStreamRequest splits a Stremio id such as "tt0944947:1:2".
func ParseStreamRequest(mediaType, id, clientIP string) (StreamRequest, error) {
	req := StreamRequest{MediaType: mediaType, ID: id, ClientIP: clientIP}
	if id == "" {
		return req, apperrors.NewInvalidIDError(id)
	}

	parts := strings.Split(id, ":")
	base := parts[0]
	rest := parts[1:]
	if base == "tmdb" || base == "kitsu" {
		if len(parts) < 2 || parts[1] == "" {
			return req, apperrors.NewInvalidIDError(id)
		}
		rest = parts[2:]
	} else if strings.HasPrefix(base, "tt") {
		if _, err := strconv.Atoi(base[2:]); err != nil {
			return req, apperrors.NewInvalidIDError(id)
		}
		req.IMDBID = base
	}

	switch len(rest) {
	case 0:
	case 2:
		season, err1 := strconv.Atoi(rest[0])
		episode, err2 := strconv.Atoi(rest[1])
		if err1 != nil || err2 != nil || season < 0 || episode < 0 {
			return req, apperrors.NewInvalidIDError(id)
		}
		req.Season, req.Episode = season, episode
	default:
		return req, apperrors.NewInvalidIDError(id)
	}
	return req, nil
}

// RawStream is an upstream result before release parsing.
type RawStream struct {
	Title    string
	Filename string
	InfoHash string
	FileIdx  *int
	URL      string
	Sources  []string
	Size     int64
	Seeders  int
	Indexer  string
}

// Normalize parses every raw result into a Candidate. Results with neither an
// info hash nor a URL are dropped. Provenance tags are left to the caller.
func Normalize(raws []RawStream) []models.Candidate {
	out := make([]models.Candidate, 0, len(raws))
	for _, raw := range raws {
		hash := strings.ToLower(strings.TrimSpace(raw.InfoHash))
		if hash == "" && raw.URL == "" {
			continue
		}

		name := raw.Filename
		if name == "" {
			name = raw.Title
		}
		release := parser.Parse(name)
		if raw.Filename != "" && raw.Title != "" && len(release.Seasons) == 0 {
			// filenames inside packs often drop the season marker the title has
			if fromTitle := parser.Parse(raw.Title); len(fromTitle.Seasons) > 0 {
				release.Seasons = fromTitle.Seasons
			}
		}

		fileIdx := -1
		if raw.FileIdx != nil && *raw.FileIdx >= 0 {
			fileIdx = *raw.FileIdx
		}

		c := models.Candidate{
			Release:  release,
			InfoHash: hash,
			FileIdx:  fileIdx,
			Sources:  raw.Sources,
			Size:     raw.Size,
			Seeders:  raw.Seeders,
			Indexer:  raw.Indexer,
			Filename: raw.Filename,
		}
		if hash == "" {
			c.URL = raw.URL
		}
		out = append(out, c)
	}
	return out
}

func intPtr(i int) *int {
	return &i
}
