package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	"github.com/amaumene/gostremiomux/internal/extras"
	"github.com/amaumene/gostremiomux/internal/models"
	"github.com/amaumene/gostremiomux/internal/parser"
	"github.com/amaumene/gostremiomux/pkg/httputil"
	"github.com/amaumene/gostremiomux/pkg/logger"
	"github.com/amaumene/gostremiomux/pkg/ratelimiter"
)

const (
	// TorrentsCSV API configuration
	torrentsCSVAPIBase        = "https://torrents-csv.com"
	torrentsCSVSearchEndpoint = "/service/search"

	torrentsCSVIndexer = "TorrentsCSV"
)

// Collections and packs that show up for a single-movie title search.
var (
	moviePackWords = []string{
		"collection", "trilogy", "quadrilogy", "pentalogy", "hexalogy", "duology",
		"anthology", "saga", "box set", "boxset", "movie series", "film series",
		"all parts", "all movies",
	}
	yearRangePattern = regexp.MustCompile(`(19|20)\d{2}\s*[-–—]\s*(19|20)\d{2}`)
)

type TorrentsCSVTorrent struct {
	RowID       int64  `json:"rowid"`
	InfoHash    string `json:"infohash"`
	Name        string `json:"name"`
	SizeBytes   int64  `json:"size_bytes"`
	CreatedUnix int64  `json:"created_unix"`
	Seeders     int    `json:"seeders"`
	Leechers    int    `json:"leechers"`
}

type TorrentsCSVResponse struct {
	Torrents []TorrentsCSVTorrent `json:"torrents"`
	Next     int64                `json:"next"`
}

// TorrentsCSV searches the torrents-csv index by title. The index knows
// nothing about IMDB ids, so the title comes from a TMDB lookup first.
type TorrentsCSV struct {
	id         string
	baseURL    string
	titles     *TMDB
	httpClient *http.Client
	limiter    ratelimiter.RateLimiter
	logger     logger.Logger
}

// NewTorrentsCSV takes the TMDB key from "apiKey" (or TMDB_API_KEY) and the
// TMDB base from "tmdbUrl"; "baseUrl" points at the torrents-csv instance.
func NewTorrentsCSV(ac config.AdapterConfig, deps Deps) (Adapter, error) {
	titles, err := newTMDB(ac, deps, "tmdbUrl")
	if err != nil {
		return nil, err
	}
	return &TorrentsCSV{
		id:         ac.ID,
		baseURL:    strings.TrimSuffix(ac.Option("baseUrl", torrentsCSVAPIBase), "/"),
		titles:     titles,
		httpClient: deps.HTTPClient,
		limiter:    limiterOrUnlimited(deps.Limiter),
		logger:     deps.Logger,
	}, nil
}

func (t *TorrentsCSV) ID() string {
	return t.id
}

func (t *TorrentsCSV) Manifest(context.Context) (*models.Manifest, error) {
	return streamOnlyManifest(t.id, torrentsCSVIndexer, []string{"movie", "series"}), nil
}

func (t *TorrentsCSV) Catalog(context.Context, string, string, extras.Extras) ([]models.Meta, error) {
	return nil, ErrUnsupported
}

func (t *TorrentsCSV) Meta(context.Context, string, string) (*models.Meta, error) {
	return nil, ErrUnsupported
}

func (t *TorrentsCSV) Streams(ctx context.Context, req StreamRequest) ([]RawStream, error) {
	if req.IMDBID == "" {
		return nil, nil
	}

	title, year, err := t.titles.Lookup(ctx, req.MediaType, req.IMDBID)
	if err != nil {
		return nil, err
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := searchQuery(title, year, req)
	apiURL := fmt.Sprintf("%s%s?q=%s", t.baseURL, torrentsCSVSearchEndpoint, url.QueryEscape(query))
	t.logger.Debugf("[TORRENTSCSV] searching torrents for %q", query)

	var resp TorrentsCSVResponse
	if err := httputil.GetJSON(ctx, t.httpClient, apiURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to search TorrentsCSV: %w", err)
	}

	raws := make([]RawStream, 0, len(resp.Torrents))
	for i, torrent := range resp.Torrents {
		if torrent.InfoHash == "" {
			continue
		}
		release := parser.Parse(torrent.Name)
		if req.IsEpisode() && !release.MatchesEpisode(req.Season, req.Episode) {
			continue
		}
		if req.MediaType == "movie" && isMoviePack(torrent.Name) {
			continue
		}
		if i < constants.MaxResultsToLog {
			t.logger.Debugf("[TORRENTSCSV] torrent %d: %s (hash: %s, seeders: %d)", i+1, torrent.Name, torrent.InfoHash, torrent.Seeders)
		}
		raws = append(raws, RawStream{
			Title:    torrent.Name,
			InfoHash: strings.ToLower(torrent.InfoHash),
			Size:     torrent.SizeBytes,
			Seeders:  torrent.Seeders,
			Indexer:  torrentsCSVIndexer,
		})
	}

	t.logger.Infof("[TORRENTSCSV] found %d usable torrents of %d for %s", len(raws), len(resp.Torrents), req.ID)
	return raws, nil
}

// searchQuery asks for "Title Year" for movies and "Title S01" for episodes,
// which also finds the season packs.
func searchQuery(title string, year int, req StreamRequest) string {
	switch {
	case req.IsEpisode():
		return fmt.Sprintf("%s S%02d", title, req.Season)
	case req.MediaType == "movie" && year > 0:
		return title + " " + strconv.Itoa(year)
	}
	return title
}

func isMoviePack(name string) bool {
	lower := strings.ToLower(name)
	for _, w := range moviePackWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return yearRangePattern.MatchString(name)
}
