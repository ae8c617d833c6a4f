package adapters

import (
	"context"
	"fmt"
	"net/http"
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
	eztvAPIBase  = "https://eztvx.to/api"
	eztvPageSize = 100
	eztvIndexer  = "EZTV"
)

type EZTVTorrent struct {
	ID               int    `json:"id"`
	Hash             string `json:"hash"`
	Filename         string `json:"filename"`
	TorrentURL       string `json:"torrent_url"`
	MagnetURL        string `json:"magnet_url"`
	Title            string `json:"title"`
	Season           string `json:"season"`
	Episode          string `json:"episode"`
	Seeds            int    `json:"seeds"`
	Peers            int    `json:"peers"`
	DateReleasedUnix int64  `json:"date_released_unix"`
	SizeBytes        string `json:"size_bytes"`
}

type EZTVResponse struct {
	IMDBID        string        `json:"imdb_id"`
	TorrentsCount int           `json:"torrents_count"`
	Limit         int           `json:"limit"`
	Page          int           `json:"page"`
	Torrents      []EZTVTorrent `json:"torrents"`
}

// EZTV looks up TV episodes by IMDB id. Movies yield no results.
type EZTV struct {
	id         string
	baseURL    string
	maxPages   int
	httpClient *http.Client
	limiter    ratelimiter.RateLimiter
	logger     logger.Logger
}

func NewEZTV(ac config.AdapterConfig, deps Deps) (Adapter, error) {
	maxPages, err := strconv.Atoi(ac.Option("maxPages", strconv.Itoa(constants.EZTVMaxPages)))
	if err != nil || maxPages <= 0 {
		maxPages = constants.EZTVMaxPages
	}
	return &EZTV{
		id:         ac.ID,
		baseURL:    strings.TrimSuffix(ac.Option("baseUrl", eztvAPIBase), "/"),
		maxPages:   maxPages,
		httpClient: deps.HTTPClient,
		limiter:    limiterOrUnlimited(deps.Limiter),
		logger:     deps.Logger,
	}, nil
}

func (e *EZTV) ID() string {
	return e.id
}

func (e *EZTV) Manifest(context.Context) (*models.Manifest, error) {
	return streamOnlyManifest(e.id, eztvIndexer, []string{"series"}), nil
}

func (e *EZTV) Catalog(context.Context, string, string, extras.Extras) ([]models.Meta, error) {
	return nil, ErrUnsupported
}

func (e *EZTV) Meta(context.Context, string, string) (*models.Meta, error) {
	return nil, ErrUnsupported
}

func (e *EZTV) Streams(ctx context.Context, req StreamRequest) ([]RawStream, error) {
	if req.MediaType != "series" || req.IMDBID == "" {
		return nil, nil
	}

	// EZTV wants the numeric part of the IMDB id
	cleanIMDBID := strings.TrimPrefix(req.IMDBID, "tt")

	var torrents []EZTVTorrent
	for page := 1; page <= e.maxPages; page++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		apiURL := fmt.Sprintf("%s/get-torrents?imdb_id=%s&limit=%d&page=%d", e.baseURL, cleanIMDBID, eztvPageSize, page)
		e.logger.Debugf("[EZTV] API call to search torrents - URL: %s", apiURL)

		var resp EZTVResponse
		if err := httputil.GetJSON(ctx, e.httpClient, apiURL, nil, &resp); err != nil {
			if page > 1 {
				e.logger.Warnf("[EZTV] page %d failed, keeping %d torrents: %v", page, len(torrents), err)
				break
			}
			return nil, fmt.Errorf("failed to search EZTV: %w", err)
		}

		torrents = append(torrents, resp.Torrents...)
		if len(resp.Torrents) < eztvPageSize || len(torrents) >= resp.TorrentsCount {
			break
		}
	}

	raws := make([]RawStream, 0, len(torrents))
	for _, t := range torrents {
		if t.Hash == "" || !t.matches(req) {
			continue
		}
		raws = append(raws, t.raw())
	}

	e.logger.Debugf("[EZTV] API call completed - %d of %d torrents match %s", len(raws), len(torrents), req.ID)
	return raws, nil
}

// matches prefers the API's season/episode fields and falls back to parsing
// the title when they are missing.
func (t EZTVTorrent) matches(req StreamRequest) bool {
	if !req.IsEpisode() {
		return true
	}
	season, errS := strconv.Atoi(t.Season)
	episode, errE := strconv.Atoi(t.Episode)
	if errS == nil && errE == nil && season > 0 {
		if episode == 0 {
			return season == req.Season && parser.Parse(t.Title).MatchesEpisode(req.Season, req.Episode)
		}
		return season == req.Season && episode == req.Episode
	}
	return parser.Parse(t.Title).MatchesEpisode(req.Season, req.Episode)
}

func (t EZTVTorrent) raw() RawStream {
	size, _ := strconv.ParseInt(t.SizeBytes, 10, 64)
	return RawStream{
		Title:    t.Title,
		InfoHash: strings.ToLower(t.Hash),
		Size:     size,
		Seeders:  t.Seeds,
		Indexer:  eztvIndexer,
	}
}
