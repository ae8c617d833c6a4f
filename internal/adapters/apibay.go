package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
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
	// Apibay API configuration
	apibayAPIBase        = "https://apibay.org"
	apibaySearchEndpoint = "/q.php"

	apibayIndexer = "ThePirateBay"
	emptyHash     = "0000000000000000000000000000000000000000"
)

type ApibayTorrent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	InfoHash string `json:"info_hash"`
	Seeders  string `json:"seeders"`
	Leechers string `json:"leechers"`
	Size     string `json:"size"`
	Category string `json:"category"`
	Added    string `json:"added"`
	IMDB     string `json:"imdb"`
}

// Apibay searches The Pirate Bay JSON API by IMDB id.
type Apibay struct {
	id         string
	baseURL    string
	httpClient *http.Client
	limiter    ratelimiter.RateLimiter
	logger     logger.Logger
}

func NewApibay(ac config.AdapterConfig, deps Deps) (Adapter, error) {
	return &Apibay{
		id:         ac.ID,
		baseURL:    strings.TrimSuffix(ac.Option("baseUrl", apibayAPIBase), "/"),
		httpClient: deps.HTTPClient,
		limiter:    limiterOrUnlimited(deps.Limiter),
		logger:     deps.Logger,
	}, nil
}

func (a *Apibay) ID() string {
	return a.id
}

func (a *Apibay) Manifest(context.Context) (*models.Manifest, error) {
	return streamOnlyManifest(a.id, apibayIndexer, []string{"movie", "series"}), nil
}

func (a *Apibay) Catalog(context.Context, string, string, extras.Extras) ([]models.Meta, error) {
	return nil, ErrUnsupported
}

func (a *Apibay) Meta(context.Context, string, string) (*models.Meta, error) {
	return nil, ErrUnsupported
}

func (a *Apibay) Streams(ctx context.Context, req StreamRequest) ([]RawStream, error) {
	if req.IMDBID == "" {
		return nil, nil
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("%s%s?q=%s", a.baseURL, apibaySearchEndpoint, url.QueryEscape(req.IMDBID))
	a.logger.Debugf("[APIBAY] searching torrents for %s", req.IMDBID)

	var torrents []ApibayTorrent
	if err := httputil.GetJSON(ctx, a.httpClient, apiURL, nil, &torrents); err != nil {
		return nil, fmt.Errorf("failed to search Apibay: %w", err)
	}

	raws := make([]RawStream, 0, len(torrents))
	for i, t := range torrents {
		// the API answers a miss with a single placeholder row
		if t.ID == "0" || t.InfoHash == "" || t.InfoHash == emptyHash {
			continue
		}
		if req.IsEpisode() && !parser.Parse(t.Name).MatchesEpisode(req.Season, req.Episode) {
			continue
		}
		if i < constants.MaxResultsToLog {
			a.logger.Debugf("[APIBAY] torrent %d: %s (hash: %s, seeders: %s)", i+1, t.Name, t.InfoHash, t.Seeders)
		}
		raws = append(raws, t.raw())
	}

	a.logger.Infof("[APIBAY] found %d usable torrents of %d for %s", len(raws), len(torrents), req.ID)
	return raws, nil
}

func (t ApibayTorrent) raw() RawStream {
	size, _ := strconv.ParseInt(t.Size, 10, 64)
	seeders, _ := strconv.Atoi(t.Seeders)
	return RawStream{
		Title:    t.Name,
		InfoHash: strings.ToLower(t.InfoHash),
		Size:     size,
		Seeders:  seeders,
		Indexer:  apibayIndexer,
	}
}

func limiterOrUnlimited(l ratelimiter.RateLimiter) ratelimiter.RateLimiter {
	if l == nil {
		return ratelimiter.Unlimited{}
	}
	return l
}

// streamOnlyManifest describes an adapter that serves streams and nothing else.
func streamOnlyManifest(id, name string, types []string) *models.Manifest {
	return &models.Manifest{
		ID:         id,
		Name:       name,
		Types:      types,
		Resources:  []string{"stream"},
		Catalogs:   []models.Catalog{},
		IDPrefixes: []string{"tt"},
	}
}
