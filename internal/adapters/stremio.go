package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
	"github.com/amaumene/gostremiomux/internal/extras"
	"github.com/amaumene/gostremiomux/internal/models"
	"github.com/amaumene/gostremiomux/pkg/httputil"
	"github.com/amaumene/gostremiomux/pkg/logger"
	"github.com/amaumene/gostremiomux/pkg/ratelimiter"
)

var (
	seedersPattern = regexp.MustCompile(`👤\s*(\d+)`)
	sizePattern    = regexp.MustCompile(`💾\s*([\d.,]+\s*[KMGT]i?B)`)
	indexerPattern = regexp.MustCompile(`⚙\x{FE0F}?\s*([^\n]+)`)
)

// Stremio talks to any upstream addon over the Stremio HTTP protocol.
type Stremio struct {
	id         string
	baseURL    string
	forwardIP  bool
	httpClient *http.Client
	limiter    ratelimiter.RateLimiter
	logger     logger.Logger
}

// NewStremio builds the generic preset. The "manifestUrl" option is
// required; "forwardIp" set to "true" passes the caller address upstream.
func NewStremio(ac config.AdapterConfig, deps Deps) (Adapter, error) {
	manifestURL := ac.Option("manifestUrl", "")
	if manifestURL == "" {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("adapter %s: manifestUrl option is required", ac.ID), nil)
	}
	return newStremioClient(ac.ID, manifestURL, ac.Option("forwardIp", "false") == "true", deps)
}

func newStremioClient(id, manifestURL string, forwardIP bool, deps Deps) (*Stremio, error) {
	if strings.HasPrefix(manifestURL, "stremio://") {
		manifestURL = "https://" + strings.TrimPrefix(manifestURL, "stremio://")
	}
	u, err := url.Parse(manifestURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("adapter %s: invalid manifest url", id), err)
	}

	return &Stremio{
		id:         id,
		baseURL:    strings.TrimSuffix(strings.TrimSuffix(manifestURL, "/"), "/manifest.json"),
		forwardIP:  forwardIP,
		httpClient: deps.HTTPClient,
		limiter:    limiterOrUnlimited(deps.Limiter),
		logger:     deps.Logger,
	}, nil
}

func (s *Stremio) ID() string {
	return s.id
}

// upstreamManifest accepts resources in both string and object form.
type upstreamManifest struct {
	models.Manifest
	Resources []json.RawMessage `json:"resources"`
}

func (s *Stremio) Manifest(ctx context.Context) (*models.Manifest, error) {
	var raw upstreamManifest
	if err := s.get(ctx, s.baseURL+"/manifest.json", "", &raw); err != nil {
		return nil, err
	}

	m := raw.Manifest
	m.Resources = nil
	for _, r := range raw.Resources {
		var name string
		if err := json.Unmarshal(r, &name); err == nil {
			m.Resources = append(m.Resources, name)
			continue
		}
		var obj models.ManifestResource
		if err := json.Unmarshal(r, &obj); err == nil && obj.Name != "" {
			m.Resources = append(m.Resources, obj.Name)
		}
	}
	return &m, nil
}

func (s *Stremio) Catalog(ctx context.Context, mediaType, catalogID string, ex extras.Extras) ([]models.Meta, error) {
	path := fmt.Sprintf("%s/catalog/%s/%s", s.baseURL, url.PathEscape(mediaType), url.PathEscape(catalogID))
	if !ex.IsEmpty() {
		path += "/" + extras.Encode(ex)
	}

	var resp models.CatalogResponse
	if err := s.get(ctx, path+".json", "", &resp); err != nil {
		return nil, err
	}
	return resp.Metas, nil
}

func (s *Stremio) Meta(ctx context.Context, mediaType, id string) (*models.Meta, error) {
	path := fmt.Sprintf("%s/meta/%s/%s.json", s.baseURL, url.PathEscape(mediaType), url.PathEscape(id))

	var resp models.MetaResponse
	if err := s.get(ctx, path, "", &resp); err != nil {
		return nil, err
	}
	if resp.Meta.ID == "" {
		return nil, fmt.Errorf("upstream returned no meta for %s", id)
	}
	return &resp.Meta, nil
}

func (s *Stremio) Streams(ctx context.Context, req StreamRequest) ([]RawStream, error) {
	path := fmt.Sprintf("%s/stream/%s/%s.json", s.baseURL, url.PathEscape(req.MediaType), url.PathEscape(req.ID))

	var resp models.StreamResponse
	if err := s.get(ctx, path, req.ClientIP, &resp); err != nil {
		return nil, err
	}

	raws := make([]RawStream, 0, len(resp.Streams))
	for i, st := range resp.Streams {
		raws = append(raws, rawFromStream(st))
		if i < constants.MaxResultsToLog {
			s.logger.Debugf("[Stremio] %s stream %d: %s", s.id, i+1, firstLine(st.Text()))
		}
	}
	s.logger.Debugf("[Stremio] %s returned %d streams for %s", s.id, len(raws), req.ID)
	return raws, nil
}

func (s *Stremio) get(ctx context.Context, rawURL, clientIP string, out interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	var headers map[string]string
	if s.forwardIP && clientIP != "" {
		headers = map[string]string{"X-Forwarded-For": clientIP}
	}
	return httputil.GetJSON(ctx, s.httpClient, rawURL, headers, out)
}

// rawFromStream reads the release name from the first description line and
// the Torrentio-style 👤/💾/⚙️ markers from the rest.
func rawFromStream(st models.Stream) RawStream {
	text := st.Text()
	raw := RawStream{
		Title:    firstLine(text),
		InfoHash: st.InfoHash,
		FileIdx:  st.FileIdx,
		URL:      st.URL,
		Sources:  st.Sources,
	}
	if raw.Title == "" {
		raw.Title = firstLine(st.Name)
	}

	if st.BehaviorHints != nil {
		raw.Filename = st.BehaviorHints.Filename
		raw.Size = st.BehaviorHints.VideoSize
	}

	if m := seedersPattern.FindStringSubmatch(text); m != nil {
		raw.Seeders, _ = strconv.Atoi(m[1])
	}
	if raw.Size == 0 {
		if m := sizePattern.FindStringSubmatch(text); m != nil {
			if size, err := humanize.ParseBytes(strings.ReplaceAll(m[1], ",", ".")); err == nil {
				raw.Size = int64(size)
			}
		}
	}
	if m := indexerPattern.FindStringSubmatch(text); m != nil {
		raw.Indexer = strings.TrimSpace(m[1])
	}
	return raw
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
