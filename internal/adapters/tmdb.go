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
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
	"github.com/amaumene/gostremiomux/internal/extras"
	"github.com/amaumene/gostremiomux/internal/models"
	"github.com/amaumene/gostremiomux/pkg/httputil"
	"github.com/amaumene/gostremiomux/pkg/logger"
	"github.com/amaumene/gostremiomux/pkg/ratelimiter"
	"github.com/amaumene/gostremiomux/pkg/security"
)

const (
	tmdbAPIBase   = "https://api.themoviedb.org/3"
	tmdbImageBase = "https://image.tmdb.org/t/p"
	tmdbIDPrefix  = "tmdb:"

	catalogPopular  = "popular"
	catalogTrending = "trending"
	catalogSearch   = "search"
)

// TMDB serves catalogs and metadata from The Movie Database. It has no
// streams.
type TMDB struct {
	id         string
	apiKey     string
	language   string
	baseURL    string
	httpClient *http.Client
	limiter    ratelimiter.RateLimiter
	logger     logger.Logger
}

// NewTMDB reads the key from the "apiKey" option, falling back to the
// instance TMDB_API_KEY.
func NewTMDB(ac config.AdapterConfig, deps Deps) (Adapter, error) {
	return newTMDB(ac, deps, "baseUrl")
}

// newTMDB builds the client with the API base taken from baseURLOption, so
// adapters embedding a TMDB lookup can keep "baseUrl" for their own upstream.
func newTMDB(ac config.AdapterConfig, deps Deps, baseURLOption string) (*TMDB, error) {
	validator := security.NewAPIKeyValidator()

	def := ""
	if deps.Config != nil {
		def = deps.Config.TMDBAPIKey
	}
	apiKey := validator.SanitizeAPIKey(ac.Option("apiKey", def))
	if apiKey == "" {
		return nil, apperrors.NewAPIKeyMissingError("TMDB")
	}
	if !validator.IsValidTMDBKey(apiKey) {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("adapter %s: invalid TMDB API key format (key: %s)", ac.ID, validator.MaskAPIKey(apiKey)), nil)
	}

	return &TMDB{
		id:         ac.ID,
		apiKey:     apiKey,
		language:   ac.Option("language", "en-US"),
		baseURL:    strings.TrimSuffix(ac.Option(baseURLOption, tmdbAPIBase), "/"),
		httpClient: deps.HTTPClient,
		limiter:    limiterOrUnlimited(deps.Limiter),
		logger:     deps.Logger,
	}, nil
}

func (t *TMDB) ID() string {
	return t.id
}

func (t *TMDB) Manifest(context.Context) (*models.Manifest, error) {
	var catalogs []models.Catalog
	for _, mediaType := range []string{"movie", "series"} {
		genres := genreNames(mediaType)
		catalogs = append(catalogs,
			models.Catalog{Type: mediaType, ID: catalogPopular, Name: "Popular", Extra: []models.ExtraField{
				{Name: "genre", Options: genres},
				{Name: "skip"},
			}},
			models.Catalog{Type: mediaType, ID: catalogTrending, Name: "Trending", Extra: []models.ExtraField{
				{Name: "skip"},
			}},
			models.Catalog{Type: mediaType, ID: catalogSearch, Name: "Search", Extra: []models.ExtraField{
				{Name: "search", IsRequired: true},
				{Name: "skip"},
			}},
		)
	}

	return &models.Manifest{
		ID:         t.id,
		Name:       "TMDB",
		Types:      []string{"movie", "series"},
		Resources:  []string{"catalog", "meta"},
		Catalogs:   catalogs,
		IDPrefixes: []string{tmdbIDPrefix, "tt"},
	}, nil
}

func (t *TMDB) Catalog(ctx context.Context, mediaType, catalogID string, ex extras.Extras) ([]models.Meta, error) {
	kind, err := tmdbKind(mediaType)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(ex.Page(constants.CatalogPageSize)))

	var path string
	switch catalogID {
	case catalogPopular:
		if ex.Genre != "" {
			genreID, ok := genreID(mediaType, ex.Genre)
			if !ok {
				return []models.Meta{}, nil
			}
			path = "/discover/" + kind
			params.Set("with_genres", genreID)
			params.Set("sort_by", "popularity.desc")
		} else {
			path = "/" + kind + "/popular"
		}
	case catalogTrending:
		path = "/trending/" + kind + "/week"
	case catalogSearch:
		if ex.Search == "" {
			return []models.Meta{}, nil
		}
		path = "/search/" + kind
		params.Set("query", ex.Search)
		params.Set("include_adult", "false")
	default:
		return nil, fmt.Errorf("unknown TMDB catalog %q", catalogID)
	}

	if kind == "movie" {
		var resp models.TMDBMovieResponse
		if err := t.get(ctx, path, params, &resp); err != nil {
			return nil, err
		}
		metas := make([]models.Meta, 0, len(resp.Results))
		for _, m := range resp.Results {
			metas = append(metas, movieToMeta(m))
		}
		return metas, nil
	}

	var resp models.TMDBTVResponse
	if err := t.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	metas := make([]models.Meta, 0, len(resp.Results))
	for _, tv := range resp.Results {
		metas = append(metas, tvToMeta(tv))
	}
	return metas, nil
}

// Meta accepts "tmdb:<id>" and IMDB ids.
func (t *TMDB) Meta(ctx context.Context, mediaType, id string) (*models.Meta, error) {
	kind, err := tmdbKind(mediaType)
	if err != nil {
		return nil, err
	}

	tmdbID, err := t.resolveID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if kind == "movie" {
		var details models.TMDBMovieDetails
		params := url.Values{"append_to_response": {"credits"}}
		if err := t.get(ctx, "/movie/"+tmdbID, params, &details); err != nil {
			return nil, fmt.Errorf("failed to fetch movie details: %w", err)
		}
		meta := movieDetailsToMeta(details)
		return &meta, nil
	}

	var details models.TMDBTVDetails
	params := url.Values{"append_to_response": {"credits,external_ids"}}
	if err := t.get(ctx, "/tv/"+tmdbID, params, &details); err != nil {
		return nil, fmt.Errorf("failed to fetch TV details: %w", err)
	}
	meta := tvDetailsToMeta(details)

	for _, season := range details.Seasons {
		if season.SeasonNumber <= 0 {
			continue
		}
		var sd models.TMDBSeasonDetails
		if err := t.get(ctx, fmt.Sprintf("/tv/%s/season/%d", tmdbID, season.SeasonNumber), nil, &sd); err != nil {
			t.logger.Warnf("[TMDB] failed to fetch season %d of %s: %v", season.SeasonNumber, tmdbID, err)
			continue
		}
		for _, ep := range sd.Episodes {
			meta.Videos = append(meta.Videos, models.Video{
				ID:        fmt.Sprintf("%s:%d:%d", meta.ID, ep.SeasonNumber, ep.EpisodeNumber),
				Title:     ep.Name,
				Season:    ep.SeasonNumber,
				Episode:   ep.EpisodeNumber,
				Released:  ep.AirDate,
				Overview:  ep.Overview,
				Thumbnail: imageURL("w300", ep.StillPath),
			})
		}
	}
	return &meta, nil
}

func (t *TMDB) Streams(context.Context, StreamRequest) ([]RawStream, error) {
	return nil, ErrUnsupported
}

func (t *TMDB) resolveID(ctx context.Context, kind, id string) (string, error) {
	if strings.HasPrefix(id, tmdbIDPrefix) {
		tmdbID := strings.TrimPrefix(id, tmdbIDPrefix)
		if _, err := strconv.Atoi(tmdbID); err != nil {
			return "", apperrors.NewInvalidIDError(id)
		}
		return tmdbID, nil
	}
	if !strings.HasPrefix(id, "tt") {
		return "", apperrors.NewInvalidIDError(id)
	}

	var found models.TMDBFindResponse
	params := url.Values{"external_source": {"imdb_id"}}
	if err := t.get(ctx, "/find/"+url.PathEscape(id), params, &found); err != nil {
		return "", fmt.Errorf("failed to fetch TMDB data: %w", err)
	}
	if kind == "movie" && len(found.MovieResults) > 0 {
		return strconv.Itoa(found.MovieResults[0].ID), nil
	}
	if kind == "tv" && len(found.TVResults) > 0 {
		return strconv.Itoa(found.TVResults[0].ID), nil
	}
	return "", fmt.Errorf("no results found for IMDB ID: %s", id)
}

// Lookup returns the display title and release year of an IMDB id.
func (t *TMDB) Lookup(ctx context.Context, mediaType, imdbID string) (string, int, error) {
	kind, err := tmdbKind(mediaType)
	if err != nil {
		return "", 0, err
	}

	var found models.TMDBFindResponse
	params := url.Values{"external_source": {"imdb_id"}}
	if err := t.get(ctx, "/find/"+url.PathEscape(imdbID), params, &found); err != nil {
		return "", 0, fmt.Errorf("failed to fetch TMDB data: %w", err)
	}

	switch {
	case kind == "movie" && len(found.MovieResults) > 0:
		m := found.MovieResults[0]
		y, _ := strconv.Atoi(year(m.ReleaseDate))
		return m.Title, y, nil
	case kind == "tv" && len(found.TVResults) > 0:
		tv := found.TVResults[0]
		y, _ := strconv.Atoi(year(tv.FirstAirDate))
		return tv.Name, y, nil
	}
	return "", 0, fmt.Errorf("no results found for IMDB ID: %s", imdbID)
}

func (t *TMDB) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if params == nil {
		params = url.Values{}
	}
	// TMDB v3 only accepts the key as a query parameter
	params.Set("api_key", t.apiKey)
	params.Set("language", t.language)

	t.logger.Debugf("[TMDB] GET %s", path)
	return httputil.GetJSON(ctx, t.httpClient, t.baseURL+path+"?"+params.Encode(), nil, out)
}

func tmdbKind(mediaType string) (string, error) {
	switch mediaType {
	case "movie":
		return "movie", nil
	case "series":
		return "tv", nil
	}
	return "", apperrors.NewUnsupportedError("TMDB media type " + mediaType)
}

func genres(mediaType string) []constants.Genre {
	if mediaType == "movie" {
		return constants.TMDBMovieGenres
	}
	return constants.TMDBTVGenres
}

func genreNames(mediaType string) []string {
	list := genres(mediaType)
	names := make([]string, len(list))
	for i, g := range list {
		names[i] = g.Name
	}
	return names
}

func genreID(mediaType, name string) (string, bool) {
	for _, g := range genres(mediaType) {
		if strings.EqualFold(g.Name, name) || g.ID == name {
			return g.ID, true
		}
	}
	return "", false
}

func imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return tmdbImageBase + "/" + size + path
}

func year(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

func movieToMeta(m models.TMDBMovie) models.Meta {
	return models.Meta{
		ID:          tmdbIDPrefix + strconv.Itoa(m.ID),
		Type:        "movie",
		Name:        m.Title,
		Poster:      imageURL("w500", m.PosterPath),
		Background:  imageURL("original", m.BackdropPath),
		Description: m.Overview,
		ReleaseInfo: year(m.ReleaseDate),
		IMDBRating:  m.VoteAverage,
	}
}

func tvToMeta(tv models.TMDBTV) models.Meta {
	return models.Meta{
		ID:          tmdbIDPrefix + strconv.Itoa(tv.ID),
		Type:        "series",
		Name:        tv.Name,
		Poster:      imageURL("w500", tv.PosterPath),
		Background:  imageURL("original", tv.BackdropPath),
		Description: tv.Overview,
		ReleaseInfo: year(tv.FirstAirDate),
		IMDBRating:  tv.VoteAverage,
	}
}

func credits(c models.TMDBCredits) (cast, directors, writers []string) {
	for _, member := range c.Cast {
		if len(cast) == 10 {
			break
		}
		cast = append(cast, member.Name)
	}
	for _, member := range c.Crew {
		switch member.Job {
		case "Director":
			directors = append(directors, member.Name)
		case "Screenplay", "Writer":
			writers = append(writers, member.Name)
		}
	}
	return cast, directors, writers
}

func genreList(gs []models.TMDBGenre) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.Name)
	}
	return out
}

func movieDetailsToMeta(d models.TMDBMovieDetails) models.Meta {
	cast, directors, writers := credits(d.Credits)
	meta := models.Meta{
		ID:          tmdbIDPrefix + strconv.Itoa(d.ID),
		Type:        "movie",
		Name:        d.Title,
		Poster:      imageURL("w500", d.PosterPath),
		Background:  imageURL("original", d.BackdropPath),
		Description: d.Overview,
		ReleaseInfo: year(d.ReleaseDate),
		IMDBRating:  d.VoteAverage,
		Genres:      genreList(d.Genres),
		Cast:        cast,
		Director:    directors,
		Writer:      writers,
		IMDBID:      d.IMDBId,
	}
	if d.IMDBId != "" {
		meta.ID = d.IMDBId
	}
	if d.Runtime > 0 {
		meta.Runtime = fmt.Sprintf("%d min", d.Runtime)
	}
	if len(d.ProductionCountries) > 0 {
		meta.Country = d.ProductionCountries[0].Name
	}
	if len(d.SpokenLanguages) > 0 {
		meta.Language = d.SpokenLanguages[0].Name
	}
	return meta
}

func tvDetailsToMeta(d models.TMDBTVDetails) models.Meta {
	cast, directors, writers := credits(d.Credits)
	meta := models.Meta{
		ID:          tmdbIDPrefix + strconv.Itoa(d.ID),
		Type:        "series",
		Name:        d.Name,
		Poster:      imageURL("w500", d.PosterPath),
		Background:  imageURL("original", d.BackdropPath),
		Description: d.Overview,
		ReleaseInfo: year(d.FirstAirDate),
		IMDBRating:  d.VoteAverage,
		Genres:      genreList(d.Genres),
		Cast:        cast,
		Director:    directors,
		Writer:      writers,
		Language:    d.OriginalLanguage,
		IMDBID:      d.ExternalIds.IMDBId,
	}
	if d.ExternalIds.IMDBId != "" {
		meta.ID = d.ExternalIds.IMDBId
	}
	if len(d.EpisodeRunTime) > 0 {
		meta.Runtime = fmt.Sprintf("%d min", d.EpisodeRunTime[0])
	}
	if len(d.OriginCountry) > 0 {
		meta.Country = d.OriginCountry[0]
	}
	return meta
}
