package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gostremiomux/internal/config"
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
)

func newTestTorrentsCSV(t *testing.T, handler http.HandlerFunc) Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewTorrentsCSV(config.AdapterConfig{ID: "csv", Preset: "torrentscsv", Options: map[string]string{
		"apiKey":  testTMDBKey,
		"tmdbUrl": srv.URL + "/tmdb",
		"baseUrl": srv.URL,
	}}, testDeps(t, srv))
	require.NoError(t, err)
	return a
}

func TestTorrentsCSVMovie(t *testing.T) {
	a := newTestTorrentsCSV(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tmdb/find/tt0133093":
			assert.Equal(t, "imdb_id", r.URL.Query().Get("external_source"))
			w.Write([]byte(`{"movie_results":[{"id":603,"title":"The Matrix","release_date":"1999-03-31"}]}`))
		case torrentsCSVSearchEndpoint:
			assert.Equal(t, "The Matrix 1999", r.URL.Query().Get("q"))
			w.Write([]byte(`{"torrents":[
				{"rowid":1,"infohash":"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA","name":"The.Matrix.1999.1080p.BluRay.x264-GRP","size_bytes":8000000000,"seeders":50},
				{"rowid":2,"infohash":"BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB","name":"The Matrix Trilogy 1999-2003 1080p","size_bytes":30000000000,"seeders":80},
				{"rowid":3,"infohash":"","name":"broken row","seeders":1}
			]}`))
		default:
			http.NotFound(w, r)
		}
	})

	raws, err := a.Streams(context.Background(), StreamRequest{MediaType: "movie", ID: "tt0133093", IMDBID: "tt0133093"})
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", raws[0].InfoHash)
	assert.Equal(t, int64(8000000000), raws[0].Size)
	assert.Equal(t, 50, raws[0].Seeders)
	assert.Equal(t, torrentsCSVIndexer, raws[0].Indexer)
}

func TestTorrentsCSVEpisodeFilter(t *testing.T) {
	a := newTestTorrentsCSV(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tmdb/find/tt0903747":
			w.Write([]byte(`{"tv_results":[{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20"}]}`))
		case torrentsCSVSearchEndpoint:
			assert.Equal(t, "Breaking Bad S02", r.URL.Query().Get("q"))
			w.Write([]byte(`{"torrents":[
				{"infohash":"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","name":"Breaking.Bad.S02E03.720p.HDTV","seeders":5},
				{"infohash":"bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb","name":"Breaking.Bad.S02E04.720p.HDTV","seeders":5},
				{"infohash":"cccccccccccccccccccccccccccccccccccccccc","name":"Breaking.Bad.S02.1080p.BluRay","seeders":9}
			]}`))
		default:
			http.NotFound(w, r)
		}
	})

	raws, err := a.Streams(context.Background(), StreamRequest{MediaType: "series", ID: "tt0903747:2:3", IMDBID: "tt0903747", Season: 2, Episode: 3})
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "Breaking.Bad.S02E03.720p.HDTV", raws[0].Title)
	assert.Equal(t, "Breaking.Bad.S02.1080p.BluRay", raws[1].Title)
}

func TestTorrentsCSVLookupFailure(t *testing.T) {
	searched := false
	a := newTestTorrentsCSV(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == torrentsCSVSearchEndpoint {
			searched = true
		}
		w.Write([]byte(`{"movie_results":[],"tv_results":[]}`))
	})

	_, err := a.Streams(context.Background(), StreamRequest{MediaType: "movie", ID: "tt1", IMDBID: "tt1"})
	require.Error(t, err)
	assert.False(t, searched)

	raws, err := a.Streams(context.Background(), StreamRequest{MediaType: "movie", ID: "tmdb:1"})
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestTorrentsCSVRequiresTMDBKey(t *testing.T) {
	_, err := NewTorrentsCSV(config.AdapterConfig{ID: "csv"}, Deps{Config: &config.Config{}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAPIKeyMissing))
}

func TestIsMoviePack(t *testing.T) {
	assert.True(t, isMoviePack("Alien Quadrilogy 1080p"))
	assert.True(t, isMoviePack("Rocky 1976-2006 Complete"))
	assert.False(t, isMoviePack("Alien.1979.Directors.Cut.1080p"))
}
