package realdebrid

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), nil)
	c.SetBaseURL(srv.URL + "/")
	return c
}

func TestTorrentFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/torrents/addMagnet", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "magnet:?xt=urn:btih:abc", r.FormValue("magnet"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"T1","uri":"https://api/torrents/info/T1"}`))
	})
	mux.HandleFunc("/torrents/selectFiles/T1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1,3", r.FormValue("files"))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/torrents/info/T1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"T1","status":"downloaded","files":[
			{"id":1,"path":"/a.mkv","bytes":10,"selected":1},
			{"id":2,"path":"/a.nfo","bytes":1,"selected":0},
			{"id":3,"path":"/b.mkv","bytes":20,"selected":1}
		],"links":["https://rd/1","https://rd/3"]}`))
	})
	mux.HandleFunc("/unrestrict/link", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://rd/3", r.FormValue("link"))
		w.Write([]byte(`{"id":"U","filename":"b.mkv","download":"https://cdn/b.mkv"}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	added, err := c.AddMagnet(ctx, "tok", "magnet:?xt=urn:btih:abc")
	require.NoError(t, err)
	assert.Equal(t, "T1", added.ID)

	require.NoError(t, c.SelectFiles(ctx, "tok", "T1", []int{1, 3}))

	info, err := c.Info(ctx, "tok", "T1")
	require.NoError(t, err)
	assert.Equal(t, StatusDownloaded, info.Status)

	files, links := info.SelectedFiles()
	require.Len(t, files, 2)
	assert.Equal(t, "/b.mkv", files[1].Path)
	assert.Equal(t, "https://rd/3", links[1])

	u, err := c.Unrestrict(ctx, "tok", links[1])
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/b.mkv", u.Download)
}

func TestAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/torrents/addMagnet", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnavailableForLegalReasons)
		w.Write([]byte(`{"error":"infringing_file","error_code":35}`))
	})
	mux.HandleFunc("/torrents/info/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newTestClient(t, mux)

	_, err := c.AddMagnet(context.Background(), "tok", "magnet:?xt=urn:btih:abc")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 35, apiErr.Code)
	assert.Equal(t, http.StatusUnavailableForLegalReasons, apiErr.StatusCode)

	_, err = c.Info(context.Background(), "tok", "missing")
	require.Error(t, err)
	assert.False(t, errors.As(err, &apiErr))
}
