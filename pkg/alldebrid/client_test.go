package alldebrid

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), nil)
	c.SetBaseURL(srv.URL)
	return c
}

func TestUploadMagnet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/magnet/upload", r.URL.Path)
		assert.Equal(t, "gostremiomux", r.URL.Query().Get("agent"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, []string{"magnet:?xt=urn:btih:abc"}, r.PostForm["magnets[]"])
		w.Write([]byte(`{"status":"success","data":{"magnets":[{"id":42,"hash":"abc","ready":true}]}}`))
	})

	magnets, err := c.UploadMagnet(context.Background(), "key", []string{"magnet:?xt=urn:btih:abc"})
	require.NoError(t, err)
	require.Len(t, magnets, 1)
	assert.Equal(t, int64(42), magnets[0].ID)
	assert.True(t, magnets[0].Ready)
	assert.NoError(t, magnets[0].Err())
}

func TestUploadMagnetPerMagnetError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{"magnets":[{"magnet":"x","error":{"code":"MAGNET_INVALID_URI","message":"bad"}}]}}`))
	})

	magnets, err := c.UploadMagnet(context.Background(), "key", []string{"x"})
	require.NoError(t, err)

	var apiErr *APIError
	require.True(t, errors.As(magnets[0].Err(), &apiErr))
	assert.Equal(t, "MAGNET_INVALID_URI", apiErr.Code)
}

func TestAPIErrors(t *testing.T) {
	t.Run("error envelope", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"error","error":{"code":"AUTH_BAD_APIKEY","message":"The auth apikey is invalid"}}`))
		})
		_, err := c.UnlockLink(context.Background(), "key", "https://host/x")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "AUTH_BAD_APIKEY", apiErr.Code)
		assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	})

	t.Run("error status with body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":"error","error":{"code":"AUTH_MISSING_APIKEY","message":"missing"}}`))
		})
		_, err := c.UnlockLink(context.Background(), "", "https://host/x")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "AUTH_MISSING_APIKEY", apiErr.Code)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})
}

func TestMagnetFilesFlattensTree(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/magnet/files", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("id[]"))
		w.Write([]byte(`{"status":"success","data":{"magnets":[{"id":"7","files":[
			{"n":"Show.S01","e":[
				{"n":"Show.S01E01.mkv","s":100,"l":"https://ad/1"},
				{"n":"Subs","e":[{"n":"en.srt","s":1,"l":"https://ad/2"}]}
			]},
			{"n":"readme.txt","s":2,"l":"https://ad/3"}
		]}]}}`))
	})

	files, err := c.MagnetFiles(context.Background(), "key", "7")
	require.NoError(t, err)
	assert.Equal(t, []File{
		{Path: "Show.S01/Show.S01E01.mkv", Size: 100, Link: "https://ad/1"},
		{Path: "Show.S01/Subs/en.srt", Size: 1, Link: "https://ad/2"},
		{Path: "readme.txt", Size: 2, Link: "https://ad/3"},
	}, files)
}

func TestUnlockLink(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://ad/1", r.URL.Query().Get("link"))
		w.Write([]byte(`{"status":"success","data":{"link":"https://cdn/file.mkv","filename":"file.mkv","filesize":100}}`))
	})

	u, err := c.UnlockLink(context.Background(), "key", "https://ad/1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/file.mkv", u.Link)
	assert.Equal(t, int64(100), u.Filesize)
}
