package debrid

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gostremiomux/internal/cache"
	"github.com/amaumene/gostremiomux/pkg/alldebrid"
	"github.com/amaumene/gostremiomux/pkg/httputil"
	"github.com/amaumene/gostremiomux/pkg/realdebrid"
)

const (
	testHash  = "0123456789abcdef0123456789abcdef01234567"
	testToken = "abcdefghijklmnop1234"
)

type fakeProvider struct {
	mu       sync.Mutex
	ready    bool
	files    []File
	addErr   error
	unlocks  int
	magnets  []string
	unlockFn func(File) (string, error)
}

func (f *fakeProvider) AddMagnet(_ context.Context, _, magnet string) (Magnet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.magnets = append(f.magnets, magnet)
	if f.addErr != nil {
		return Magnet{}, f.addErr
	}
	return Magnet{ID: "m1", Ready: f.ready}, nil
}

func (f *fakeProvider) MagnetFiles(context.Context, string, string) ([]File, error) {
	return f.files, nil
}

func (f *fakeProvider) Unlock(_ context.Context, _ string, file File) (string, error) {
	f.mu.Lock()
	f.unlocks++
	f.mu.Unlock()
	if f.unlockFn != nil {
		return f.unlockFn(file)
	}
	return "https://cdn/" + file.Path, nil
}

func newTestResolver(p Provider) *Resolver {
	rc := cache.NewResultCache(cache.NewLRU(100), nil)
	return NewResolver(map[string]Provider{"alldebrid": p}, rc, time.Hour, nil)
}

var movieFiles = []File{
	{Index: 0, Path: "Movie.2020/sample.mkv", Size: 10},
	{Index: 1, Path: "Movie.2020/Movie.2020.1080p.mkv", Size: 2000},
	{Index: 2, Path: "Movie.2020/Movie.2020.nfo", Size: 5000},
}

var seasonFiles = []File{
	{Index: 0, Path: "Show.S01/Show.S01E01.720p.mkv", Size: 100},
	{Index: 1, Path: "Show.S01/Show.S01E02.720p.mkv", Size: 110},
	{Index: 2, Path: "Show.S01/Show.S01E03.720p.mkv", Size: 90},
}

func TestSelectFile(t *testing.T) {
	tests := []struct {
		name  string
		files []File
		loc   Locator
		want  string
		found bool
	}{
		{"explicit index", movieFiles, Locator{FileIdx: 0}, "Movie.2020/sample.mkv", true},
		{"filename", movieFiles, Locator{FileIdx: -1, Filename: "MOVIE.2020.1080P.MKV"}, "Movie.2020/Movie.2020.1080p.mkv", true},
		{"largest video", movieFiles, Locator{FileIdx: -1}, "Movie.2020/Movie.2020.1080p.mkv", true},
		{"episode", seasonFiles, Locator{FileIdx: -1, Season: 1, Episode: 3}, "Show.S01/Show.S01E03.720p.mkv", true},
		{"missing episode", seasonFiles, Locator{FileIdx: -1, Season: 1, Episode: 9}, "", false},
		{"stale index falls through", seasonFiles, Locator{FileIdx: 7, Season: 1, Episode: 2}, "Show.S01/Show.S01E02.720p.mkv", true},
		{"no video", []File{{Index: 0, Path: "a.txt", Size: 1}}, Locator{FileIdx: -1}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := SelectFile(tt.files, tt.loc)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, f.Path)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{&alldebrid.APIError{Code: "AUTH_BAD_APIKEY"}, KindUnauthorized},
		{&alldebrid.APIError{Code: "MAGNET_TOO_MANY_ACTIVE"}, KindQuotaExceeded},
		{&alldebrid.APIError{Code: "SOMETHING_NEW", StatusCode: http.StatusForbidden}, KindUnknown},
		{&alldebrid.APIError{StatusCode: http.StatusForbidden}, KindForbidden},
		{fmt.Errorf("wrapped: %w", &realdebrid.APIError{Code: 35}), KindLegallyUnavailable},
		{&realdebrid.APIError{Code: 8, StatusCode: http.StatusUnauthorized}, KindUnauthorized},
		{&realdebrid.APIError{Code: 999}, KindUnknown},
		{&httputil.StatusError{StatusCode: http.StatusTooManyRequests}, KindQuotaExceeded},
		{&httputil.StatusError{StatusCode: http.StatusUnavailableForLegalReasons}, KindLegallyUnavailable},
		{&httputil.StatusError{StatusCode: http.StatusBadGateway}, KindUnknown},
		{&contentError{status: "dead"}, KindUnsupported},
		{errNoMatchingFile, KindNoMatchingFile},
		{errors.New("connection reset"), KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "%v", tt.err)
	}
	assert.Equal(t, Kind(""), Classify(nil))
}

func TestProviderCodesMapToKnownKinds(t *testing.T) {
	for code, kind := range allDebridCodes {
		assert.Contains(t, Kinds, kind, "alldebrid code %s", code)
		assert.Equal(t, kind, Classify(&alldebrid.APIError{Code: code}), "alldebrid code %s", code)
	}
	for code, kind := range realDebridCodes {
		assert.Contains(t, Kinds, kind, "realdebrid code %d", code)
		assert.Equal(t, kind, Classify(&realdebrid.APIError{Code: code}), "realdebrid code %d", code)
	}
	for status, kind := range statusKinds {
		assert.Contains(t, Kinds, kind, "status %d", status)
	}
	assert.Len(t, Kinds, 7)
}

func TestResolveCachesResolvedURL(t *testing.T) {
	p := &fakeProvider{ready: true, files: movieFiles}
	r := newTestResolver(p)
	loc := Locator{InfoHash: testHash, FileIdx: -1, Sources: []string{"tracker:udp://tr.example:80", "dht:" + testHash}}

	res := r.Resolve(context.Background(), StoreAuth{Provider: "alldebrid", Token: testToken}, loc)
	assert.Equal(t, Resolved("https://cdn/Movie.2020/Movie.2020.1080p.mkv"), res)
	assert.Equal(t, []string{"magnet:?xt=urn:btih:" + testHash + "&tr=udp%3A%2F%2Ftr.example%3A80"}, p.magnets)

	res = r.Resolve(context.Background(), StoreAuth{Provider: "alldebrid", Token: testToken}, loc)
	assert.Equal(t, StateResolved, res.State)
	assert.Equal(t, 1, p.unlocks)
}

func TestResolvePendingIsNotCached(t *testing.T) {
	p := &fakeProvider{files: movieFiles}
	r := newTestResolver(p)
	auth := StoreAuth{Provider: "alldebrid", Token: testToken}
	loc := Locator{InfoHash: testHash, FileIdx: -1}

	res := r.Resolve(context.Background(), auth, loc)
	assert.Equal(t, StatePending, res.State)
	assert.Positive(t, res.RetryAfter)

	p.ready = true
	res = r.Resolve(context.Background(), auth, loc)
	assert.Equal(t, StateResolved, res.State)
}

func TestResolveFailures(t *testing.T) {
	auth := StoreAuth{Provider: "alldebrid", Token: testToken}
	loc := Locator{InfoHash: testHash, FileIdx: -1}

	t.Run("provider error", func(t *testing.T) {
		p := &fakeProvider{addErr: &alldebrid.APIError{Code: "MAGNET_DMCA"}}
		assert.Equal(t, Failed(KindLegallyUnavailable), newTestResolver(p).Resolve(context.Background(), auth, loc))
	})

	t.Run("failure is not cached", func(t *testing.T) {
		p := &fakeProvider{addErr: &alldebrid.APIError{Code: "MAGNET_TOO_MANY_ACTIVE"}}
		r := newTestResolver(p)
		assert.Equal(t, Failed(KindQuotaExceeded), r.Resolve(context.Background(), auth, loc))

		p.addErr = nil
		p.ready, p.files = true, movieFiles
		assert.Equal(t, StateResolved, r.Resolve(context.Background(), auth, loc).State)
	})

	t.Run("no matching file", func(t *testing.T) {
		p := &fakeProvider{ready: true, files: seasonFiles}
		res := newTestResolver(p).Resolve(context.Background(), auth, Locator{InfoHash: testHash, FileIdx: -1, Season: 2, Episode: 1})
		assert.Equal(t, Failed(KindNoMatchingFile), res)
	})

	t.Run("unlock pending", func(t *testing.T) {
		p := &fakeProvider{ready: true, files: movieFiles, unlockFn: func(File) (string, error) { return "", errPending }}
		assert.Equal(t, StatePending, newTestResolver(p).Resolve(context.Background(), auth, loc).State)
	})

	t.Run("bad token", func(t *testing.T) {
		p := &fakeProvider{ready: true, files: movieFiles}
		res := newTestResolver(p).Resolve(context.Background(), StoreAuth{Provider: "alldebrid", Token: "short"}, loc)
		assert.Equal(t, Failed(KindUnauthorized), res)
		assert.Empty(t, p.magnets)
	})

	t.Run("unknown provider", func(t *testing.T) {
		res := newTestResolver(&fakeProvider{}).Resolve(context.Background(), StoreAuth{Provider: "premiumize", Token: testToken}, loc)
		assert.Equal(t, Failed(KindUnsupported), res)
	})

	t.Run("bad hash", func(t *testing.T) {
		res := newTestResolver(&fakeProvider{}).Resolve(context.Background(), auth, Locator{InfoHash: "xyz", FileIdx: -1})
		assert.Equal(t, Failed(KindUnsupported), res)
	})
}

func TestRealDebridProvider(t *testing.T) {
	var selected bool
	mux := http.NewServeMux()
	mux.HandleFunc("/torrents/addMagnet", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"T1"}`))
	})
	mux.HandleFunc("/torrents/selectFiles/T1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.FormValue("files"))
		selected = true
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/torrents/info/T1", func(w http.ResponseWriter, r *http.Request) {
		if !selected {
			w.Write([]byte(`{"id":"T1","status":"waiting_files_selection","files":[{"id":1,"path":"/Movie.1080p.mkv","bytes":100}]}`))
			return
		}
		w.Write([]byte(`{"id":"T1","status":"downloaded","files":[{"id":1,"path":"/Movie.1080p.mkv","bytes":100,"selected":1}],"links":["https://rd/1"]}`))
	})
	mux.HandleFunc("/unrestrict/link", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"download":"https://cdn/Movie.1080p.mkv"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := realdebrid.NewClient(srv.Client(), nil)
	client.SetBaseURL(srv.URL)
	rc := cache.NewResultCache(cache.NewLRU(10), nil)
	r := NewResolver(map[string]Provider{"realdebrid": NewRealDebrid(client)}, rc, time.Hour, nil)

	res := r.Resolve(context.Background(), StoreAuth{Provider: "realdebrid", Token: "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"}, Locator{InfoHash: testHash, FileIdx: 0})
	require.Equal(t, StateResolved, res.State)
	assert.Equal(t, "https://cdn/Movie.1080p.mkv", res.URL)
}
