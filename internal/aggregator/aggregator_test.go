package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gostremiomux/internal/adapters"
	"github.com/amaumene/gostremiomux/internal/cache"
	"github.com/amaumene/gostremiomux/internal/config"
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
	"github.com/amaumene/gostremiomux/internal/extras"
	"github.com/amaumene/gostremiomux/internal/models"
	"github.com/amaumene/gostremiomux/pkg/logger"
)

type fakeAdapter struct {
	id       string
	calls    *int32
	streams  func(ctx context.Context, req adapters.StreamRequest) ([]adapters.RawStream, error)
	catalogs []models.Catalog
	metas    []models.Meta
	meta     *models.Meta
	lastEx   *extras.Extras
}

func (f *fakeAdapter) ID() string { return f.id }

func (f *fakeAdapter) Manifest(context.Context) (*models.Manifest, error) {
	return &models.Manifest{ID: f.id, Catalogs: f.catalogs, IDPrefixes: []string{"tt"}}, nil
}

func (f *fakeAdapter) Catalog(_ context.Context, _, _ string, ex extras.Extras) ([]models.Meta, error) {
	if f.lastEx != nil {
		*f.lastEx = ex
	}
	return f.metas, nil
}

func (f *fakeAdapter) Meta(context.Context, string, string) (*models.Meta, error) {
	if f.meta == nil {
		return nil, adapters.ErrUnsupported
	}
	return f.meta, nil
}

func (f *fakeAdapter) Streams(ctx context.Context, req adapters.StreamRequest) ([]adapters.RawStream, error) {
	if f.calls != nil {
		atomic.AddInt32(f.calls, 1)
	}
	if f.streams == nil {
		return nil, adapters.ErrUnsupported
	}
	return f.streams(ctx, req)
}

func returning(raws ...adapters.RawStream) func(context.Context, adapters.StreamRequest) ([]adapters.RawStream, error) {
	return func(context.Context, adapters.StreamRequest) ([]adapters.RawStream, error) {
		return raws, nil
	}
}

func failing(msg string) func(context.Context, adapters.StreamRequest) ([]adapters.RawStream, error) {
	return func(context.Context, adapters.StreamRequest) ([]adapters.RawStream, error) {
		return nil, errors.New(msg)
	}
}

type harness struct {
	agg   *Aggregator
	fakes map[string]*fakeAdapter
}

func newHarness(t *testing.T, fakes ...*fakeAdapter) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.AggregationOverhead = config.Duration(100 * time.Millisecond)

	registry := adapters.NewRegistry(cfg, logger.Discard())
	h := &harness{fakes: make(map[string]*fakeAdapter)}
	for _, f := range fakes {
		f := f
		h.fakes[f.id] = f
		registry.Register("fake-"+f.id, func(ac config.AdapterConfig, deps adapters.Deps) (adapters.Adapter, error) {
			return f, nil
		})
	}

	rc := cache.NewResultCache(cache.NewLRU(100), logger.Discard())
	h.agg = New(cfg, registry, rc, logger.Discard())
	return h
}

func userFor(timeout time.Duration, ids ...string) *config.UserConfig {
	u := &config.UserConfig{}
	for _, id := range ids {
		u.Adapters = append(u.Adapters, config.AdapterConfig{ID: id, Preset: "fake-" + id, Name: "Name " + id})
	}
	u.ApplyDefaults(timeout)
	return u
}

func hash(s string) adapters.RawStream {
	return adapters.RawStream{Title: "Movie.2020." + s + ".1080p", InfoHash: s}
}

func TestGetStreamsMergesInConfigurationOrder(t *testing.T) {
	h := newHarness(t,
		&fakeAdapter{id: "a", streams: func(context.Context, adapters.StreamRequest) ([]adapters.RawStream, error) {
			time.Sleep(30 * time.Millisecond)
			return []adapters.RawStream{hash("a1"), hash("a2")}, nil
		}},
		&fakeAdapter{id: "b", streams: returning(hash("b1"))},
	)

	got, err := h.agg.GetStreams(context.Background(), "movie", "tt0111161", userFor(time.Second, "a", "b"), "")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"a1", "a2", "b1"}, []string{got[0].InfoHash, got[1].InfoHash, got[2].InfoHash})
	for i, c := range got {
		assert.Equal(t, i, c.Index)
	}
	assert.Equal(t, "a", got[0].AdapterID)
	assert.Equal(t, "Name a", got[0].AdapterName)
	assert.Equal(t, 2, got[0].Priority)
	assert.Equal(t, 1, got[2].Priority)
}

func TestGetStreamsAbandonsUnresponsiveAdapter(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	h := newHarness(t,
		&fakeAdapter{id: "stuck", streams: func(context.Context, adapters.StreamRequest) ([]adapters.RawStream, error) {
			<-block
			return []adapters.RawStream{hash("late")}, nil
		}},
		&fakeAdapter{id: "ok", streams: returning(hash("ok1"))},
	)

	start := time.Now()
	got, err := h.agg.GetStreams(context.Background(), "movie", "tt0111161", userFor(50*time.Millisecond, "stuck", "ok"), "")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, got, 1)
	assert.Equal(t, "ok1", got[0].InfoHash)
}

func TestGetStreamsAllFailed(t *testing.T) {
	h := newHarness(t,
		&fakeAdapter{id: "x", streams: failing("boom")},
		&fakeAdapter{id: "y", streams: func(context.Context, adapters.StreamRequest) ([]adapters.RawStream, error) {
			panic("adapter bug")
		}},
	)

	_, err := h.agg.GetStreams(context.Background(), "movie", "tt0111161", userFor(time.Second, "x", "y"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNoSourcesAvailable))
	assert.Contains(t, err.Error(), "boom")
	assert.Contains(t, err.Error(), "panicked")
}

func TestGetStreamsPartialFailureKeepsResults(t *testing.T) {
	h := newHarness(t,
		&fakeAdapter{id: "x", streams: failing("boom")},
		&fakeAdapter{id: "y", streams: returning()},
	)

	got, err := h.agg.GetStreams(context.Background(), "movie", "tt0111161", userFor(time.Second, "x", "y"), "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetStreamsCachesResults(t *testing.T) {
	var calls int32
	h := newHarness(t, &fakeAdapter{id: "a", calls: &calls, streams: returning(hash("a1"))})
	user := userFor(time.Second, "a")

	for i := 0; i < 3; i++ {
		got, err := h.agg.GetStreams(context.Background(), "movie", "tt0111161", user, "")
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err := h.agg.GetStreams(context.Background(), "movie", "tt0068646", user, "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetStreamsDoesNotCacheFailures(t *testing.T) {
	var calls int32
	h := newHarness(t, &fakeAdapter{id: "a", calls: &calls, streams: failing("down")})
	user := userFor(time.Second, "a")

	for i := 0; i < 2; i++ {
		_, err := h.agg.GetStreams(context.Background(), "movie", "tt0111161", user, "")
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetStreamsRejectsBadInput(t *testing.T) {
	h := newHarness(t, &fakeAdapter{id: "a", streams: returning()})

	_, err := h.agg.GetStreams(context.Background(), "series", "tt1:x:y", userFor(time.Second, "a"), "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidID))

	_, err = h.agg.GetStreams(context.Background(), "movie", "tt1", &config.UserConfig{}, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfigurationInvalid))
}

func TestStreamTTL(t *testing.T) {
	h := newHarness(t)
	cfg := h.agg.cfg

	assert.Equal(t, cfg.ShortStreamTTL.Std(), h.agg.streamTTL(nil))
	assert.Equal(t, cfg.StreamTTL.Std(), h.agg.streamTTL([]models.Candidate{{InfoHash: "a"}}))
	assert.Equal(t, cfg.ShortStreamTTL.Std(), h.agg.streamTTL([]models.Candidate{{InfoHash: "a"}, {URL: "https://x"}}))
}

func TestManifestAndCatalogRouting(t *testing.T) {
	var seen extras.Extras
	h := newHarness(t,
		&fakeAdapter{id: "one", catalogs: []models.Catalog{{Type: "movie", ID: "top", Name: "Top"}}},
		&fakeAdapter{id: "two", catalogs: []models.Catalog{{Type: "series", ID: "new"}},
			metas: []models.Meta{{ID: "tt1", Name: "From two"}}, lastEx: &seen},
	)
	user := userFor(time.Second, "one", "two")

	m, err := h.agg.Manifest(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, m.Catalogs, 2)
	assert.Equal(t, "one.top", m.Catalogs[0].ID)
	assert.Equal(t, "Name one - Top", m.Catalogs[0].Name)
	assert.Equal(t, "two.new", m.Catalogs[1].ID)
	assert.Equal(t, []string{"tt"}, m.IDPrefixes)

	metas, err := h.agg.Catalog(context.Background(), user, "series", "two.new", "genre=Drama&skip=20")
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, "Drama", seen.Genre)
	assert.Equal(t, 20, seen.SkipValue())

	_, err = h.agg.Catalog(context.Background(), user, "series", "two.new", "garbage")
	require.NoError(t, err)
	assert.True(t, seen.IsEmpty())

	_, err = h.agg.Catalog(context.Background(), user, "series", "three.new", "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidID))
}

func TestMetaUsesPriorityOrder(t *testing.T) {
	h := newHarness(t,
		&fakeAdapter{id: "low", meta: &models.Meta{ID: "tt1", Name: "low"}},
		&fakeAdapter{id: "none"},
		&fakeAdapter{id: "high", meta: &models.Meta{ID: "tt1", Name: "high"}},
	)
	user := userFor(time.Second, "low", "none", "high")
	user.Adapters[0].Priority = 1
	user.Adapters[1].Priority = 50
	user.Adapters[2].Priority = 10

	meta, err := h.agg.Meta(context.Background(), user, "movie", "tt1")
	require.NoError(t, err)
	assert.Equal(t, "high", meta.Name)

	h2 := newHarness(t, &fakeAdapter{id: "none"})
	_, err = h2.agg.Meta(context.Background(), userFor(time.Second, "none"), "movie", "tt1")
	assert.True(t, errors.Is(err, apperrors.ErrNoSourcesAvailable))
}
