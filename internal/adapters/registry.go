package adapters

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	"github.com/amaumene/gostremiomux/pkg/httputil"
	"github.com/amaumene/gostremiomux/pkg/logger"
	"github.com/amaumene/gostremiomux/pkg/ratelimiter"
)

// Deps are the shared resources handed to every preset factory.
type Deps struct {
	Config     *config.Config
	HTTPClient *http.Client
	Logger     logger.Logger
	Limiter    ratelimiter.RateLimiter
}

// Factory builds an adapter instance from its user configuration.
type Factory func(ac config.AdapterConfig, deps Deps) (Adapter, error)

type preset struct {
	factory   Factory
	rateLimit int64
	rateBurst int64
}

// Registry maps preset names to factories. Limiters are shared by every
// instance of a preset so concurrent requests respect upstream quotas.
type Registry struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     logger.Logger

	mu       sync.Mutex
	presets  map[string]preset
	limiters map[string]ratelimiter.RateLimiter
}

// NewRegistry returns a registry with the built-in presets.
func NewRegistry(cfg *config.Config, log logger.Logger) *Registry {
	if log == nil {
		log = logger.New()
	}
	r := &Registry{
		cfg:        cfg,
		httpClient: httputil.NewHTTPClient(constants.RequestTimeout),
		logger:     log,
		presets:    make(map[string]preset),
		limiters:   make(map[string]ratelimiter.RateLimiter),
	}

	r.RegisterLimited(constants.PresetStremio, NewStremio, 0, 0)
	r.RegisterLimited(constants.PresetTorrentio, NewTorrentio, constants.IndexerRateLimit, constants.IndexerRateBurst)
	r.RegisterLimited(constants.PresetApibay, NewApibay, constants.IndexerRateLimit, constants.IndexerRateBurst)
	r.RegisterLimited(constants.PresetEZTV, NewEZTV, constants.IndexerRateLimit, constants.IndexerRateBurst)
	r.RegisterLimited(constants.PresetTMDB, NewTMDB, constants.TMDBRateLimit, constants.TMDBRateBurst)
	r.RegisterLimited(constants.PresetTorrentsCSV, NewTorrentsCSV, constants.IndexerRateLimit, constants.IndexerRateBurst)
	return r
}

// SetHTTPClient replaces the client used by adapters built afterwards.
func (r *Registry) SetHTTPClient(c *http.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.httpClient = c
}

// Register adds an unthrottled preset.
func (r *Registry) Register(name string, f Factory) {
	r.RegisterLimited(name, f, 0, 0)
}

// RegisterLimited adds a preset whose instances share a token bucket of
// rateLimit calls per second. Zero disables throttling.
func (r *Registry) RegisterLimited(name string, f Factory, rateLimit, rateBurst int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name = strings.ToLower(name)
	r.presets[name] = preset{factory: f, rateLimit: rateLimit, rateBurst: rateBurst}
	delete(r.limiters, name)
}

// Known reports whether preset is registered and not disabled by the
// instance configuration.
func (r *Registry) Known(name string) bool {
	name = strings.ToLower(name)
	r.mu.Lock()
	_, ok := r.presets[name]
	r.mu.Unlock()
	return ok && !r.cfg.IsPresetDisabled(name)
}

// Presets lists the usable preset names, sorted.
func (r *Registry) Presets() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.presets))
	for name := range r.presets {
		names = append(names, name)
	}
	r.mu.Unlock()

	out := names[:0]
	for _, name := range names {
		if !r.cfg.IsPresetDisabled(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Build instantiates the adapter described by ac.
func (r *Registry) Build(ac config.AdapterConfig) (Adapter, error) {
	name := strings.ToLower(ac.Preset)
	if r.cfg.IsPresetDisabled(name) {
		return nil, fmt.Errorf("preset %q is disabled", name)
	}

	r.mu.Lock()
	p, ok := r.presets[name]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	limiter := r.limiterLocked(name, p)
	client := r.httpClient
	r.mu.Unlock()

	return p.factory(ac, Deps{
		Config:     r.cfg,
		HTTPClient: client,
		Logger:     r.logger,
		Limiter:    limiter,
	})
}

func (r *Registry) limiterLocked(name string, p preset) ratelimiter.RateLimiter {
	if l, ok := r.limiters[name]; ok {
		return l
	}
	var l ratelimiter.RateLimiter = ratelimiter.Unlimited{}
	if p.rateLimit > 0 {
		l = ratelimiter.NewTokenBucket(p.rateBurst, p.rateLimit)
	}
	r.limiters[name] = l
	return l
}
