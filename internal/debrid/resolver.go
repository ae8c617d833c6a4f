package debrid

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amaumene/gostremiomux/internal/cache"
	"github.com/amaumene/gostremiomux/internal/constants"
	"github.com/amaumene/gostremiomux/pkg/logger"
	"github.com/amaumene/gostremiomux/pkg/security"
)

// Resolver resolves locators through the user's store. Resolved URLs are
// cached; pending and failed outcomes are shared with concurrent callers of
// the same key but never stored.
type Resolver struct {
	providers  map[string]Provider
	cache      *cache.ResultCache
	ttl        time.Duration
	timeout    time.Duration
	retryAfter time.Duration
	validator  *security.APIKeyValidator
	logger     logger.Logger
}

func NewResolver(providers map[string]Provider, rc *cache.ResultCache, ttl time.Duration, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	return &Resolver{
		providers:  providers,
		cache:      rc,
		ttl:        ttl,
		timeout:    constants.ResolveTimeout,
		retryAfter: constants.PendingRetryAfter,
		validator:  security.NewAPIKeyValidator(),
		logger:     log,
	}
}

// Resolve never returns an error: every failure is reported as a failed
// Result with its Kind.
func (r *Resolver) Resolve(ctx context.Context, auth StoreAuth, loc Locator) Result {
	provider, ok := r.providers[auth.Provider]
	if !ok {
		r.logger.Warnf("[Debrid] unknown store provider %q", auth.Provider)
		return Failed(KindUnsupported)
	}
	token := r.validator.SanitizeAPIKey(auth.Token)
	if !r.validator.IsValidStoreToken(auth.Provider, token) {
		r.logger.Warnf("[Debrid] invalid %s token (key: %s)", auth.Provider, r.validator.MaskAPIKey(token))
		return Failed(KindUnauthorized)
	}
	hash := strings.ToLower(loc.InfoHash)
	if !isInfoHash(hash) {
		return Failed(KindUnsupported)
	}

	key := cache.Fingerprint("resolve", auth.Provider, token, hash,
		strconv.Itoa(loc.FileIdx), loc.Filename, strconv.Itoa(loc.Season), strconv.Itoa(loc.Episode))

	res, err := cache.GetOrComputeTTL(ctx, r.cache, key, func(ctx context.Context) (Result, time.Duration, error) {
		res := r.resolve(ctx, provider, token, hash, loc)
		if res.State == StateResolved {
			return res, r.ttl, nil
		}
		return res, 0, nil
	})
	if err != nil {
		r.logger.Warnf("[Debrid] resolution of %s abandoned: %v", hash, err)
		return Failed(KindUnknown)
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context, p Provider, token, hash string, loc Locator) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	magnet, err := p.AddMagnet(ctx, token, magnetURI(hash, loc.Sources))
	if err != nil {
		return r.fail(hash, "add magnet", err)
	}
	if !magnet.Ready {
		r.logger.Debugf("[Debrid] %s is not cached yet", hash)
		return Pending(r.retryAfter)
	}

	files, err := p.MagnetFiles(ctx, token, magnet.ID)
	if err != nil {
		return r.fail(hash, "list files", err)
	}
	file, ok := SelectFile(files, loc)
	if !ok {
		return r.fail(hash, "select file", errNoMatchingFile)
	}

	link, err := p.Unlock(ctx, token, file)
	if errors.Is(err, errPending) {
		return Pending(r.retryAfter)
	}
	if err != nil {
		return r.fail(hash, "unlock", err)
	}

	r.logger.Debugf("[Debrid] resolved %s to %s", hash, file.Path)
	return Resolved(link)
}

func (r *Resolver) fail(hash, step string, err error) Result {
	kind := Classify(err)
	r.logger.Warnf("[Debrid] %s failed for %s (%s): %v", step, hash, kind, err)
	return Failed(kind)
}

// magnetURI builds a magnet link carrying the tracker sources of a stream.
func magnetURI(hash string, sources []string) string {
	var b strings.Builder
	b.WriteString("magnet:?xt=urn:btih:")
	b.WriteString(hash)
	for _, s := range sources {
		if tracker, ok := strings.CutPrefix(s, "tracker:"); ok {
			b.WriteString("&tr=")
			b.WriteString(url.QueryEscape(tracker))
		}
	}
	return b.String()
}

func isInfoHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
