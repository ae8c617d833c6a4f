// Package aggregator fans a request out to every configured adapter and
// merges what comes back.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/amaumene/gostremiomux/internal/adapters"
	"github.com/amaumene/gostremiomux/internal/cache"
	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
	"github.com/amaumene/gostremiomux/internal/models"
	"github.com/amaumene/gostremiomux/pkg/logger"
)

type Aggregator struct {
	cfg      *config.Config
	registry *adapters.Registry
	cache    *cache.ResultCache
	logger   logger.Logger
}

func New(cfg *config.Config, registry *adapters.Registry, rc *cache.ResultCache, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.New()
	}
	return &Aggregator{cfg: cfg, registry: registry, cache: rc, logger: log}
}

// slot collects one adapter's outcome. Each goroutine writes only its own slot.
type slot struct {
	adapter    config.AdapterConfig
	candidates []models.Candidate
	err        error
}

// GetStreams returns the merged candidates of every enabled adapter. Results
// keep configuration order between adapters and source order within one.
// Partial failures are logged and dropped; if nothing succeeded the error is
// NO_SOURCES_AVAILABLE.
func (a *Aggregator) GetStreams(ctx context.Context, mediaType, mediaID string, user *config.UserConfig, clientIP string) ([]models.Candidate, error) {
	req, err := adapters.ParseStreamRequest(mediaType, mediaID, clientIP)
	if err != nil {
		return nil, err
	}

	enabled := user.EnabledAdapters()
	if len(enabled) == 0 {
		return nil, apperrors.NewConfigurationError("no adapter is enabled", nil)
	}

	key := cache.Fingerprint("streams", mediaType, mediaID, adaptersFingerprint(enabled))
	return cache.GetOrComputeTTL(ctx, a.cache, key, func(ctx context.Context) ([]models.Candidate, time.Duration, error) {
		candidates, err := a.collect(ctx, req, enabled)
		if err != nil {
			return nil, 0, err
		}
		return candidates, a.streamTTL(candidates), nil
	})
}

func (a *Aggregator) collect(ctx context.Context, req adapters.StreamRequest, enabled []config.AdapterConfig) ([]models.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.OuterDeadline(a.longestTimeout(enabled)))
	defer cancel()

	start := time.Now()
	slots := make([]slot, len(enabled))

	var wg conc.WaitGroup
	for i := range enabled {
		i := i
		slots[i].adapter = enabled[i]
		wg.Go(func() {
			slots[i].candidates, slots[i].err = a.streamsFrom(ctx, enabled[i], req)
		})
	}
	wg.Wait()

	var (
		merged    []models.Candidate
		failures  []error
		succeeded int
	)
	for _, s := range slots {
		if s.err != nil {
			if errors.Is(s.err, adapters.ErrUnsupported) {
				a.logger.Debugf("[Aggregator] adapter %s does not serve streams", s.adapter.ID)
			} else {
				a.logger.Warnf("[Aggregator] adapter %s failed: %v", s.adapter.ID, s.err)
			}
			failures = append(failures, apperrors.NewAdapterError(s.adapter.ID, s.err))
			continue
		}
		succeeded++
		for _, c := range s.candidates {
			c.AdapterID = s.adapter.ID
			c.AdapterName = s.adapter.DisplayName()
			c.Priority = s.adapter.Priority
			c.Index = len(merged)
			merged = append(merged, c)
		}
	}

	if succeeded == 0 {
		return nil, apperrors.NewStreamError(apperrors.ErrorTypeNoSourcesAvailable,
			fmt.Sprintf("all %d adapters failed for %s", len(enabled), req.ID), errors.Join(failures...))
	}

	a.logger.Infof("[Aggregator] %d candidates from %d/%d adapters for %s in %v",
		len(merged), succeeded, len(enabled), req.ID, time.Since(start).Round(time.Millisecond))
	return merged, nil
}

func (a *Aggregator) streamsFrom(ctx context.Context, ac config.AdapterConfig, req adapters.StreamRequest) ([]models.Candidate, error) {
	adapter, err := a.registry.Build(ac)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeoutFor(ac))
	defer cancel()

	raws, err := invoke(ctx, "adapter "+ac.ID, func(ctx context.Context) ([]adapters.RawStream, error) {
		return adapter.Streams(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return adapters.Normalize(raws), nil
}

// streamTTL keeps empty and URL-bearing results briefly: upstream URLs are
// often signed with a short expiry.
func (a *Aggregator) streamTTL(candidates []models.Candidate) time.Duration {
	if len(candidates) == 0 {
		return a.cfg.ShortStreamTTL.Std()
	}
	for _, c := range candidates {
		if c.IsEphemeral() {
			return a.cfg.ShortStreamTTL.Std()
		}
	}
	return a.cfg.StreamTTL.Std()
}

func (a *Aggregator) timeoutFor(ac config.AdapterConfig) time.Duration {
	if t := ac.Timeout.Std(); t > 0 {
		return t
	}
	if t := a.cfg.DefaultAdapterTimeout.Std(); t > 0 {
		return t
	}
	return constants.DefaultAdapterTimeout
}

func (a *Aggregator) longestTimeout(list []config.AdapterConfig) time.Duration {
	var longest time.Duration
	for _, ac := range list {
		if t := a.timeoutFor(ac); t > longest {
			longest = t
		}
	}
	return longest
}

// adaptersFingerprint covers everything about the adapter set that can change
// upstream results.
func adaptersFingerprint(list []config.AdapterConfig) string {
	var b strings.Builder
	for _, ac := range list {
		b.WriteString(ac.ID)
		b.WriteByte('|')
		b.WriteString(ac.Preset)
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(ac.Priority))
		b.WriteByte('|')
		b.WriteString(ac.DisplayName())

		keys := make([]string, 0, len(ac.Options))
		for k := range ac.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString("|" + k + "=" + ac.Options[k])
		}
		b.WriteByte(';')
	}
	return cache.Fingerprint("adapters", b.String())
}

// byPriority returns the enabled adapters, highest priority first.
func byPriority(user *config.UserConfig) []config.AdapterConfig {
	list := user.EnabledAdapters()
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority > list[j].Priority
	})
	return list
}
