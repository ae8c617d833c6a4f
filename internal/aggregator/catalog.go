package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc"

	"github.com/amaumene/gostremiomux/internal/adapters"
	"github.com/amaumene/gostremiomux/internal/cache"
	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
	"github.com/amaumene/gostremiomux/internal/extras"
	"github.com/amaumene/gostremiomux/internal/models"
)

// catalogSeparator joins the adapter id and the upstream catalog id.
const catalogSeparator = "."

// BaseManifest describes the addon itself, before adapter catalogs are merged.
func BaseManifest() models.Manifest {
	return models.Manifest{
		ID:          constants.AddonID,
		Version:     constants.AddonVersion,
		Name:        constants.AddonName,
		Description: constants.AddonDescription,
		Types:       []string{"movie", "series"},
		Resources:   []string{"catalog", "meta", "stream"},
		Catalogs:    []models.Catalog{},
		BehaviorHints: models.BehaviorHints{
			Configurable: true,
		},
	}
}

// Manifest merges the catalogs of every enabled adapter. Catalog ids are
// prefixed with "<adapterID>." so Catalog can route them back. Adapters
// whose manifest fails are left out.
func (a *Aggregator) Manifest(ctx context.Context, user *config.UserConfig) (*models.Manifest, error) {
	enabled := user.EnabledAdapters()
	manifests := make([]*models.Manifest, len(enabled))

	var wg conc.WaitGroup
	for i := range enabled {
		i := i
		wg.Go(func() {
			m, err := a.adapterManifest(ctx, enabled[i])
			if err != nil {
				a.logger.Warnf("[Aggregator] manifest of %s failed: %v", enabled[i].ID, err)
				return
			}
			manifests[i] = m
		})
	}
	wg.Wait()

	merged := BaseManifest()
	prefixes := map[string]bool{"tt": true}
	anyID := false
	for i, m := range manifests {
		if m == nil {
			continue
		}
		ac := enabled[i]
		for _, c := range m.Catalogs {
			c.ID = ac.ID + catalogSeparator + c.ID
			if c.Name != "" {
				c.Name = ac.DisplayName() + " - " + c.Name
			} else {
				c.Name = ac.DisplayName()
			}
			merged.Catalogs = append(merged.Catalogs, c)
		}
		if len(m.IDPrefixes) == 0 {
			anyID = true
		}
		for _, p := range m.IDPrefixes {
			if !prefixes[p] {
				prefixes[p] = true
				merged.IDPrefixes = append(merged.IDPrefixes, p)
			}
		}
	}

	if anyID {
		merged.IDPrefixes = nil
	} else {
		merged.IDPrefixes = append([]string{"tt"}, merged.IDPrefixes...)
	}
	return &merged, nil
}

func (a *Aggregator) adapterManifest(ctx context.Context, ac config.AdapterConfig) (*models.Manifest, error) {
	key := cache.Fingerprint("manifest", adaptersFingerprint([]config.AdapterConfig{ac}))
	return cache.GetOrCompute(ctx, a.cache, key, a.cfg.MetaTTL.Std(), func(ctx context.Context) (*models.Manifest, error) {
		adapter, err := a.registry.Build(ac)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, a.timeoutFor(ac))
		defer cancel()
		return invoke(ctx, "manifest "+ac.ID, adapter.Manifest)
	})
}

// Catalog routes a prefixed catalog id to its adapter. rawExtras is decoded
// fail-soft: malformed input behaves like no extras.
func (a *Aggregator) Catalog(ctx context.Context, user *config.UserConfig, mediaType, catalogID, rawExtras string) ([]models.Meta, error) {
	adapterID, upstreamID, ok := strings.Cut(catalogID, catalogSeparator)
	if !ok || adapterID == "" || upstreamID == "" {
		return nil, apperrors.NewInvalidIDError(catalogID)
	}

	ac, found := user.Adapter(adapterID)
	if !found || !ac.IsEnabled() {
		return nil, apperrors.NewInvalidIDError(catalogID)
	}

	ex := extras.Decode(rawExtras)
	key := cache.Fingerprint("catalog", adaptersFingerprint([]config.AdapterConfig{ac}), mediaType, upstreamID, extras.Encode(ex))

	return cache.GetOrCompute(ctx, a.cache, key, a.cfg.MetaTTL.Std(), func(ctx context.Context) ([]models.Meta, error) {
		adapter, err := a.registry.Build(ac)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, a.timeoutFor(ac))
		defer cancel()

		metas, err := invoke(ctx, "catalog "+ac.ID, func(ctx context.Context) ([]models.Meta, error) {
			return adapter.Catalog(ctx, mediaType, upstreamID, ex)
		})
		if err != nil {
			return nil, apperrors.NewAdapterError(ac.ID, err)
		}
		if metas == nil {
			metas = []models.Meta{}
		}
		return metas, nil
	})
}

// Meta asks adapters in priority order and returns the first answer.
func (a *Aggregator) Meta(ctx context.Context, user *config.UserConfig, mediaType, id string) (*models.Meta, error) {
	ordered := byPriority(user)
	key := cache.Fingerprint("meta", adaptersFingerprint(ordered), mediaType, id)

	return cache.GetOrCompute(ctx, a.cache, key, a.cfg.MetaTTL.Std(), func(ctx context.Context) (*models.Meta, error) {
		var failures []error
		for _, ac := range ordered {
			meta, err := a.metaFrom(ctx, ac, mediaType, id)
			if err == nil {
				return meta, nil
			}
			if !errors.Is(err, adapters.ErrUnsupported) {
				a.logger.Debugf("[Aggregator] meta from %s failed: %v", ac.ID, err)
			}
			failures = append(failures, apperrors.NewAdapterError(ac.ID, err))
			if ctx.Err() != nil {
				break
			}
		}
		return nil, apperrors.NewStreamError(apperrors.ErrorTypeNoSourcesAvailable,
			fmt.Sprintf("no adapter returned meta for %s", id), errors.Join(failures...))
	})
}

func (a *Aggregator) metaFrom(ctx context.Context, ac config.AdapterConfig, mediaType, id string) (*models.Meta, error) {
	adapter, err := a.registry.Build(ac)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeoutFor(ac))
	defer cancel()

	return invoke(ctx, "meta "+ac.ID, func(ctx context.Context) (*models.Meta, error) {
		return adapter.Meta(ctx, mediaType, id)
	})
}
