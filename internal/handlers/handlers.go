// Package handlers implements the HTTP surface of the Stremio addon.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gostremiomux/internal/adapters"
	"github.com/amaumene/gostremiomux/internal/aggregator"
	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/debrid"
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
	"github.com/amaumene/gostremiomux/internal/pipeline"
	"github.com/amaumene/gostremiomux/pkg/logger"
)

// Handler handles HTTP requests for the Stremio addon.
type Handler struct {
	config     *config.Config
	registry   *adapters.Registry
	aggregator *aggregator.Aggregator
	resolver   *debrid.Resolver
	logger     logger.Logger
}

func New(cfg *config.Config, registry *adapters.Registry, agg *aggregator.Aggregator, resolver *debrid.Resolver, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		config:     cfg,
		registry:   registry,
		aggregator: agg,
		resolver:   resolver,
		logger:     log,
	}
}

// RegisterRoutes registers all HTTP routes for the Stremio addon.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.handleHome)

	r.GET("/configure", h.handleConfig)
	r.GET("/:configuration/configure", h.handleConfig)

	r.GET("/manifest.json", h.handleManifest)
	r.GET("/:configuration/manifest.json", h.handleManifestWithConfig)

	// extras arrive as an optional second path segment
	r.GET("/:configuration/catalog/:type/*rest", h.handleCatalog)
	r.GET("/:configuration/meta/:type/:id", h.handleMeta)
	r.GET("/:configuration/stream/:type/:id", h.handleStream)

	r.GET("/:configuration/playback/:hash/:fileIdx/*filename", h.handlePlayback)

	if h.config.StaticDir != "" {
		r.Static("/static", h.config.StaticDir)
	}
}

func (h *Handler) handleHome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to GoStremioMux! Visit /configure to configure the addon.")
}

// userConfig decodes, completes and validates the configuration segment.
// On failure it writes a 400 response and returns nil.
func (h *Handler) userConfig(c *gin.Context) *config.UserConfig {
	user, err := config.DecodeUserConfig(c.Param("configuration"))
	if err == nil {
		user.ApplyDefaults(h.config.DefaultAdapterTimeout.Std())
		err = user.Validate(config.Checks{
			KnownPreset:   h.registry.Known,
			CheckTemplate: pipeline.CheckTemplate,
			MaxAdapters:   h.config.MaxAdapters,
		})
	}
	if err != nil {
		h.logger.Warnf("[Handler] rejected configuration: %v", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil
	}
	return user
}

// statusFor maps request errors onto HTTP statuses. Aggregation failures
// are not client errors; callers answer them with an empty list.
func statusFor(err error) int {
	var se *apperrors.StreamError
	if !errors.As(err, &se) {
		return http.StatusInternalServerError
	}
	switch se.Type {
	case apperrors.ErrorTypeInvalidID, apperrors.ErrorTypeConfigurationInvalid:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnsupported:
		return http.StatusNotFound
	}
	return http.StatusOK
}
