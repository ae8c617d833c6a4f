package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gostremiomux/internal/aggregator"
)

// handleManifest serves the unconfigured manifest, which only asks Stremio
// to open the configuration page.
func (h *Handler) handleManifest(c *gin.Context) {
	manifest := aggregator.BaseManifest()
	manifest.BehaviorHints.ConfigurationRequired = true
	c.JSON(http.StatusOK, manifest)
}

func (h *Handler) handleManifestWithConfig(c *gin.Context) {
	user := h.userConfig(c)
	if user == nil {
		return
	}

	manifest, err := h.aggregator.Manifest(c.Request.Context(), user)
	if err != nil {
		h.logger.Errorf("[ManifestHandler] failed to build manifest: %v", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, manifest)
}
