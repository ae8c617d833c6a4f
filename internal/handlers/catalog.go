package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gostremiomux/internal/models"
)

func (h *Handler) handleCatalog(c *gin.Context) {
	user := h.userConfig(c)
	if user == nil {
		return
	}

	rest := strings.TrimSuffix(strings.TrimPrefix(c.Param("rest"), "/"), ".json")
	catalogID, rawExtras, _ := strings.Cut(rest, "/")
	mediaType := c.Param("type")

	h.logger.Debugf("[CatalogHandler] processing catalog request - type: %s, id: %s", mediaType, catalogID)

	metas, err := h.aggregator.Catalog(c.Request.Context(), user, mediaType, catalogID, rawExtras)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusOK {
			h.logger.Warnf("[CatalogHandler] catalog %s failed: %v", catalogID, err)
		}
		c.JSON(status, models.CatalogResponse{Metas: []models.Meta{}})
		return
	}
	c.JSON(http.StatusOK, models.CatalogResponse{Metas: metas})
}

func (h *Handler) handleMeta(c *gin.Context) {
	user := h.userConfig(c)
	if user == nil {
		return
	}
	id := stripJSONExtension(c, "id")

	meta, err := h.aggregator.Meta(c.Request.Context(), user, c.Param("type"), id)
	if err != nil {
		h.logger.Warnf("[MetaHandler] no meta for %s: %v", id, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "meta not found"})
		return
	}
	c.JSON(http.StatusOK, models.MetaResponse{Meta: *meta})
}
