package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gostremiomux/internal/debrid"
	"github.com/amaumene/gostremiomux/internal/fallback"
)

// Trackers of a candidate travel on the playback URL as repeated tr params.
const (
	trackerParam  = "tr"
	trackerPrefix = "tracker:"
)

// handlePlayback resolves a stored torrent file and redirects to the
// playable URL, or to the fallback video explaining why there is none.
func (h *Handler) handlePlayback(c *gin.Context) {
	user := h.userConfig(c)
	if user == nil {
		return
	}
	if user.Store == nil {
		h.redirectToAsset(c, fallback.Asset(debrid.KindUnauthorized))
		return
	}

	fileIdx, err := strconv.Atoi(c.Param("fileIdx"))
	if err != nil {
		fileIdx = -1
	}
	season, _ := strconv.Atoi(c.Query("s"))
	episode, _ := strconv.Atoi(c.Query("e"))

	var sources []string
	for _, tracker := range c.QueryArray(trackerParam) {
		sources = append(sources, trackerPrefix+tracker)
	}

	loc := debrid.Locator{
		InfoHash: c.Param("hash"),
		FileIdx:  fileIdx,
		Filename: strings.TrimPrefix(c.Param("filename"), "/"),
		Season:   season,
		Episode:  episode,
		Sources:  sources,
	}
	auth := debrid.StoreAuth{Provider: user.Store.Provider, Token: user.Store.Token}

	res := h.resolver.Resolve(c.Request.Context(), auth, loc)
	if asset, ok := fallback.ForResult(res); ok {
		h.logger.Infof("[PlaybackHandler] %s via %s: %s %s", loc.InfoHash, auth.Provider, res.State, res.Kind)
		h.redirectToAsset(c, asset)
		return
	}
	c.Redirect(http.StatusFound, res.URL)
}

func (h *Handler) redirectToAsset(c *gin.Context, asset string) {
	c.Redirect(http.StatusFound, h.config.BaseURL+"/static/"+asset)
}
