package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gostremiomux/internal/adapters"
	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	apperrors "github.com/amaumene/gostremiomux/internal/errors"
	"github.com/amaumene/gostremiomux/internal/fallback"
	"github.com/amaumene/gostremiomux/internal/models"
	"github.com/amaumene/gostremiomux/internal/pipeline"
)

func (h *Handler) handleStream(c *gin.Context) {
	user := h.userConfig(c)
	if user == nil {
		return
	}
	mediaType := c.Param("type")
	id := stripJSONExtension(c, "id")

	req, err := adapters.ParseStreamRequest(mediaType, id, c.ClientIP())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates, err := h.aggregator.GetStreams(c.Request.Context(), mediaType, id, user, req.ClientIP)
	if err != nil {
		if status := statusFor(err); status != http.StatusOK {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		if apperrors.IsType(err, apperrors.ErrorTypeNoSourcesAvailable) {
			h.logger.Warnf("[StreamHandler] no source answered for %s: %v", id, err)
			c.JSON(http.StatusOK, models.StreamResponse{Streams: []models.Stream{h.noSourcesStream()}})
			return
		}
		h.logger.Errorf("[StreamHandler] aggregation failed for %s: %v", id, err)
		c.JSON(http.StatusOK, models.StreamResponse{Streams: []models.Stream{}})
		return
	}

	formatted := pipeline.Process(candidates, user)
	h.logger.Infof("[StreamHandler] %s %s: %d candidates, %d streams", mediaType, id, len(candidates), len(formatted))

	streams := make([]models.Stream, 0, len(formatted))
	for _, f := range formatted {
		streams = append(streams, h.toStream(c.Param("configuration"), f, user, req))
	}
	c.JSON(http.StatusOK, models.StreamResponse{Streams: streams})
}

// noSourcesStream tells the user every adapter failed, as opposed to an
// empty answer.
func (h *Handler) noSourcesStream() models.Stream {
	return models.Stream{
		Name:        constants.AddonName,
		Description: "⚠️ All sources failed, try again later",
		URL:         h.config.BaseURL + "/static/" + fallback.NoSources,
	}
}

// toStream renders a candidate. Hashes go through the playback route when a
// store is configured and are handed to the client's torrent engine
// otherwise; URLs pass through untouched.
func (h *Handler) toStream(configuration string, f pipeline.FormattedStream, user *config.UserConfig, req adapters.StreamRequest) models.Stream {
	cand := f.Candidate
	s := models.Stream{
		Name:        f.Name,
		Description: f.Description,
		BehaviorHints: &models.StreamBehaviorHints{
			BingeGroup: bingeGroup(cand),
			Filename:   cand.Filename,
			VideoSize:  cand.Size,
		},
	}

	switch {
	case cand.HasHash() && user.Store != nil:
		s.URL = h.playbackURL(configuration, cand, req)
	case cand.HasHash():
		s.InfoHash = cand.InfoHash
		s.Sources = cand.Sources
		if cand.HasFileIdx() {
			idx := cand.FileIdx
			s.FileIdx = &idx
		}
	default:
		s.URL = cand.URL
	}
	return s
}

func (h *Handler) playbackURL(configuration string, cand models.Candidate, req adapters.StreamRequest) string {
	filename := cand.Filename
	if filename == "" {
		filename = cand.Release.Raw
	}
	u := fmt.Sprintf("%s/%s/playback/%s/%d/%s", h.config.BaseURL, configuration, cand.InfoHash, cand.FileIdx,
		url.PathEscape(path.Base(filename)))

	q := url.Values{}
	if req.IsEpisode() {
		q.Set("s", strconv.Itoa(req.Season))
		q.Set("e", strconv.Itoa(req.Episode))
	}
	for _, src := range cand.Sources {
		if tracker, ok := strings.CutPrefix(src, trackerPrefix); ok {
			q.Add(trackerParam, tracker)
		}
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func bingeGroup(c models.Candidate) string {
	parts := []string{"gostremiomux", c.AdapterID}
	if c.Release.Resolution != "" {
		parts = append(parts, c.Release.Resolution)
	}
	if c.Release.Quality != "" {
		parts = append(parts, strings.ReplaceAll(c.Release.Quality, " ", ""))
	}
	return strings.Join(parts, "|")
}
