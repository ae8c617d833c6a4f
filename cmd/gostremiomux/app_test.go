package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/middleware"
	"github.com/amaumene/gostremiomux/pkg/logger"
)

func TestNewAppServesManifest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, config.Default(), logger.Discard())
	require.NoError(t, err)
	defer app.Close()

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manifest.json", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"configurationRequired":true`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewAppWithBoltBackend(t *testing.T) {
	cfg := config.Default()
	cfg.CacheBackend = "bolt"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "cache.db")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	app.Close()
}

func TestNewAppRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.CacheBackend = "memcached"

	_, err := NewApp(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize cache")
}

func TestInitializeLoggerWithFile(t *testing.T) {
	cfg := config.Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "addon.log")

	log, closer := InitializeLogger(cfg)
	require.NotNil(t, closer)
	log.Infof("[Test] hello")
	require.NoError(t, closer.Close())

	log, closer = InitializeLogger(config.Default())
	assert.NotNil(t, log)
	assert.Nil(t, closer)
}
