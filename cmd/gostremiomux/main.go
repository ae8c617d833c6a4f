package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[App] failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, logCloser := InitializeLogger(cfg)
	if logCloser != nil {
		defer logCloser.Close()
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatalf("[App] %v", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
	}

	go func() {
		log.Infof("[App] starting HTTP server on port %s (base url %s)", cfg.Port, cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("[App] server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("[App] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[App] graceful shutdown failed: %v", err)
	}
}
