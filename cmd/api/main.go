package main

import (
	"log"
	"net/http"
	"time"

	"pr-insights/internal/adapters/storage/postgres"
	"pr-insights/internal/config"
	"pr-insights/internal/platform/logger"
	"pr-insights/internal/router"
)

// @title PR Insights API
// @version 1.0
// @description Ingesta de entregas de webhook y timeline agregado por pull request.
// @BasePath /
func main() {
	cfg := config.Load()

	appLog := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	opts := router.Options{
		Logger:       appLog,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}

	if cfg.DBDSN != "" {
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer db.Close()
		opts.DB = db
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	appLog.Info("starting server", map[string]any{"addr": cfg.Addr()})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
