package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"revenue-forecast/internal/config"
	"revenue-forecast/internal/middleware"
	"revenue-forecast/internal/observability"
	"revenue-forecast/internal/server"
	"revenue-forecast/internal/services"
)

const csvLoadTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
	)

	engine := services.NewEngine(cfg.Forecast, logger)

	if cfg.Data.CSVFile != "" {
		if err := preloadCSV(engine, cfg.Data.CSVFile); err != nil {
			logger.Error("failed to preload CSV data", "file", cfg.Data.CSVFile, "error", err)
			os.Exit(1)
		}
	}

	srv := server.New(engine, logger, cfg.Data.MaxUploadBytes)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("engine state at shutdown", "stats", engine.Stats())
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

func preloadCSV(engine *services.Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
	defer cancel()

	_, err = engine.LoadCSV(ctx, f)
	return err
}
