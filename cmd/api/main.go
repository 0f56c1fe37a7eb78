package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/entity-registry/entity_registry/internal/config"
	"github.com/entity-registry/entity_registry/internal/entity"
	"github.com/entity-registry/entity_registry/internal/infra"
	"github.com/entity-registry/entity_registry/internal/logging"
	"github.com/entity-registry/entity_registry/internal/routes"
	"github.com/entity-registry/entity_registry/internal/server"
	"github.com/entity-registry/entity_registry/internal/verify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	deps := routes.Deps{Cfg: cfg, Logger: logger}

	// Storage selection is a deployment concern: a networked Postgres or the
	// embedded file-backed store. Schema provisioning runs once, here.
	switch {
	case cfg.DatabaseURL != "":
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		repo := entity.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("provision postgres schema", "error", err)
			os.Exit(1)
		}
		deps.DB = pool
		deps.Repo = repo
	default:
		db, err := infra.OpenSQLite(cfg.SQLiteFile)
		if err != nil {
			logger.Error("open sqlite", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		repo := entity.NewSQLiteRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("provision sqlite schema", "error", err)
			os.Exit(1)
		}
		deps.SQL = db
		deps.Repo = repo
	}

	verifier, err := verify.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Error("configure verification provider", "error", err)
		os.Exit(1)
	}
	deps.Verifier = verifier

	if cfg.RedisURL != "" {
		cache, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		deps.Cache = cache
	}

	srv, err := server.New(deps)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
