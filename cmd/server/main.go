package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/listingdesk/internal/config"
	"github.com/JonMunkholm/listingdesk/internal/core"
	"github.com/JonMunkholm/listingdesk/internal/logging"
	"github.com/JonMunkholm/listingdesk/internal/storage"
	"github.com/JonMunkholm/listingdesk/internal/web"
	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

func main() {
	// Overload lets a local .env win over the shell environment.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open snapshot storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("snapshot storage ready", "backend", cfg.Storage.Backend, "ttl", cfg.Storage.SnapshotTTL)

	limiter := core.NewAutomationLimiter(cfg.Automation.MaxConcurrent, cfg.Automation.MaxWait)
	sessions := core.NewSessionManager(webhook.NewClient(cfg.Webhook), store, limiter, core.SessionOptions{
		IdleTimeout:       cfg.Session.IdleTimeout,
		SearchDebounce:    cfg.Session.SearchDebounce,
		DefaultAccessCode: cfg.Webhook.AccessCode,
	})
	server := web.NewServer(sessions, cfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sessions.StartReaper(gctx, cfg.Session.ReapInterval)
		return nil
	})

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for automations to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("automations did not complete in time", "error", err)
			} else {
				slog.Info("all automations completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
