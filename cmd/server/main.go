package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/backoffice/internal/config"
	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/JonMunkholm/backoffice/internal/database"
	"github.com/JonMunkholm/backoffice/internal/export"
	_ "github.com/JonMunkholm/backoffice/internal/export/datasets" // Register built-in datasets
	"github.com/JonMunkholm/backoffice/internal/logging"
	"github.com/JonMunkholm/backoffice/internal/web"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"backend", database.BackendFor(cfg.Database.URL),
		"draft_ttl", cfg.Export.DraftTTL,
		"max_drafts", cfg.Export.MaxDrafts,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	slog.Info("migrations applied", "backend", st.Backend())

	catalog := export.Default()
	slog.Info("datasets registered", "count", catalog.Len(), "enabled", len(catalog.Enabled()))

	service := core.NewService(st, catalog, core.Options{
		DraftTTL:        cfg.Export.DraftTTL,
		MaxDrafts:       cfg.Export.MaxDrafts,
		SummaryValidity: cfg.Export.SummaryValidity,
		SessionTTL:      cfg.Auth.SessionTTL,

		MaxConcurrentEstimates: cfg.Export.MaxConcurrentEstimates,
		EstimateWait:           cfg.Export.EstimateWait,
	})
	server := web.NewServer(service, cfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		service.StartDraftSweeper(gctx, cfg.Export.SweepInterval)
		return nil
	})

	// Graceful shutdown on signal or when the server fails
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if n := service.DraftCount(); n > 0 {
			slog.Info("discarding export drafts", "count", n)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := service.WaitForEstimates(shutdownCtx); err != nil {
			slog.Warn("estimates still running at shutdown", "active", service.EstimateStatus().Active)
		}
		return nil
	})

	return g.Wait()
}
