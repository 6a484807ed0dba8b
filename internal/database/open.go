// Package database opens the configured store backend.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/backoffice/internal/config"
	"github.com/JonMunkholm/backoffice/internal/store"
	"github.com/JonMunkholm/backoffice/internal/store/postgres"
	"github.com/JonMunkholm/backoffice/internal/store/sqlite"
)

// BackendFor reports which backend a connection URL selects.
// "sqlite:" and "file:" URLs use SQLite; everything else is PostgreSQL.
func BackendFor(rawURL string) store.Backend {
	switch {
	case strings.HasPrefix(rawURL, "sqlite:"), strings.HasPrefix(rawURL, "file:"):
		return store.BackendSQLite
	default:
		return store.BackendPostgres
	}
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch BackendFor(cfg.URL) {
	case store.BackendSQLite:
		path := strings.TrimPrefix(cfg.URL, "sqlite:")
		s, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		slog.Info("connected to database", "backend", store.BackendSQLite, "path", path)
		return s, nil

	default:
		s, err := postgres.Open(ctx, cfg.URL, postgres.PoolOptions{
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}

		// Log which database we connected to
		if u, err := url.Parse(cfg.URL); err == nil {
			slog.Info("connected to database", "backend", store.BackendPostgres, "name", strings.TrimPrefix(u.Path, "/"))
		} else {
			slog.Info("connected to database", "backend", store.BackendPostgres)
		}
		return s, nil
	}
}
