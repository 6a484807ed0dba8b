// Package main implements backofficectl, the operator CLI for the back
// office: schema migration, fixture seeding, session issuing, catalog
// inspection and offline export estimates.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JonMunkholm/backoffice/internal/config"
	"github.com/JonMunkholm/backoffice/internal/core"
	"github.com/JonMunkholm/backoffice/internal/database"
	"github.com/JonMunkholm/backoffice/internal/export"
	_ "github.com/JonMunkholm/backoffice/internal/export/datasets" // Register built-in datasets
	"github.com/JonMunkholm/backoffice/internal/logging"
	"github.com/JonMunkholm/backoffice/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile  string
	logLevel string
	timeout  time.Duration
	jsonOut  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "backofficectl",
	Short: "Operate the merchant back office",
	Long: `backofficectl manages the back-office database and inspects the
export catalog.

Database commands read DATABASE_URL (or DB_URL) from the environment or
the --env-file. A "sqlite:" URL selects the embedded SQLite backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
		}
		slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load if present")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print machine-readable JSON")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(auditCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// commandContext returns a context bounded by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// openStore loads configuration and connects to the configured database.
func openStore(ctx context.Context) (store.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	st, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

// newService builds a Service over st using the built-in catalog.
func newService(st store.Store, cfg *config.Config) *core.Service {
	opts := core.Options{}
	if cfg != nil {
		opts = core.Options{
			DraftTTL:        cfg.Export.DraftTTL,
			MaxDrafts:       cfg.Export.MaxDrafts,
			SummaryValidity: cfg.Export.SummaryValidity,
			SessionTTL:      cfg.Auth.SessionTTL,

			MaxConcurrentEstimates: cfg.Export.MaxConcurrentEstimates,
			EstimateWait:           cfg.Export.EstimateWait,
		}
	}
	return core.NewService(st, export.Default(), opts)
}
