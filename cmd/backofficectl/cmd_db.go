package main

import (
	"fmt"

	"github.com/JonMunkholm/backoffice/internal/store"
	"github.com/spf13/cobra"
)

// migrateCmd applies the schema
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

// seedCmd loads fixtures
var seedCmd = &cobra.Command{
	Use:   "seed <fixtures.yaml>",
	Short: "Load users, merchants, locations and allergens from a YAML file",
	Long: `Load seed data from a YAML file. The schema is migrated first.
Rows that already exist are left untouched, so seeding is repeatable.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", st.Backend())
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	fx, err := store.ReadFixtures(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, _, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := st.LoadFixtures(ctx, fx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d merchants, %d locations, %d allergens\n",
		len(fx.Users), len(fx.Merchants), len(fx.Locations), len(fx.Allergens))
	return nil
}
