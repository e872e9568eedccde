package cmd

import (
	"context"
	"fmt"

	"github.com/appestoicismo/newsllater/config"
	"github.com/appestoicismo/newsllater/logger"
	"github.com/appestoicismo/newsllater/repository"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command for schema migrations
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update the database schema and seed default settings.

Existing settings are never overwritten. The command is safe to run
repeatedly and against both supported drivers (sqlite, postgres).

Example:
  newsllater migrate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}

	logger.Info("database migrated", "driver", cfg.Database.Driver)
	return nil
}
