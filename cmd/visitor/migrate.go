package main

import (
	"context"
	"fmt"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/database"
	"github.com/deppfellow/visitor-function/internal/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the postgres visitor table",
		Long: `Migrate applies the embedded migrations to the database named by the store
connection string. It only applies to the postgres driver.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires the %s store driver, got %s", config.DriverPostgres, cfg.Store.Driver)
	}

	log := logger.NewLogger(cfg.Observability.GetLogLevel(), cfg.Observability.IsProduction())

	ctx, cancel := context.WithTimeout(ctx, database.DatabasePingTimeout)
	defer cancel()

	return database.Migrate(ctx, &log, cfg)
}
