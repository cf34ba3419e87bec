package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/otpauth/credentials/postgres"
	"github.com/MrEthical07/otpauth/internal/logging"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations of the users table to POSTGRES_DSN.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if cfg.PostgresDSN == "" {
		return oops.Code("CONFIG_INVALID").Errorf("POSTGRES_DSN environment variable is required")
	}

	logger := logging.Setup("otpauth", version, cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	ctx := cmd.Context()

	cmd.Println("Connecting to database...")
	pool, err := postgres.Connect(ctx, postgres.ConnectConfig{
		DSN:      cfg.PostgresDSN,
		MaxConns: cfg.PostgresMaxConns,
	}, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
