package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ricirt/aqi-bulletin/internal/config"
	"github.com/ricirt/aqi-bulletin/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the bulletins schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := migrateSetup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if err := db.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info("database migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert applied migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		if steps <= 0 {
			return fmt.Errorf("--steps must be positive, got %d", steps)
		}

		cfg, logger, err := migrateSetup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if err := db.Rollback(cfg.MigrationsPath, cfg.DatabaseURL, steps); err != nil {
			return err
		}
		logger.Info("database migrations reverted", zap.Int("steps", steps))
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := migrateSetup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		v, dirty, err := db.Version(cfg.MigrationsPath, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		if v == 0 {
			fmt.Println("no migrations applied")
			return nil
		}
		if dirty {
			fmt.Printf("%d (dirty)\n", v)
			return nil
		}
		fmt.Println(v)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to revert")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func migrateSetup() (*config.Config, *zap.Logger, error) {
	logger, _ := zap.NewProduction()
	loadEnv(logger)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger, nil
}
