package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert default statuses, priorities, categories and departments",
		Long: `Insert the default reference data. Rows that already exist by name are left alone,
so the command can be run repeatedly. Set BOOTSTRAP_ADMIN_EMAIL and
BOOTSTRAP_ADMIN_PASSWORD to also create an administrator.`,
		RunE: runSeed,
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required for seed")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := newContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.seeder.Seed(ctx)
	if err != nil {
		logger.Error("seed failed", zap.Error(err))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d statuses, %d priorities, %d categories, %d departments\n",
		result.Statuses, result.Priorities, result.Categories, result.Departments)
	return nil
}
