package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cimillas/pro-portal/services/api/migrations"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if migrateStatus {
			pending, err := migrations.Pending(ctx, pool)
			if err != nil {
				return err
			}
			for _, name := range pending {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		}

		applied, err := migrations.Apply(ctx, pool, logger)
		if err != nil {
			return err
		}
		logger.Info("migrations up to date", zap.Int("applied", len(applied)))
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "list pending migrations without applying them")
}
