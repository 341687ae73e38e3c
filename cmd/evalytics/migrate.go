package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shannong20/Evalytics-sub000/internal/repository"
	dbbuilder "github.com/shannong20/Evalytics-sub000/pkg/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  runMigrate,
	}
	cmd.Flags().Int64("to", 0, "Target schema version (0 = latest)")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	logger, err := newLogger(v)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := dbbuilder.New(dbbuilder.WithDataSource(v.GetString("db")), dbbuilder.WithRetry(1, 0))
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	var results []*repository.MigrationResult
	if to := v.GetInt64("to"); to > 0 {
		results, err = repository.MigrateTo(ctx, db.DB, to)
	} else {
		results, err = repository.Migrate(ctx, db.DB)
	}
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, r := range results {
		logger.Info("applied migration", zap.Int64("version", r.Source.Version), zap.Duration("duration", r.Duration))
	}

	version, err := repository.SchemaVersion(ctx, db.DB)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%d applied)\n", version, len(results))
	return nil
}
