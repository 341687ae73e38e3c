package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shannong20/Evalytics-sub000/internal/repository"
	dbbuilder "github.com/shannong20/Evalytics-sub000/pkg/database"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "evalytics",
		Short:        "Faculty evaluation analytics",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("db", "./data/evalytics.db", "SQLite database path")
	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd(), seedCmd(), reportCmd())
	return root
}

// viperForCmd layers flags, EVALYTICS_* environment variables and an optional
// evalytics.yaml.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EVALYTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("evalytics")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/evalytics")
	v.AddConfigPath("/etc/evalytics")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "error reading config file: %v\n", err)
		}
	}

	return v
}

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", v.GetString("log-level"), err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// openDB opens the database and brings the schema up to date.
func openDB(ctx context.Context, v *viper.Viper, logger *zap.Logger) (*sqlx.DB, repository.Capabilities, error) {
	db, err := dbbuilder.New(dbbuilder.WithDataSource(v.GetString("db")), dbbuilder.WithRetry(1, 0))
	if err != nil {
		return nil, repository.Capabilities{}, err
	}

	results, err := repository.Migrate(ctx, db.DB)
	if err != nil {
		db.Close()
		return nil, repository.Capabilities{}, fmt.Errorf("migrate: %w", err)
	}
	for _, r := range results {
		logger.Info("applied migration", zap.Int64("version", r.Source.Version))
	}

	caps, err := repository.ProbeCapabilities(ctx, db)
	if err != nil {
		db.Close()
		return nil, repository.Capabilities{}, err
	}
	return db, caps, nil
}
