package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	_ "github.com/anonto42/socialshop/backend/internal/migrations"
	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/pkg/config"
	"github.com/anonto42/socialshop/backend/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var skipModels bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
		Long: `migrate creates the gorm model tables and then applies the goose
migrations (composite indexes and check constraints) on top of them.`,
		SilenceUsage: true,
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Create model tables and apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, log *zap.Logger) error {
				if !skipModels {
					if err := autoMigrate(db); err != nil {
						return err
					}
					log.Info("model tables migrated")
				}
				if err := goose.UpContext(ctx, db, "."); err != nil {
					return fmt.Errorf("goose up: %w", err)
				}
				log.Info("migrations applied")
				return nil
			})
		},
	}
	up.Flags().BoolVar(&skipModels, "skip-models", false, "Only run goose migrations")

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, _ *zap.Logger) error {
				return goose.DownContext(ctx, db, ".")
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Print migration status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, _ *zap.Logger) error {
				return goose.StatusContext(ctx, db, ".")
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, db *sql.DB, _ *zap.Logger) error {
				return goose.ResetContext(ctx, db, ".")
			})
		},
	}

	cmd.AddCommand(up, down, status, reset)
	return cmd
}

func withDB(ctx context.Context, fn func(context.Context, *sql.DB, *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	db, err := sql.Open("pgx", cfg.Postgres.ConnStr)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return fn(ctx, db, log)
}

func autoMigrate(db *sql.DB) error {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("open gorm: %w", err)
	}
	if err := gdb.AutoMigrate(models.Postgres()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
