package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/moodmoney/quota/migrations"
	"github.com/moodmoney/quota/pkg/pg"
)

type migration func(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		migrateSubcommand("up", "Apply all pending migrations", func(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
			return pg.Migrate(ctx, pool, migrations.FS, cfg, log)
		}),
		migrateSubcommand("down", "Roll back the latest migration", func(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
			return pg.Rollback(ctx, pool, migrations.FS, cfg, log)
		}),
		migrateSubcommand("status", "Print applied and pending migrations", func(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
			return pg.Status(ctx, pool, migrations.FS, cfg, log)
		}),
	)
	return cmd
}

func migrateSubcommand(use, short string, run migration) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pgCfg, err := loadPGConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := pg.Connect(ctx, pgCfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			return run(ctx, pool, pgCfg, newLogger(cfg))
		},
	}
}
