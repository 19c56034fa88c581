package main

import (
	"context"
	"fmt"

	"github.com/cuemby/coordinator/internal/config"
	"github.com/cuemby/coordinator/pkg/storage/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the coordinator's Postgres schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("coordinator: load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("coordinator: connect to database: %w", err)
	}
	defer pool.Close()

	for _, name := range migrations.Names() {
		fmt.Printf("applying %s...\n", name)
		sql, err := migrations.Read(name)
		if err != nil {
			return fmt.Errorf("coordinator: read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("coordinator: apply migration %s: %w", name, err)
		}
	}

	fmt.Println("✓ migrations applied")
	return nil
}
