package main

import (
	"context"
	"database/sql"
	root "finder"
	"finder/internal/config"
	"finder/pkg/logger"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateSchema applies the businesses and search log migrations with goose.
func migrateSchema(db *sql.DB) error {
	goose.SetBaseFS(root.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set goose dialect to postgres: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("could not migrate businesses schema: %w", err)
	}

	return nil
}

// migrateQueue brings the River job tables to the latest version. It returns
// the version the tables were at and the one they are at now.
func migrateQueue(ctx context.Context, db *sql.DB) (int, int, error) {
	migrator, err := rivermigrate.New(riverdatabasesql.New(db), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("could not create river queue migrator: %w", err)
	}

	migrations := migrator.AllVersions()
	latestVersion := migrations[len(migrations)-1].Version
	currentVersion := 0
	currentMigrations, err := migrator.ExistingVersions(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("could not get existing river queue migrations: %w", err)
	}
	if len(currentMigrations) > 0 {
		currentVersion = currentMigrations[len(currentMigrations)-1].Version
	}
	if latestVersion <= currentVersion {
		return currentVersion, currentVersion, nil
	}

	_, err = migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{
		TargetVersion: latestVersion,
	})
	if err != nil {
		return currentVersion, currentVersion, fmt.Errorf("could not migrate river queue tables: %w", err)
	}

	return currentVersion, latestVersion, nil
}

// migrateCommand constructs the 'migrate' subcommand that applies database
// migrations to the latest version using goose, then the River queue migrations.
func migrateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates database to the latest version",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			withQueue, _ := cmd.Flags().GetBool("queue")

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			db, ok := strg.DB.(*sql.DB)
			if !ok {
				logger.Fatal(ctx, "postgres storage is not backed by a database handle")
			}

			if err := migrateSchema(db); err != nil {
				logger.Fatal(ctx, "could not migrate pgsql", zap.Error(err))
			}
			logger.Info(ctx, "businesses schema is up to date")

			if !withQueue {
				return
			}
			from, to, err := migrateQueue(ctx, db)
			if err != nil {
				logger.Fatal(ctx, "could not migrate river queue", zap.Error(err))
			}
			logger.Info(ctx, "river queue tables are up to date", zap.Int("from", from), zap.Int("to", to))
		},
	}

	cmd.Flags().Bool("queue", true, "Also migrate the background recheck queue tables")

	return cmd
}
