package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wordcount/internal/shared"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, closeDB, err := r.openDatabase()
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer closeDB()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	applied, err := shared.AppliedVersions(db)
	if err != nil {
		return err
	}
	versions := make([]int, 0, len(applied))
	for v := range applied {
		versions = append(versions, v)
	}
	slices.Sort(versions)

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writePlain("%s\n", r.palette.OK(fmt.Sprintf("✓ Database ready (migrations applied: %v)", versions)))
	return nil
}

// SetupRollback rolls back the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	r.writePlain("%s\n", r.palette.OK("✓ Rolled back the latest migration"))
	return nil
}

// SetupConfig writes the default config file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("%s\n", r.palette.OK("✓ Wrote "+path))
	r.writePlain("%s\n", r.palette.Help("Set APP_SETTINGS and DATABASE_URL (or edit database.path) before running `wordcount serve`."))
	return nil
}
