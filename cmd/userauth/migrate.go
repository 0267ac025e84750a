package main

import (
	"github.com/spf13/cobra"

	"github.com/dtroode/userauth/database"
	"github.com/dtroode/userauth/internal/config"
	"github.com/dtroode/userauth/internal/repository/sqlite"
)

// NewMigrateCmd creates the migrate subcommand. It applies pending migrations
// by default; "migrate down" rolls back the latest one.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply all pending migrations to the database selected by DATABASE_DRIVER
and DATABASE_DSN. The sqlite driver creates its schema on open.`,
		Args: cobra.NoArgs,
		RunE: runMigrateUp,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent PostgreSQL migration",
		Args:  cobra.NoArgs,
		RunE:  runMigrateDown,
	})

	return cmd
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	db, err := config.NewDatabaseConfig()
	if err != nil {
		return err
	}

	if db.Driver == config.DriverSQLite {
		store, err := sqlite.Open(cmd.Context(), db.DSN)
		if err != nil {
			return err
		}
		cmd.Println("sqlite schema is up to date")
		return store.Close()
	}

	cmd.Println("Running migrations...")
	if err := database.Migrate(cmd.Context(), db.DSN); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	db, err := config.NewDatabaseConfig()
	if err != nil {
		return err
	}
	if db.Driver == config.DriverSQLite {
		cmd.Println("sqlite has no migrations to roll back")
		return nil
	}

	if err := database.Rollback(cmd.Context(), db.DSN); err != nil {
		return err
	}
	cmd.Println("Rolled back the most recent migration")
	return nil
}
