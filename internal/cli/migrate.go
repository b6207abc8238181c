package cli

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/landscape-hq/underwriter/internal/platform/migrations"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(db *sql.DB) error {
				if err := migrations.Up(db); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(db *sql.DB) error {
				if err := migrations.Down(db); err != nil {
					return err
				}
				cmd.Println("rolled back one migration")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(db *sql.DB) error {
				version, dirty, err := migrations.Version(db)
				if err != nil {
					return err
				}
				if version == 0 {
					cmd.Println("no migrations applied")
					return nil
				}
				cmd.Printf("version %d (dirty: %v)\n", version, dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

func withDB(fn func(db *sql.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return fn(db)
}
