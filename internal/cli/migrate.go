package cli

import (
	"database/sql"
	"fmt"

	"metastor/internal/config"
	"metastor/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

func openDB(opts *options) (*sql.DB, *config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := sql.Open("pgx", cfg.DB.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, cfg, nil
}

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Run(db, cfg.DB.Migrations); err != nil {
				return err
			}
			return printVersion(cmd, db, cfg.DB.Migrations)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB(opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migrations.Down(db, cfg.DB.Migrations, steps); err != nil {
				return err
			}
			return printVersion(cmd, db, cfg.DB.Migrations)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB(opts)
			if err != nil {
				return err
			}
			defer db.Close()
			return printVersion(cmd, db, cfg.DB.Migrations)
		},
	})

	return cmd
}

func printVersion(cmd *cobra.Command, db *sql.DB, path string) error {
	version, dirty, err := migrations.Version(db, path)
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
	return nil
}
