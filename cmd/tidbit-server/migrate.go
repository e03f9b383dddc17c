package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tidbit/internal/database"
	"github.com/at-ishikawa/tidbit/schemas"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}

			db, err := database.Connect(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Connect() > %w", err)
			}
			defer func() { _ = db.Close() }()

			applied, err := database.Migrate(ctx, db, schemas.Migrations, "migrations")
			if err != nil {
				return fmt.Errorf("database.Migrate() > %w", err)
			}
			if len(applied) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")
				return nil
			}
			for _, version := range applied {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", version)
			}
			return nil
		},
	}
}
