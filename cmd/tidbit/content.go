package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tidbit/internal/cli"
	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/database"
	"github.com/at-ishikawa/tidbit/internal/datasync"
)

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List content categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				catalog, err := content.LoadCatalog(cmd.Context(), a.content)
				if err != nil {
					return fmt.Errorf("content.LoadCatalog() > %w", err)
				}
				for _, c := range catalog.Categories() {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-24s  %-24s  %d tidbits\n", c.ID, c.Name, len(catalog.Tidbits([]string{c.ID})))
				}
				return nil
			})
		},
	}
}

func newContentCommand() *cobra.Command {
	contentCommand := &cobra.Command{
		Use:   "content",
		Short: "Content file commands",
	}
	contentCommand.AddCommand(
		newContentValidateCommand(),
		newContentImportCommand(),
	)
	return contentCommand
}

// contentFile returns the file argument, or the configured content file.
func contentFile(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", fmt.Errorf("loadConfig() > %w", err)
	}
	return cfg.Content.File, nil
}

func newContentValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a content file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := contentFile(args)
			if err != nil {
				return err
			}
			data, err := content.ReadFile(path)
			if err != nil {
				return fmt.Errorf("content.ReadFile(%s) > %w", path, err)
			}
			if !cli.PrintValidationReport(cmd.OutOrStdout(), content.Validate(data)) {
				return fmt.Errorf("%s has validation errors", path)
			}
			return nil
		},
	}
}

func newContentImportCommand() *cobra.Command {
	var dryRun bool
	var updateExisting bool

	command := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a content file into the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			path := cfg.Content.File
			if len(args) > 0 {
				path = args[0]
			}
			data, err := content.ReadFile(path)
			if err != nil {
				return fmt.Errorf("content.ReadFile(%s) > %w", path, err)
			}

			db, err := database.Connect(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Connect() > %w", err)
			}
			defer func() { _ = db.Close() }()

			out := cmd.OutOrStdout()
			importer := datasync.NewImporter(content.NewDBStore(db), out)
			opts := datasync.ImportOptions{
				DryRun:         dryRun,
				UpdateExisting: updateExisting,
			}
			result, err := importer.ImportContent(ctx, data, opts)
			if err != nil {
				return fmt.Errorf("importer.ImportContent() > %w", err)
			}

			_, _ = fmt.Fprintln(out, "\nImport Summary:")
			if opts.DryRun {
				_, _ = fmt.Fprintln(out, "  (dry-run mode, no changes made)")
			}
			_, _ = fmt.Fprintf(out, "  Categories:  %d upserted\n", result.CategoriesUpserted)
			_, _ = fmt.Fprintf(out, "  Tidbits:     %d new, %d skipped, %d updated\n", result.TidbitsNew, result.TidbitsSkipped, result.TidbitsUpdated)
			return nil
		},
	}

	command.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the database")
	command.Flags().BoolVar(&updateExisting, "update-existing", false, "Update existing records with new data")
	return command
}
