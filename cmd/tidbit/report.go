package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tidbit/internal/cli"
	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/statistics"
)

func newProgressCommand() *cobra.Command {
	var categories []string
	command := &cobra.Command{
		Use:   "progress",
		Short: "Show learning progress per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				ctx := cmd.Context()
				selected, err := a.categories(ctx, categories)
				if err != nil {
					return err
				}
				catalog, err := content.LoadCatalog(ctx, a.content)
				if err != nil {
					return fmt.Errorf("content.LoadCatalog() > %w", err)
				}
				states, err := a.engine.States(ctx)
				if err != nil {
					return fmt.Errorf("engine.States() > %w", err)
				}
				progress := statistics.CalculateCategoryProgress(catalog, states, selected, time.Now())
				cli.PrintProgress(cmd.OutOrStdout(), statistics.SortForHome(progress))
				return nil
			})
		},
	}
	command.Flags().StringSliceVar(&categories, "category", nil, "Category ids to show")
	return command
}

func newHistoryCommand() *cobra.Command {
	var year, month int
	command := &cobra.Command{
		Use:   "history",
		Short: "Show study session statistics per month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year")
			}
			return withApp(cmd.Context(), func(a *app) error {
				history, err := a.runtime().History(cmd.Context())
				if err != nil {
					return fmt.Errorf("runtime.History() > %w", err)
				}
				cli.PrintSessionReport(cmd.OutOrStdout(), statistics.SummarizeSessions(history, year, month))
				return nil
			})
		},
	}
	command.Flags().IntVar(&year, "year", 0, "Filter by year (e.g., 2025)")
	command.Flags().IntVar(&month, "month", 0, "Filter by month (1-12, requires --year)")
	return command
}
