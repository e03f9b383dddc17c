package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tidbit/internal/cli"
	"github.com/at-ishikawa/tidbit/internal/content"
)

func newPickCommand() *cobra.Command {
	var categories []string
	command := &cobra.Command{
		Use:   "pick",
		Short: "Pick one tidbit to show, preferring due reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				selected, err := a.categories(cmd.Context(), categories)
				if err != nil {
					return err
				}
				tidbit, err := a.selector().SelectOne(cmd.Context(), selected)
				if err != nil {
					return fmt.Errorf("selector.SelectOne() > %w", err)
				}
				if tidbit == nil {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tidbit available.")
					return nil
				}
				cli.PrintTidbits(cmd.OutOrStdout(), []content.Tidbit{*tidbit})
				return nil
			})
		},
	}
	command.Flags().StringSliceVar(&categories, "category", nil, "Category ids to pick from")
	return command
}

func newPlanCommand() *cobra.Command {
	var categories []string
	planCommand := &cobra.Command{
		Use:   "plan",
		Short: "Show today's study plan, generating it when needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				selected, err := a.categories(cmd.Context(), categories)
				if err != nil {
					return err
				}
				plan, err := a.generator().DailyPlan(cmd.Context(), selected)
				if err != nil {
					return fmt.Errorf("generator.DailyPlan() > %w", err)
				}
				cli.PrintPlan(cmd.OutOrStdout(), plan)
				return nil
			})
		},
	}
	planCommand.PersistentFlags().StringSliceVar(&categories, "category", nil, "Category ids to study")

	planCommand.AddCommand(
		newPlanGenerateCommand(&categories),
		newPlanClearCommand(),
		newPlanCompleteCommand(),
	)
	return planCommand
}

func newPlanGenerateCommand(categories *[]string) *cobra.Command {
	var target int
	command := &cobra.Command{
		Use:   "generate",
		Short: "Generate a one-off study set without storing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				selected, err := a.categories(cmd.Context(), *categories)
				if err != nil {
					return err
				}
				tidbits, err := a.generator().Generate(cmd.Context(), target, selected)
				if err != nil {
					return fmt.Errorf("generator.Generate() > %w", err)
				}
				if len(tidbits) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tidbits available.")
					return nil
				}
				cli.PrintTidbits(cmd.OutOrStdout(), tidbits)
				return nil
			})
		},
	}
	command.Flags().IntVar(&target, "target", 0, "Number of tidbits (default: plan.daily_target)")
	return command
}

func newPlanClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove today's plan so the next call generates a new one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				if err := a.generator().ClearPlan(cmd.Context()); err != nil {
					return fmt.Errorf("generator.ClearPlan() > %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Plan cleared.")
				return nil
			})
		},
	}
}

func newPlanCompleteCommand() *cobra.Command {
	var completed int
	command := &cobra.Command{
		Use:   "complete",
		Short: "Mark today's plan completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				plan, err := a.generator().MarkPlanCompleted(cmd.Context(), completed)
				if err != nil {
					return fmt.Errorf("generator.MarkPlanCompleted() > %w", err)
				}
				cli.PrintPlan(cmd.OutOrStdout(), plan)
				return nil
			})
		},
	}
	command.Flags().IntVar(&completed, "completed", 0, "Number of plan tidbits studied")
	return command
}
