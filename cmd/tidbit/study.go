package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tidbit/internal/cli"
	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/study"
)

func newStudyCommand() *cobra.Command {
	var (
		categories []string
		target     int
		restart    bool
	)
	command := &cobra.Command{
		Use:   "study",
		Short: "Study interactively, resuming the active session or starting today's plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				return runStudy(cmd, a, categories, target, restart)
			})
		},
	}
	command.Flags().StringSliceVar(&categories, "category", nil, "Category ids to study")
	command.Flags().IntVar(&target, "target", 0, "Study a one-off set of this size instead of today's plan")
	command.Flags().BoolVar(&restart, "restart", false, "Discard the active session and start a new one")
	return command
}

func runStudy(cmd *cobra.Command, a *app, categories []string, target int, restart bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	runtime := a.runtime()
	generator := a.generator()

	selected, err := a.categories(ctx, categories)
	if err != nil {
		return err
	}

	if restart {
		if err := runtime.Clear(ctx); err != nil {
			return fmt.Errorf("runtime.Clear() > %w", err)
		}
	}
	session, err := runtime.Current(ctx)
	if err != nil {
		return fmt.Errorf("runtime.Current() > %w", err)
	}
	if session != nil {
		_, _ = fmt.Fprintf(out, "Resuming session (%d/%d done)\n\n", session.Stats.Completed, session.Stats.Total)
	} else {
		session, err = startSession(ctx, runtime, generator, target, selected)
		if err != nil {
			return err
		}
		if session == nil {
			_, _ = fmt.Fprintln(out, "Nothing to study. Select categories with content first.")
			return nil
		}
		_, _ = fmt.Fprintf(out, "Starting a session of %d tidbits\n\n", session.Stats.Total)
	}

	catalog, err := content.LoadCatalog(ctx, a.content)
	if err != nil {
		return fmt.Errorf("content.LoadCatalog() > %w", err)
	}
	studyCLI := cli.NewStudySessionCLI(runtime, catalog.Categories(), os.Stdin, out)
	if err := cli.Run(ctx, studyCLI, out); err != nil {
		return err
	}

	return updatePlanProgress(ctx, runtime, generator, session.ID, selected)
}

func startSession(ctx context.Context, runtime *study.Runtime, generator *study.Generator, target int, categories []string) (*study.Session, error) {
	var tidbits []content.Tidbit
	if target > 0 {
		generated, err := generator.Generate(ctx, target, categories)
		if err != nil {
			return nil, fmt.Errorf("generator.Generate() > %w", err)
		}
		tidbits = generated
	} else {
		plan, err := generator.DailyPlan(ctx, categories)
		if err != nil {
			return nil, fmt.Errorf("generator.DailyPlan() > %w", err)
		}
		if plan != nil {
			tidbits = plan.Tidbits
		}
	}
	if len(tidbits) == 0 {
		return nil, nil
	}

	session, err := runtime.Start(ctx, tidbits)
	if err != nil {
		return nil, fmt.Errorf("runtime.Start() > %w", err)
	}
	return session, nil
}

// updatePlanProgress copies the progress of a session over today's plan
// into the plan.
func updatePlanProgress(ctx context.Context, runtime *study.Runtime, generator *study.Generator, sessionID string, categories []string) error {
	session, err := findSession(ctx, runtime, sessionID)
	if err != nil || session == nil {
		return err
	}
	plan, err := generator.DailyPlan(ctx, categories)
	if err != nil {
		return fmt.Errorf("generator.DailyPlan() > %w", err)
	}
	if plan == nil || !sameTidbits(plan.Tidbits, session.Tidbits) {
		return nil
	}
	if _, err := generator.UpdatePlanProgress(ctx, session.Stats.Completed); err != nil {
		return fmt.Errorf("generator.UpdatePlanProgress() > %w", err)
	}
	return nil
}

// findSession returns the session by id, whether it is still active or archived.
func findSession(ctx context.Context, runtime *study.Runtime, sessionID string) (*study.Session, error) {
	current, err := runtime.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("runtime.Current() > %w", err)
	}
	if current != nil && current.ID == sessionID {
		return current, nil
	}
	history, err := runtime.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("runtime.History() > %w", err)
	}
	for i := range history {
		if history[i].ID == sessionID {
			return &history[i], nil
		}
	}
	return nil, nil
}

func sameTidbits(a, b []content.Tidbit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
