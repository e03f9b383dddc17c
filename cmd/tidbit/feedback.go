package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/tidbit/internal/cli"
	"github.com/at-ishikawa/tidbit/internal/repetition"
)

// actionFlag parses a feedback action such as "knew" or "didnt-know".
type actionFlag repetition.Action

// Set implements pflag.Value.
func (a *actionFlag) Set(v string) error {
	action, err := repetition.ParseAction(v)
	if err != nil {
		return fmt.Errorf("invalid value %q, valid values are knew, didnt-know, save or unsave", v)
	}
	*a = actionFlag(action)
	return nil
}

// String implements pflag.Value.
func (a *actionFlag) String() string {
	if a == nil {
		return ""
	}
	return string(*a)
}

// Type implements pflag.Value.
func (a *actionFlag) Type() string {
	return "action"
}

var (
	_ pflag.Value = (*actionFlag)(nil)
)

func newFeedbackCommand() *cobra.Command {
	var action actionFlag
	command := &cobra.Command{
		Use:   "feedback <tidbit-id>...",
		Short: "Record a response to one or more tidbits",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				for _, tidbitID := range args {
					state := a.engine.RecordFeedback(cmd.Context(), tidbitID, repetition.Action(action))
					cli.PrintLearningState(cmd.OutOrStdout(), state)
				}
				return nil
			})
		},
	}
	command.Flags().Var(&action, "action", "Response to record. Options: knew, didnt-know, save, unsave")
	_ = command.MarkFlagRequired("action")
	return command
}

func newStateCommand() *cobra.Command {
	stateCommand := &cobra.Command{
		Use:   "state",
		Short: "Inspect and manage learning state",
	}
	stateCommand.AddCommand(
		newStateShowCommand(),
		newStateListCommand(),
		newStateRescheduleCommand(),
		newStateClearCommand(),
	)
	return stateCommand
}

func newStateShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <tidbit-id>",
		Short: "Show the learning state of a tidbit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				cli.PrintLearningState(cmd.OutOrStdout(), a.engine.State(cmd.Context(), args[0]))
				return nil
			})
		},
	}
}

var stateLists = []string{"due", "scheduled", "saved", "mastered"}

func newStateListCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "list <due|scheduled|saved|mastered>",
		Short:     "List tidbit ids by learning state",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: stateLists,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				ctx := cmd.Context()
				var ids []string
				var err error
				switch args[0] {
				case "due":
					ids, err = a.engine.Due(ctx, time.Now())
				case "scheduled":
					ids, err = a.engine.Scheduled(ctx)
				case "saved":
					ids, err = a.engine.Saved(ctx)
				case "mastered":
					ids, err = a.engine.Mastered(ctx)
				}
				if err != nil {
					return fmt.Errorf("list %s tidbits > %w", args[0], err)
				}
				for _, id := range ids {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
}

func newStateRescheduleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule <tidbit-id> <duration>",
		Short: "Make a tidbit due again after a duration such as 30m or 48h",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("time.ParseDuration(%s) > %w", args[1], err)
			}
			return withApp(cmd.Context(), func(a *app) error {
				state := a.engine.UpdateNextDue(cmd.Context(), args[0], d)
				cli.PrintLearningState(cmd.OutOrStdout(), state)
				return nil
			})
		},
	}
}

func newStateClearCommand() *cobra.Command {
	var yes bool
	command := &cobra.Command{
		Use:   "clear",
		Short: "Delete all learning state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all learning state without --yes")
			}
			return withApp(cmd.Context(), func(a *app) error {
				n, err := a.engine.ClearAll(cmd.Context())
				if err != nil {
					return fmt.Errorf("engine.ClearAll() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d learning states.\n", n)
				return nil
			})
		},
	}
	command.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return command
}
