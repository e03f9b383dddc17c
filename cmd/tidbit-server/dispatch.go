package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tidbit/internal/notification"
)

func newDispatchCommand() *cobra.Command {
	var once bool
	command := &cobra.Command{
		Use:   "dispatch",
		Short: "Run the notification dispatcher without the API",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			svc, err := newServices(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := svc.Close(); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			dispatcher, err := svc.dispatcher()
			if err != nil {
				return err
			}
			if !once {
				return dispatcher.Run(ctx)
			}

			result, err := dispatcher.Tick(ctx, time.Now())
			if err != nil {
				return fmt.Errorf("dispatcher.Tick() > %w", err)
			}
			printResult(cmd, result)
			return nil
		},
	}
	command.Flags().BoolVar(&once, "once", false, "Run a single tick for the current minute and exit")
	return command
}

func printResult(cmd *cobra.Command, result notification.Result) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Tick:      %s\n", result.Tick.Format(time.RFC3339))
	_, _ = fmt.Fprintf(out, "Devices:   %d\n", result.Devices)
	_, _ = fmt.Fprintf(out, "Eligible:  %d\n", result.Eligible)
	_, _ = fmt.Fprintf(out, "Sent:      %d\n", result.Sent)
	_, _ = fmt.Fprintf(out, "Failed:    %d\n", result.Failed)

	reasons := make([]string, 0, len(result.Skipped))
	for reason := range result.Skipped {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		_, _ = fmt.Fprintf(out, "Skipped:   %d (%s)\n", result.Skipped[notification.SkipReason(reason)], reason)
	}
}
