package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/tidbit/internal/assets"
	"github.com/at-ishikawa/tidbit/internal/push"
)

func newSendTestCommand() *cobra.Command {
	var body string
	command := &cobra.Command{
		Use:   "send-test <expo-push-token>",
		Short: "Send a test notification to one device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			gateway := push.NewExpoGateway(expoConfig(cfg.Push))
			defer func() { _ = gateway.Close() }()

			return sendTest(cmd, gateway, args[0], body)
		},
	}
	command.Flags().StringVar(&body, "body", "This is a test notification.", "Notification body")
	return command
}

func sendTest(cmd *cobra.Command, gateway push.Gateway, token, body string) error {
	tickets, err := gateway.Send(cmd.Context(), []push.Message{{
		To:    token,
		Title: assets.NotificationTitle,
		Body:  body,
		Sound: "default",
	}})
	if err != nil {
		return fmt.Errorf("gateway.Send() > %w", err)
	}
	for _, ticket := range tickets {
		if ticket.Status != push.TicketStatusOK {
			return fmt.Errorf("push rejected: %s", ticket.Message)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent (ticket %s)\n", ticket.ID)
	}
	return nil
}
