// Package cli implements the interactive study session and the reports
// printed by the tidbit command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

var (
	errEnd = errors.New("end")
)

//go:generate mockgen -source=interactive.go -destination=../mocks/cli/mock_interactive.go -package=mock_cli

// Session is one step of an interactive loop. Returning errEnd stops the loop.
type Session interface {
	Session(ctx context.Context) error
}

// Run calls session until it ends, fails, or the process is interrupted.
func Run(ctx context.Context, session Session, stdout io.Writer) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for ctx.Err() == nil {
			if err := session.Session(ctx); err != nil {
				if !errors.Is(err, errEnd) {
					errCh <- err
				}
				return
			}
		}
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(stdout, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}
