package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/repetition"
	"github.com/at-ishikawa/tidbit/internal/study"
)

//go:generate mockgen -source=study_session.go -destination=../mocks/cli/mock_study_session.go -package=mock_cli

// SessionRuntime is the part of study.Runtime driven by the study CLI.
type SessionRuntime interface {
	Next(ctx context.Context) (*content.Tidbit, error)
	RecordFeedback(ctx context.Context, tidbitID string, action repetition.Action) (*study.Session, error)
	End(ctx context.Context) (*study.Session, error)
}

// StudySessionCLI walks through the active study session one tidbit at a time.
type StudySessionCLI struct {
	runtime       SessionRuntime
	categoryNames map[string]string
	stdinReader   *bufio.Reader
	stdoutWriter  io.Writer
	bold          *color.Color
	italic        *color.Color
	green         *color.Color
	red           *color.Color
	yellow        *color.Color
}

func NewStudySessionCLI(runtime SessionRuntime, categories []content.Category, stdin io.Reader, stdout io.Writer) *StudySessionCLI {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return &StudySessionCLI{
		runtime:       runtime,
		categoryNames: names,
		stdinReader:   bufio.NewReader(stdin),
		stdoutWriter:  stdout,
		bold:          color.New(color.Bold),
		italic:        color.New(color.Italic),
		green:         color.New(color.FgGreen),
		red:           color.New(color.FgRed),
		yellow:        color.New(color.FgYellow),
	}
}

func parseAnswer(input string) (repetition.Action, bool, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "k", "knew":
		return repetition.ActionKnew, false, nil
	case "d", "didnt_know", "didnt-know":
		return repetition.ActionDidntKnow, false, nil
	case "s", "save":
		return repetition.ActionSave, false, nil
	case "q", "quit":
		return "", true, nil
	}
	return "", false, fmt.Errorf("unknown answer %q", strings.TrimSpace(input))
}

func (cli *StudySessionCLI) Session(ctx context.Context) error {
	tidbit, err := cli.runtime.Next(ctx)
	if err != nil {
		return fmt.Errorf("runtime.Next() > %w", err)
	}
	if tidbit == nil {
		_, _ = fmt.Fprintln(cli.stdoutWriter, "No more tidbits in this session!")
		return cli.finish(ctx)
	}

	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "[%s]\n", cli.categoryName(tidbit.Category))
	_, _ = cli.italic.Fprintln(cli.stdoutWriter, tidbit.Text)
	_, _ = fmt.Fprint(cli.stdoutWriter, "(k)new, (d)idn't know, (s)ave, (q)uit: ")

	input, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(input) == "" {
			_, _ = fmt.Fprintln(cli.stdoutWriter)
			return errEnd
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("error reading input: %w", err)
		}
	}

	action, quit, err := parseAnswer(input)
	if err != nil {
		_, _ = cli.yellow.Fprintf(cli.stdoutWriter, "%v. Try again.\n\n", err)
		return nil
	}
	if quit {
		_, _ = fmt.Fprintln(cli.stdoutWriter, "Session paused. Run the study command again to resume.")
		return errEnd
	}

	session, err := cli.runtime.RecordFeedback(ctx, tidbit.ID, action)
	if err != nil {
		return fmt.Errorf("runtime.RecordFeedback() > %w", err)
	}

	switch action {
	case repetition.ActionKnew:
		_, _ = fmt.Fprint(cli.stdoutWriter, "✅ ")
		_, _ = cli.green.Fprintln(cli.stdoutWriter, "Nice! It will come back later.")
	case repetition.ActionDidntKnow:
		_, _ = fmt.Fprint(cli.stdoutWriter, "❌ ")
		_, _ = cli.red.Fprintln(cli.stdoutWriter, "It will come back soon.")
	case repetition.ActionSave:
		_, _ = fmt.Fprint(cli.stdoutWriter, "⭐ ")
		_, _ = cli.yellow.Fprintln(cli.stdoutWriter, "Saved for later.")
	}
	if session != nil {
		_, _ = fmt.Fprintf(cli.stdoutWriter, "Progress: %d/%d\n", session.Stats.Completed, session.Stats.Total)
	}
	_, _ = fmt.Fprintln(cli.stdoutWriter)
	return nil
}

func (cli *StudySessionCLI) finish(ctx context.Context) error {
	session, err := cli.runtime.End(ctx)
	if err != nil {
		return fmt.Errorf("runtime.End() > %w", err)
	}
	if session != nil {
		PrintSessionSummary(cli.stdoutWriter, session)
	}
	return errEnd
}

func (cli *StudySessionCLI) categoryName(categoryID string) string {
	if name, ok := cli.categoryNames[categoryID]; ok {
		return name
	}
	return categoryID
}
