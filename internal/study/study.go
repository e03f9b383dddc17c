// Package study builds review sets from learning state: the single-tidbit
// selector, the session and daily plan generator, and the study session runtime.
package study

import (
	"context"
	"log/slog"
	"time"

	"github.com/at-ishikawa/tidbit/internal/clock"
	"github.com/at-ishikawa/tidbit/internal/random"
	"github.com/at-ishikawa/tidbit/internal/repetition"
)

// StateEngine is the part of repetition.Engine used by this package.
type StateEngine interface {
	RecordFeedback(ctx context.Context, tidbitID string, action repetition.Action) *repetition.LearningState
	States(ctx context.Context) ([]repetition.LearningState, error)
	Due(ctx context.Context, now time.Time) ([]string, error)
}

type options struct {
	clock  clock.Clock
	random *random.Source
	logger *slog.Logger
}

// Option configures the selector, generator and runtime.
type Option func(*options)

// WithClock sets the clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithRandom sets the random source used for sampling and shuffling.
func WithRandom(r *random.Source) Option {
	return func(o *options) { o.random = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{
		clock:  clock.System(),
		random: random.NewSystem(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
