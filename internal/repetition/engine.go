package repetition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/tidbit/internal/clock"
	"github.com/at-ishikawa/tidbit/internal/kvstore"
	"github.com/at-ishikawa/tidbit/internal/random"
)

const (
	didntKnowMinInterval = 3 * time.Hour
	didntKnowMaxInterval = 6 * time.Hour
	firstKnewInterval    = 24 * time.Hour
	knewMinInterval      = 48 * time.Hour
	knewMaxInterval      = 72 * time.Hour
)

// Engine records feedback and answers due-set queries.
// All state lives in the state store; the engine holds only per-tidbit locks.
type Engine struct {
	store  kvstore.Store
	clock  clock.Clock
	random *random.Source
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*tidbitLock
}

type tidbitLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for lastSeen and nextDue.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRandom sets the source of interval jitter.
func WithRandom(r *random.Source) Option {
	return func(e *Engine) { e.random = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an Engine over store.
func NewEngine(store kvstore.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		clock:  clock.System(),
		random: random.NewSystem(),
		logger: slog.Default(),
		locks:  make(map[string]*tidbitLock),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lock serializes read-modify-write cycles on one tidbit.
func (e *Engine) lock(tidbitID string) func() {
	e.mu.Lock()
	l, ok := e.locks[tidbitID]
	if !ok {
		l = &tidbitLock{}
		e.locks[tidbitID] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, tidbitID)
		}
		e.mu.Unlock()
	}
}

// State returns the learning state of a tidbit, or nil if it has none.
// Unreadable state is logged and reported as nil.
func (e *Engine) State(ctx context.Context, tidbitID string) *LearningState {
	if tidbitID == "" {
		return nil
	}
	state, err := e.load(ctx, tidbitID)
	if err != nil {
		e.logger.Warn("failed to load learning state", "tidbitID", tidbitID, "error", err)
		return nil
	}
	return state
}

func (e *Engine) load(ctx context.Context, tidbitID string) (*LearningState, error) {
	raw, ok, err := e.store.Get(ctx, Key(tidbitID))
	if err != nil {
		return nil, fmt.Errorf("store.Get() > %w", err)
	}
	if !ok {
		return nil, nil
	}
	state, err := decodeState(Key(tidbitID), raw)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (e *Engine) save(ctx context.Context, state *LearningState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("json.Marshal() > %w", err)
	}
	if err := e.store.Set(ctx, Key(state.TidbitID), string(b)); err != nil {
		return fmt.Errorf("store.Set() > %w", err)
	}
	return nil
}

// RecordFeedback applies a user's response to a tidbit and persists the result.
// Invalid input is logged and ignored; it never returns an error to the caller.
func (e *Engine) RecordFeedback(ctx context.Context, tidbitID string, action Action) *LearningState {
	if tidbitID == "" {
		e.logger.Warn("cannot record feedback: tidbit id is empty", "action", action)
		return nil
	}

	unlock := e.lock(tidbitID)
	defer unlock()

	raw, ok, err := e.store.Get(ctx, Key(tidbitID))
	if err != nil {
		e.logger.Error("failed to load learning state", "tidbitID", tidbitID, "error", err)
		return nil
	}
	var state *LearningState
	if ok {
		state, err = decodeState(Key(tidbitID), raw)
		if err != nil {
			// A malformed entry would block the tidbit forever; start over.
			e.logger.Warn("discarding malformed learning state", "tidbitID", tidbitID, "error", err)
			state = nil
		}
	}

	switch action {
	case ActionKnew, ActionDidntKnow, ActionSave, ActionUnsave:
	default:
		e.logger.Warn("cannot record feedback: unknown action", "tidbitID", tidbitID, "action", action)
		return state
	}

	now := e.clock.Now().UTC()
	if state == nil {
		state = &LearningState{
			TidbitID:     tidbitID,
			LastSeen:     now,
			MasteryLevel: MasteryNew,
		}
	}
	next := apply(*state, action, now, e.random)

	if err := e.save(ctx, &next); err != nil {
		e.logger.Error("failed to save learning state", "tidbitID", tidbitID, "error", err)
		return nil
	}
	e.logger.Debug("recorded feedback",
		"tidbitID", tidbitID,
		"action", action,
		"correctStreak", next.CorrectStreak,
		"masteryLevel", next.MasteryLevel,
	)
	return &next
}

// apply is the feedback state machine.
func apply(state LearningState, action Action, now time.Time, r *random.Source) LearningState {
	state.LastSeen = now
	state.TotalViews++

	switch action {
	case ActionDidntKnow:
		due := now.Add(r.Duration(didntKnowMinInterval, didntKnowMaxInterval))
		state.NextDue = &due
		state.CorrectStreak = 0
		state.MasteryLevel = MasteryLearning
	case ActionKnew:
		state.TotalCorrect++
		state.CorrectStreak++
		var due time.Time
		if state.CorrectStreak == 1 {
			due = now.Add(firstKnewInterval)
		} else {
			due = now.Add(r.Duration(knewMinInterval, knewMaxInterval))
		}
		state.NextDue = &due
		if state.CorrectStreak >= MasteredStreak {
			state.MasteryLevel = MasteryMastered
		} else {
			state.MasteryLevel = MasteryLearning
		}
	case ActionSave:
		state.Saved = true
	case ActionUnsave:
		state.Saved = false
	}
	return state
}

// UpdateNextDue reschedules a tidbit to resurface after d.
// Tidbits without state are left untouched.
func (e *Engine) UpdateNextDue(ctx context.Context, tidbitID string, d time.Duration) *LearningState {
	if tidbitID == "" {
		return nil
	}

	unlock := e.lock(tidbitID)
	defer unlock()

	state, err := e.load(ctx, tidbitID)
	if err != nil {
		e.logger.Warn("failed to load learning state", "tidbitID", tidbitID, "error", err)
		return nil
	}
	if state == nil {
		e.logger.Warn("cannot update next due: tidbit has no state", "tidbitID", tidbitID)
		return nil
	}

	due := e.clock.Now().UTC().Add(d)
	state.NextDue = &due
	if err := e.save(ctx, state); err != nil {
		e.logger.Error("failed to save learning state", "tidbitID", tidbitID, "error", err)
		return nil
	}
	return state
}

// ClearAll deletes every learning state and returns how many were removed.
func (e *Engine) ClearAll(ctx context.Context) (int, error) {
	keys, err := e.store.ListKeys(ctx, KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("store.ListKeys() > %w", err)
	}
	if err := e.store.DeleteMany(ctx, keys); err != nil {
		return 0, fmt.Errorf("store.DeleteMany() > %w", err)
	}
	e.logger.Info("cleared learning state", "count", len(keys))
	return len(keys), nil
}
