package repetition

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

func decodeState(key, raw string) (*LearningState, error) {
	var state LearningState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", key, err)
	}
	if state.TidbitID == "" {
		state.TidbitID = strings.TrimPrefix(key, KeyPrefix)
	}
	if state.MasteryLevel == "" {
		state.MasteryLevel = MasteryNew
	}
	return &state, nil
}

// States returns every readable learning state ordered by tidbit id.
// Entries that cannot be read or decoded are logged and skipped.
func (e *Engine) States(ctx context.Context) ([]LearningState, error) {
	keys, err := e.store.ListKeys(ctx, KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("store.ListKeys() > %w", err)
	}

	states := make([]LearningState, 0, len(keys))
	for _, key := range keys {
		raw, ok, err := e.store.Get(ctx, key)
		if err != nil {
			e.logger.Warn("skipping unreadable learning state", "key", key, "error", err)
			continue
		}
		if !ok {
			continue
		}
		state, err := decodeState(key, raw)
		if err != nil {
			e.logger.Warn("skipping malformed learning state", "key", key, "error", err)
			continue
		}
		states = append(states, *state)
	}
	return states, nil
}

func (e *Engine) filter(ctx context.Context, match func(LearningState) bool) ([]string, error) {
	states, err := e.States(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, state := range states {
		if match(state) {
			ids = append(ids, state.TidbitID)
		}
	}
	return ids, nil
}

// Due returns the ids of tidbits whose next due time is at or before now.
func (e *Engine) Due(ctx context.Context, now time.Time) ([]string, error) {
	return e.filter(ctx, func(s LearningState) bool { return s.IsDue(now) })
}

// Scheduled returns the ids of tidbits with any next due time, past or future.
func (e *Engine) Scheduled(ctx context.Context) ([]string, error) {
	return e.filter(ctx, LearningState.IsScheduled)
}

// Saved returns the ids of tidbits the user saved.
func (e *Engine) Saved(ctx context.Context) ([]string, error) {
	return e.filter(ctx, func(s LearningState) bool { return s.Saved })
}

// Mastered returns the ids of mastered tidbits.
func (e *Engine) Mastered(ctx context.Context) ([]string, error) {
	return e.filter(ctx, func(s LearningState) bool { return s.MasteryLevel == MasteryMastered })
}
