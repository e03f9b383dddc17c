package study

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/kvstore"
	"github.com/at-ishikawa/tidbit/internal/repetition"
)

const (
	// CurrentSessionKey is the state store key of the active session.
	CurrentSessionKey = "current_study_session"
	// HistoryKey is the state store key of finished sessions, newest first.
	HistoryKey = "study_session_history"

	defaultHistoryLimit = 50
)

// Stats counts the responses of a session.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Knew      int `json:"knew"`
	DidntKnow int `json:"didntKnow"`
	Saved     int `json:"saved"`
	// Accuracy is Knew/Completed in [0, 1], set when the session ends.
	Accuracy float64 `json:"accuracy"`
}

// CompletedTidbit is a session tidbit with the response it received.
type CompletedTidbit struct {
	content.Tidbit
	Action      repetition.Action `json:"action"`
	CompletedAt time.Time         `json:"completedAt"`
}

// Session is a study session. EndTime is set once the session is archived.
type Session struct {
	ID               string            `json:"id"`
	Tidbits          []content.Tidbit  `json:"tidbits"`
	CurrentIndex     int               `json:"currentIndex"`
	CompletedTidbits []CompletedTidbit `json:"completedTidbits"`
	Stats            Stats             `json:"stats"`
	StartTime        time.Time         `json:"startTime"`
	EndTime          *time.Time        `json:"endTime,omitempty"`
	DurationMinutes  int               `json:"durationMinutes,omitempty"`
}

func (s *Session) contains(tidbitID string) (content.Tidbit, bool) {
	for _, t := range s.Tidbits {
		if t.ID == tidbitID {
			return t, true
		}
	}
	return content.Tidbit{}, false
}

func (s *Session) completed(tidbitID string) bool {
	for _, t := range s.CompletedTidbits {
		if t.ID == tidbitID {
			return true
		}
	}
	return false
}

// Runtime tracks the single active study session and its history.
type Runtime struct {
	store        kvstore.Store
	engine       StateEngine
	historyLimit int
	options

	mu sync.Mutex
}

// NewRuntime creates a Runtime.
func NewRuntime(store kvstore.Store, engine StateEngine, opts ...Option) *Runtime {
	return &Runtime{
		store:        store,
		engine:       engine,
		historyLimit: defaultHistoryLimit,
		options:      newOptions(opts),
	}
}

// Start begins a new session over tidbits, replacing any active one.
func (r *Runtime) Start(ctx context.Context, tidbits []content.Tidbit) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tidbits == nil {
		tidbits = []content.Tidbit{}
	}
	session := &Session{
		ID:               "session_" + uuid.NewString(),
		Tidbits:          tidbits,
		CompletedTidbits: []CompletedTidbit{},
		Stats:            Stats{Total: len(tidbits)},
		StartTime:        r.clock.Now(),
	}
	if err := r.saveCurrent(ctx, session); err != nil {
		return nil, err
	}
	r.logger.Info("started study session", "sessionID", session.ID, "tidbits", len(tidbits))
	return session, nil
}

// Current returns the active session, or nil if there is none.
// An unreadable stored session counts as none.
func (r *Runtime) Current(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current(ctx)
}

// Next returns the tidbit at the current position, or nil when the session is
// finished or there is no active session.
func (r *Runtime) Next(ctx context.Context) (*content.Tidbit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.current(ctx)
	if err != nil || session == nil {
		return nil, err
	}
	if session.CurrentIndex >= len(session.Tidbits) {
		return nil, nil
	}
	tidbit := session.Tidbits[session.CurrentIndex]
	return &tidbit, nil
}

// RecordFeedback records a response in the state engine and the session.
// A tidbit advances the session only the first time it receives feedback.
func (r *Runtime) RecordFeedback(ctx context.Context, tidbitID string, action repetition.Action) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		r.logger.Warn("no active session to record feedback", "tidbitID", tidbitID)
		return nil, nil
	}
	if tidbitID == "" {
		r.logger.Warn("ignoring session feedback without a tidbit id", "action", action)
		return session, nil
	}

	r.engine.RecordFeedback(ctx, tidbitID, action)

	// Repeated feedback is still counted, so Knew can exceed Completed.
	switch action {
	case repetition.ActionKnew:
		session.Stats.Knew++
	case repetition.ActionDidntKnow:
		session.Stats.DidntKnow++
	case repetition.ActionSave:
		session.Stats.Saved++
	}

	if tidbit, ok := session.contains(tidbitID); ok && !session.completed(tidbitID) {
		session.CompletedTidbits = append(session.CompletedTidbits, CompletedTidbit{
			Tidbit:      tidbit,
			Action:      action,
			CompletedAt: r.clock.Now(),
		})
		session.Stats.Completed++
		session.CurrentIndex++
	}

	if err := r.saveCurrent(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// End archives the active session and returns it with its final stats.
// It returns nil when there is no active session, so calling it twice is safe.
func (r *Runtime) End(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	end := r.clock.Now()
	session.EndTime = &end
	session.DurationMinutes = int(math.Round(end.Sub(session.StartTime).Minutes()))
	if session.Stats.Completed > 0 {
		session.Stats.Accuracy = math.Min(1, float64(session.Stats.Knew)/float64(session.Stats.Completed))
	}

	history, err := r.history(ctx)
	if err != nil {
		r.logger.Warn("discarding unreadable session history", "error", err)
		history = nil
	}
	history = append([]Session{*session}, history...)
	if len(history) > r.historyLimit {
		history = history[:r.historyLimit]
	}
	b, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal() > %w", err)
	}
	if err := r.store.Set(ctx, HistoryKey, string(b)); err != nil {
		return nil, fmt.Errorf("store.Set() > %w", err)
	}
	if err := r.store.Delete(ctx, CurrentSessionKey); err != nil {
		return nil, fmt.Errorf("store.Delete() > %w", err)
	}

	r.logger.Info("ended study session",
		"sessionID", session.ID,
		"completed", session.Stats.Completed,
		"total", session.Stats.Total,
		"durationMinutes", session.DurationMinutes,
	)
	return session, nil
}

// Clear drops the active session without archiving it.
func (r *Runtime) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, CurrentSessionKey); err != nil {
		return fmt.Errorf("store.Delete() > %w", err)
	}
	return nil
}

// History returns finished sessions, newest first.
func (r *Runtime) History(ctx context.Context) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history(ctx)
}

func (r *Runtime) current(ctx context.Context) (*Session, error) {
	raw, ok, err := r.store.Get(ctx, CurrentSessionKey)
	if err != nil {
		return nil, fmt.Errorf("store.Get() > %w", err)
	}
	if !ok {
		return nil, nil
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		r.logger.Warn("ignoring unreadable active session", "error", err)
		return nil, nil
	}
	return &session, nil
}

func (r *Runtime) saveCurrent(ctx context.Context, session *Session) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("json.Marshal() > %w", err)
	}
	if err := r.store.Set(ctx, CurrentSessionKey, string(b)); err != nil {
		return fmt.Errorf("store.Set() > %w", err)
	}
	return nil
}

func (r *Runtime) history(ctx context.Context) ([]Session, error) {
	raw, ok, err := r.store.Get(ctx, HistoryKey)
	if err != nil {
		return nil, fmt.Errorf("store.Get() > %w", err)
	}
	if !ok {
		return []Session{}, nil
	}
	var history []Session
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, fmt.Errorf("json.Unmarshal() > %w", err)
	}
	return history, nil
}
