// Package repetition implements the spaced-repetition feedback state machine
// and the due-set queries over persisted learning state.
package repetition

import (
	"fmt"
	"strings"
	"time"
)

// KeyPrefix prefixes every learning state key in the state store.
const KeyPrefix = "sr_"

// Key returns the state store key of a tidbit.
func Key(tidbitID string) string {
	return KeyPrefix + tidbitID
}

// Action is the user's response to a tidbit.
type Action string

const (
	ActionKnew      Action = "knew"
	ActionDidntKnow Action = "didnt_know"
	ActionSave      Action = "save"
	ActionUnsave    Action = "unsave"
)

// ParseAction converts user input such as "knew" or "didnt-know" to an Action.
func ParseAction(s string) (Action, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch Action(normalized) {
	case ActionKnew, ActionDidntKnow, ActionSave, ActionUnsave:
		return Action(normalized), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// MasteryLevel is a coarse progress tag derived from consecutive correct answers.
type MasteryLevel string

const (
	MasteryNew      MasteryLevel = "new"
	MasteryLearning MasteryLevel = "learning"
	MasteryMastered MasteryLevel = "mastered"
)

// MasteredStreak is the correct streak at which a tidbit counts as mastered.
const MasteredStreak = 3

// LearningState is the per-tidbit learning progress.
type LearningState struct {
	TidbitID      string       `json:"tidbitId"`
	LastSeen      time.Time    `json:"lastSeen"`
	TotalViews    int          `json:"totalViews"`
	TotalCorrect  int          `json:"totalCorrect"`
	CorrectStreak int          `json:"correctStreak"`
	NextDue       *time.Time   `json:"nextDue"`
	MasteryLevel  MasteryLevel `json:"masteryLevel"`
	Saved         bool         `json:"saved"`
}

// IsDue reports whether the tidbit should resurface at now.
func (s LearningState) IsDue(now time.Time) bool {
	return s.NextDue != nil && !s.NextDue.After(now)
}

// IsScheduled reports whether the tidbit has a next due time at all.
func (s LearningState) IsScheduled() bool {
	return s.NextDue != nil
}
