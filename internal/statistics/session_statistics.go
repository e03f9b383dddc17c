package statistics

import (
	"fmt"
	"sort"

	"github.com/at-ishikawa/tidbit/internal/repetition"
	"github.com/at-ishikawa/tidbit/internal/study"
)

// SessionStatistics holds study session totals for a time period
type SessionStatistics struct {
	Period          string // "2025-01"
	Sessions        int
	Reviewed        int // Total tidbits answered in the period
	ReviewedUnique  int // Distinct tidbits answered in the period
	Knew            int
	DidntKnow       int
	DurationMinutes int
}

// Accuracy returns Knew/(Knew+DidntKnow), or 0 without answers.
func (s SessionStatistics) Accuracy() float64 {
	if s.Knew+s.DidntKnow == 0 {
		return 0
	}
	return float64(s.Knew) / float64(s.Knew+s.DidntKnow)
}

// SessionSummary holds per-period and aggregate statistics
type SessionSummary struct {
	Periods   []SessionStatistics
	Aggregate SessionStatistics
}

type periodData struct {
	stats  SessionStatistics
	unique map[string]struct{}
}

// SummarizeSessions aggregates finished sessions per month.
// It accepts optional year and month filters (0 means no filter).
// Only the first response to each tidbit in a session is counted.
func SummarizeSessions(history []study.Session, year, month int) SessionSummary {
	periods := make(map[string]*periodData)
	globalUnique := make(map[string]struct{})
	var aggregate SessionStatistics

	for _, session := range history {
		if session.StartTime.IsZero() {
			continue
		}
		if !matchesFilter(session.StartTime.Year(), int(session.StartTime.Month()), year, month) {
			continue
		}

		period := fmt.Sprintf("%d-%02d", session.StartTime.Year(), int(session.StartTime.Month()))
		data := ensurePeriodExists(periods, period)
		data.stats.Sessions++
		data.stats.DurationMinutes += session.DurationMinutes
		aggregate.Sessions++
		aggregate.DurationMinutes += session.DurationMinutes

		for _, completed := range session.CompletedTidbits {
			data.stats.Reviewed++
			aggregate.Reviewed++
			data.unique[completed.ID] = struct{}{}
			globalUnique[completed.ID] = struct{}{}

			switch completed.Action {
			case repetition.ActionKnew:
				data.stats.Knew++
				aggregate.Knew++
			case repetition.ActionDidntKnow:
				data.stats.DidntKnow++
				aggregate.DidntKnow++
			}
		}
	}

	result := SessionSummary{Periods: make([]SessionStatistics, 0, len(periods))}
	for _, data := range periods {
		data.stats.ReviewedUnique = len(data.unique)
		result.Periods = append(result.Periods, data.stats)
	}
	// Sort by period descending (newest first)
	sort.Slice(result.Periods, func(i, j int) bool {
		return result.Periods[i].Period > result.Periods[j].Period
	})

	aggregate.ReviewedUnique = len(globalUnique)
	result.Aggregate = aggregate
	return result
}

func ensurePeriodExists(periods map[string]*periodData, period string) *periodData {
	if periods[period] == nil {
		periods[period] = &periodData{
			stats:  SessionStatistics{Period: period},
			unique: make(map[string]struct{}),
		}
	}
	return periods[period]
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}
