// Package statistics computes learning progress per category and summaries
// of past study sessions.
package statistics

import (
	"math"
	"sort"
	"time"

	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/repetition"
)

// CategoryProgress is the learning progress of one category.
type CategoryProgress struct {
	CategoryID     string `json:"categoryId"`
	Name           string `json:"name"`
	Total          int    `json:"total"`
	Seen           int    `json:"seen"`
	Learning       int    `json:"learning"`
	Mastered       int    `json:"mastered"`
	Due            int    `json:"due"`
	MasteryPercent int    `json:"masteryPercent"`
}

// CalculateCategoryProgress counts learning states per category.
// States of tidbits that are no longer in the catalog, or that belong to
// other categories, are ignored.
func CalculateCategoryProgress(catalog *content.Catalog, states []repetition.LearningState, categories []string, now time.Time) []CategoryProgress {
	names := make(map[string]string)
	for _, c := range catalog.Categories() {
		names[c.ID] = c.Name
	}

	index := make(map[string]int, len(categories))
	progress := make([]CategoryProgress, 0, len(categories))
	for _, categoryID := range categories {
		if _, ok := index[categoryID]; ok || categoryID == "" {
			continue
		}
		index[categoryID] = len(progress)
		name := names[categoryID]
		if name == "" {
			name = categoryID
		}
		progress = append(progress, CategoryProgress{
			CategoryID: categoryID,
			Name:       name,
			Total:      len(catalog.Tidbits([]string{categoryID})),
		})
	}

	for _, state := range states {
		tidbit, ok := catalog.Lookup(state.TidbitID)
		if !ok {
			continue
		}
		i, ok := index[tidbit.Category]
		if !ok {
			continue
		}

		p := &progress[i]
		p.Seen++
		switch {
		case state.MasteryLevel == repetition.MasteryMastered:
			p.Mastered++
		case state.MasteryLevel == repetition.MasteryLearning || state.IsScheduled():
			p.Learning++
		}
		if state.IsDue(now) {
			p.Due++
		}
	}

	for i := range progress {
		progress[i].MasteryPercent = percent(progress[i].Mastered, progress[i].Total)
	}
	return progress
}

func percent(numerator, denominator int) int {
	if denominator <= 0 {
		return 0
	}
	return int(math.Round(float64(numerator) / float64(denominator) * 100))
}

// SortForHome orders categories by most due first, then lowest mastery,
// then largest total. The input is not modified.
func SortForHome(progress []CategoryProgress) []CategoryProgress {
	sorted := make([]CategoryProgress, len(progress))
	copy(sorted, progress)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Due != b.Due {
			return a.Due > b.Due
		}
		if a.MasteryPercent != b.MasteryPercent {
			return a.MasteryPercent < b.MasteryPercent
		}
		return a.Total > b.Total
	})
	return sorted
}
