package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/repetition"
)

func TestCalculateCategoryProgress(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	catalog := content.NewCatalog(
		[]content.Category{{ID: "science", Name: "Science"}, {ID: "history", Name: "History"}},
		map[string][]string{
			"science": {"s1", "s2", "s3", "s4"},
			"history": {"h1", "h2"},
		},
	)
	states := []repetition.LearningState{
		{TidbitID: content.ID("s1", "science"), MasteryLevel: repetition.MasteryMastered, NextDue: &future},
		{TidbitID: content.ID("s2", "science"), MasteryLevel: repetition.MasteryLearning, NextDue: &past},
		{TidbitID: content.ID("s3", "science"), MasteryLevel: repetition.MasteryNew, Saved: true},
		{TidbitID: content.ID("h1", "history"), MasteryLevel: repetition.MasteryLearning, NextDue: &past},
		{TidbitID: "tidbit_removed", MasteryLevel: repetition.MasteryMastered},
	}

	got := CalculateCategoryProgress(catalog, states, []string{"science", "art", "science"}, now)
	assert.Equal(t, []CategoryProgress{
		{CategoryID: "science", Name: "Science", Total: 4, Seen: 3, Learning: 1, Mastered: 1, Due: 1, MasteryPercent: 25},
		{CategoryID: "art", Name: "art", Total: 0},
	}, got)
}

func TestSortForHome(t *testing.T) {
	input := []CategoryProgress{
		{CategoryID: "a", Due: 0, MasteryPercent: 10, Total: 5},
		{CategoryID: "b", Due: 3, MasteryPercent: 90, Total: 5},
		{CategoryID: "c", Due: 0, MasteryPercent: 10, Total: 50},
		{CategoryID: "d", Due: 0, MasteryPercent: 5, Total: 1},
		{CategoryID: "e", Due: 3, MasteryPercent: 20, Total: 1},
	}

	got := SortForHome(input)
	var ids []string
	for _, p := range got {
		ids = append(ids, p.CategoryID)
	}
	assert.Equal(t, []string{"e", "b", "d", "c", "a"}, ids)
	assert.Equal(t, "a", input[0].CategoryID)
}
