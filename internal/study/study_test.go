package study

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/tidbit/internal/clock"
	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/kvstore"
	"github.com/at-ishikawa/tidbit/internal/random"
	"github.com/at-ishikawa/tidbit/internal/repetition"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type staticContent map[string][]string

func (s staticContent) Categories(ctx context.Context) ([]content.Category, error) {
	var categories []content.Category
	for _, id := range []string{"history", "science", "art"} {
		if _, ok := s[id]; ok {
			categories = append(categories, content.Category{ID: id})
		}
	}
	return categories, nil
}

func (s staticContent) TidbitsByCategory(ctx context.Context, categoryID string) ([]string, error) {
	return s[categoryID], nil
}

func texts(category string, n int) []string {
	result := make([]string, n)
	for i := range result {
		result[i] = fmt.Sprintf("%s fact number %d", category, i)
	}
	return result
}

type fixture struct {
	store   kvstore.Store
	engine  *repetition.Engine
	clock   *clock.Fake
	content staticContent
}

func newFixture(t *testing.T, c staticContent) *fixture {
	t.Helper()
	store, err := kvstore.Open(kvstore.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	fake := clock.NewFake(t0)
	return &fixture{
		store:   store,
		engine:  repetition.NewEngine(store, repetition.WithClock(fake), repetition.WithRandom(random.New(7))),
		clock:   fake,
		content: c,
	}
}

// makeDue records "didnt know" for the tidbits and moves past their due time.
func (f *fixture) makeDue(t *testing.T, category string, indexes ...int) []string {
	t.Helper()
	var ids []string
	for _, i := range indexes {
		id := content.ID(f.content[category][i], category)
		require.NotNil(t, f.engine.RecordFeedback(context.Background(), id, repetition.ActionDidntKnow))
		ids = append(ids, id)
	}
	f.clock.Advance(6 * time.Hour)
	return ids
}

// makeSeen records "knew" so the tidbits are neither due nor new.
func (f *fixture) makeSeen(t *testing.T, category string, indexes ...int) {
	t.Helper()
	for _, i := range indexes {
		id := content.ID(f.content[category][i], category)
		require.NotNil(t, f.engine.RecordFeedback(context.Background(), id, repetition.ActionKnew))
	}
}

func (f *fixture) opts(seed uint64) []Option {
	return []Option{WithClock(f.clock), WithRandom(random.New(seed))}
}
