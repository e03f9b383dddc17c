package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/tidbit/internal/content"
)

// dueInCategories resolves due ids through the catalog and keeps those in
// categories. A failing due query degrades to an empty pool.
func dueInCategories(ctx context.Context, engine StateEngine, catalog *content.Catalog, categories []string, now time.Time, logger *slog.Logger) []content.Tidbit {
	ids, err := engine.Due(ctx, now)
	if err != nil {
		logger.Warn("failed to query due tidbits", "error", err)
		return nil
	}

	selected := content.CategorySet(categories)
	var due []content.Tidbit
	for _, id := range ids {
		tidbit, ok := catalog.Lookup(id)
		if !ok || !selected[tidbit.Category] {
			continue
		}
		due = append(due, tidbit)
	}
	return due
}

// unseenInCategories returns tidbits in categories without any learning state.
func unseenInCategories(ctx context.Context, engine StateEngine, catalog *content.Catalog, categories []string) ([]content.Tidbit, error) {
	states, err := engine.States(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine.States() > %w", err)
	}
	seen := make(map[string]bool, len(states))
	for _, state := range states {
		seen[state.TidbitID] = true
	}

	var unseen []content.Tidbit
	for _, tidbit := range catalog.Tidbits(categories) {
		if !seen[tidbit.ID] {
			unseen = append(unseen, tidbit)
		}
	}
	return unseen, nil
}
