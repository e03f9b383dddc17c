package study

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/tidbit/internal/content"
	"github.com/at-ishikawa/tidbit/internal/random"
)

// Selector picks a single tidbit to show, preferring due reviews.
type Selector struct {
	engine  StateEngine
	content content.Store
	options
}

// NewSelector creates a Selector.
func NewSelector(engine StateEngine, store content.Store, opts ...Option) *Selector {
	return &Selector{
		engine:  engine,
		content: store,
		options: newOptions(opts),
	}
}

// SelectOne returns a random due tidbit in categories, or a random tidbit of
// categories when none is due. It returns nil when categories hold no content.
func (s *Selector) SelectOne(ctx context.Context, categories []string) (*content.Tidbit, error) {
	if len(categories) == 0 {
		s.logger.Warn("cannot select a tidbit: no categories selected")
		return nil, nil
	}

	catalog, err := content.LoadCatalog(ctx, s.content)
	if err != nil {
		return nil, fmt.Errorf("content.LoadCatalog() > %w", err)
	}

	due := dueInCategories(ctx, s.engine, catalog, categories, s.clock.Now(), s.logger)
	if tidbit, ok := random.Pick(s.random, due); ok {
		s.logger.Debug("selected due tidbit", "tidbitID", tidbit.ID, "dueCount", len(due))
		return &tidbit, nil
	}

	tidbit, ok := random.Pick(s.random, catalog.Tidbits(categories))
	if !ok {
		return nil, nil
	}
	return &tidbit, nil
}
