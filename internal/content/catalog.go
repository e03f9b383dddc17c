package content

import (
	"context"
	"fmt"
)

// Catalog is an immutable in-memory index of all content, used to resolve
// tidbit ids back to their text and category.
type Catalog struct {
	categories []Category
	byCategory map[string][]Tidbit
	byID       map[string]Tidbit
}

// NewCatalog builds a catalog from categories and their texts.
// Texts repeated within a category resolve to the same id and are kept once.
func NewCatalog(categories []Category, texts map[string][]string) *Catalog {
	c := &Catalog{
		categories: categories,
		byCategory: make(map[string][]Tidbit, len(texts)),
		byID:       make(map[string]Tidbit),
	}
	for _, category := range categories {
		for _, text := range texts[category.ID] {
			tidbit := NewTidbit(text, category.ID)
			if _, ok := c.byID[tidbit.ID]; ok {
				continue
			}
			c.byID[tidbit.ID] = tidbit
			c.byCategory[category.ID] = append(c.byCategory[category.ID], tidbit)
		}
	}
	return c
}

// LoadCatalog reads every category of store into a Catalog.
func LoadCatalog(ctx context.Context, store Store) (*Catalog, error) {
	categories, err := store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.Categories() > %w", err)
	}

	texts := make(map[string][]string, len(categories))
	for _, category := range categories {
		t, err := store.TidbitsByCategory(ctx, category.ID)
		if err != nil {
			return nil, fmt.Errorf("store.TidbitsByCategory(%s) > %w", category.ID, err)
		}
		texts[category.ID] = t
	}
	return NewCatalog(categories, texts), nil
}

// Categories returns the catalog's categories.
func (c *Catalog) Categories() []Category {
	return c.categories
}

// Lookup resolves a tidbit id.
func (c *Catalog) Lookup(id string) (Tidbit, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Len returns the number of distinct tidbits.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Tidbits returns every tidbit in the given categories, in category order.
// Duplicate and unknown categories are ignored.
func (c *Catalog) Tidbits(categories []string) []Tidbit {
	var result []Tidbit
	seen := make(map[string]bool, len(categories))
	for _, category := range categories {
		if seen[category] {
			continue
		}
		seen[category] = true
		result = append(result, c.byCategory[category]...)
	}
	return result
}

// CategorySet returns categories as a lookup set.
func CategorySet(categories []string) map[string]bool {
	set := make(map[string]bool, len(categories))
	for _, c := range categories {
		set[c] = true
	}
	return set
}
