// Package content provides tidbit identity, content stores and the in-memory catalog
// used for reverse lookups from tidbit ids.
package content

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const idPrefix = "tidbit_"

// Tidbit is a short piece of learning content.
type Tidbit struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"category"`
}

// Category describes a group of tidbits.
type Category struct {
	ID          string `db:"id" json:"id" yaml:"id"`
	Name        string `db:"name" json:"name" yaml:"name"`
	Description string `db:"description" json:"description" yaml:"description"`
}

// ID returns the stable identity of a tidbit: a fixed-width hex digest of
// text and category. Distinct content may collide in theory; ids are
// treated as best-effort stable.
func ID(text, category string) string {
	return fmt.Sprintf("%s%016x", idPrefix, xxhash.Sum64String(text+"|"+category))
}

// NewTidbit builds a Tidbit with its derived id.
func NewTidbit(text, category string) Tidbit {
	return Tidbit{
		ID:       ID(text, category),
		Text:     text,
		Category: category,
	}
}

// NewCategory builds a Category named after its id.
func NewCategory(id string) Category {
	return Category{ID: id, Name: categoryName(id)}
}

// categoryName turns a category id such as "fun-facts" into "Fun Facts".
func categoryName(categoryID string) string {
	words := strings.Split(categoryID, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
