package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog() *Catalog {
	return NewCatalog(
		[]Category{{ID: "science"}, {ID: "history"}},
		map[string][]string{
			"science": {"Octopuses have three hearts.", "Honey never spoils.", "Octopuses have three hearts."},
			"history": {"The Great Fire of London was in 1666."},
		},
	)
}

func TestCatalog_Lookup(t *testing.T) {
	catalog := newTestCatalog()

	got, ok := catalog.Lookup(ID("Honey never spoils.", "science"))
	require.True(t, ok)
	assert.Equal(t, "science", got.Category)
	assert.Equal(t, "Honey never spoils.", got.Text)

	_, ok = catalog.Lookup("tidbit_0000000000000000")
	assert.False(t, ok)
}

func TestCatalog_Tidbits(t *testing.T) {
	catalog := newTestCatalog()

	tests := []struct {
		name       string
		categories []string
		want       []string
	}{
		{
			name:       "single category drops duplicate texts",
			categories: []string{"science"},
			want:       []string{"Octopuses have three hearts.", "Honey never spoils."},
		},
		{
			name:       "multiple categories keep category order",
			categories: []string{"history", "science", "history"},
			want: []string{
				"The Great Fire of London was in 1666.",
				"Octopuses have three hearts.",
				"Honey never spoils.",
			},
		},
		{
			name:       "unknown category",
			categories: []string{"unknown"},
			want:       nil,
		},
		{
			name:       "no categories",
			categories: nil,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, tidbit := range catalog.Tidbits(tt.categories) {
				got = append(got, tidbit.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, 3, catalog.Len())
}

func TestCategorySet(t *testing.T) {
	set := CategorySet([]string{"science", "history"})
	assert.True(t, set["science"])
	assert.False(t, set["art"])
}
