package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeContentFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "tidbits.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string][]string
		wantErr bool
	}{
		{
			name:  "json document",
			input: `{"science": ["Water boils at 100C at sea level."], "history": []}`,
			want: map[string][]string{
				"science": {"Water boils at 100C at sea level."},
				"history": {},
			},
		},
		{
			name: "yaml document",
			input: `science:
  - Light from the Sun takes about eight minutes to reach Earth.
  - Octopuses have three hearts.
`,
			want: map[string][]string{
				"science": {
					"Light from the Sun takes about eight minutes to reach Earth.",
					"Octopuses have three hearts.",
				},
			},
		},
		{
			name:    "category value is not a list",
			input:   `{"science": "nope"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := writeContentFile(t, t.TempDir(), `{
  "science": ["Octopuses have three hearts.", "Honey never spoils."],
  "fun-facts": ["Bananas are berries."]
}`)
	store := NewFileStore(path)

	categories, err := store.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Category{
		{ID: "fun-facts", Name: "Fun Facts"},
		{ID: "science", Name: "Science"},
	}, categories)

	texts, err := store.TidbitsByCategory(ctx, "science")
	require.NoError(t, err)
	assert.Equal(t, []string{"Octopuses have three hearts.", "Honey never spoils."}, texts)

	texts, err = store.TidbitsByCategory(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, texts)
}

func TestFileStore_ReloadsOnChange(t *testing.T) {
	ctx := context.Background()
	path := writeContentFile(t, t.TempDir(), `{"science": ["Octopuses have three hearts."]}`)
	store := NewFileStore(path)

	first, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, first.Tidbits["science"], 1)
	assert.NotEmpty(t, first.Version)

	require.NoError(t, os.WriteFile(path, []byte(`{"science": ["Octopuses have three hearts.", "Honey never spoils."]}`), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, second.Tidbits["science"], 2)
	assert.NotEqual(t, first.Version, second.Version)
	assert.True(t, second.LastModified.After(first.LastModified))
}

func TestFileStore_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	_, err := store.Categories(context.Background())
	assert.Error(t, err)
}

func TestFileStore_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	path := writeContentFile(t, t.TempDir(), `{"science": ["Octopuses have three hearts."]}`)
	store := NewFileStore(path)

	snapshot, err := store.Snapshot(ctx)
	require.NoError(t, err)
	snapshot.Tidbits["science"][0] = "changed"

	texts, err := store.TidbitsByCategory(ctx, "science")
	require.NoError(t, err)
	assert.Equal(t, []string{"Octopuses have three hearts."}, texts)
}
