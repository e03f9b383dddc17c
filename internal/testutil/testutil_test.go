package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/tidbit/internal/config"
)

func TestSetupTestConfig(t *testing.T) {
	tests := []struct {
		name           string
		opts           []ConfigOption
		wantContent    map[string][]string
		wantCategories []string
	}{
		{
			name:        "defaults",
			wantContent: DefaultContent,
		},
		{
			name: "custom content and categories",
			opts: []ConfigOption{
				WithContent(map[string][]string{"math": {"Zero is an even number."}}),
				WithPlanCategories("math", "science"),
			},
			wantContent:    map[string][]string{"math": {"Zero is an even number."}},
			wantCategories: []string{"math", "science"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath, contentPath := SetupTestConfig(t, tmpDir, tt.opts...)
			assert.Equal(t, filepath.Join(tmpDir, "config.yml"), configPath)
			assert.Equal(t, filepath.Join(tmpDir, "tidbits.yml"), contentPath)

			b, err := os.ReadFile(contentPath)
			require.NoError(t, err)
			var gotContent map[string][]string
			require.NoError(t, yaml.Unmarshal(b, &gotContent))
			assert.Equal(t, tt.wantContent, gotContent)

			loader, err := config.NewConfigLoader(configPath)
			require.NoError(t, err)
			cfg, err := loader.Load()
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(tmpDir, "state"), cfg.Store.Path)
			assert.Equal(t, contentPath, cfg.Content.File)
			assert.Equal(t, 10, cfg.Plan.DailyTarget)
			assert.ElementsMatch(t, tt.wantCategories, cfg.Plan.Categories)
		})
	}
}
