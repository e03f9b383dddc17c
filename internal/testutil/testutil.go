// Package testutil provides shared test helpers for creating config files and content fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// DefaultContent is a small content document with two categories.
var DefaultContent = map[string][]string{
	"science": {
		"Honey never spoils because of its low moisture and high acidity.",
		"Octopuses have three hearts and blue blood.",
	},
	"history": {
		"The Great Wall of China took more than two thousand years to build.",
	},
}

// ConfigOption configures optional fields when creating a config fixture.
type ConfigOption func(*testConfig)

type testConfig struct {
	content    map[string][]string
	categories []string
}

// WithContent replaces the content written next to the config file.
func WithContent(content map[string][]string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.content = content
	}
}

// WithPlanCategories sets the categories selected for study.
func WithPlanCategories(categories ...string) ConfigOption {
	return func(cfg *testConfig) {
		cfg.categories = categories
	}
}

// WriteContentFile writes a content document of the shape `category → [text]`.
func WriteContentFile(t *testing.T, path string, content map[string][]string) {
	t.Helper()

	b, err := yaml.Marshal(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0600))
}

// SetupTestConfig creates a content file and a config file with a persistent
// state store under tmpDir. By default the content is DefaultContent and no
// categories are selected.
// Returns the paths to the generated config and content files.
func SetupTestConfig(t *testing.T, tmpDir string, opts ...ConfigOption) (configPath, contentPath string) {
	t.Helper()

	cfg := testConfig{content: DefaultContent}
	for _, opt := range opts {
		opt(&cfg)
	}

	contentPath = filepath.Join(tmpDir, "tidbits.yml")
	WriteContentFile(t, contentPath, cfg.content)

	var categories string
	if len(cfg.categories) > 0 {
		categories = "  categories:\n    - " + strings.Join(cfg.categories, "\n    - ") + "\n"
	}
	configContent := fmt.Sprintf(`store:
  path: %s
content:
  file: %s
plan:
  daily_target: 10
%s`,
		filepath.Join(tmpDir, "state"),
		contentPath,
		categories,
	)

	configPath = filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0600))
	return configPath, contentPath
}
