package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
			CORS:            CORSConfig{AllowedOrigins: []string{"http://localhost:8081"}},
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "tidbit",
			Username: "user",
		},
		Store: StoreConfig{
			Path:       filepath.Join(".tidbit", "state"),
			GCInterval: 10 * time.Minute,
		},
		Content: ContentConfig{
			Source: "file",
			File:   "tidbits.yml",
		},
		Push: PushConfig{
			BaseURL:           "https://exp.host",
			Timeout:           10 * time.Second,
			RetryAttempts:     2,
			RetryDelay:        500 * time.Millisecond,
			RequestsPerSecond: 6,
			MaxBatchSize:      100,
		},
		Scheduler: SchedulerConfig{
			Workers:            16,
			DeviceTimeout:      5 * time.Second,
			RegistryTimeout:    15 * time.Second,
			RegistryAttempts:   3,
			RegistryRetryDelay: time.Second,
			ClaimRetention:     24 * time.Hour,
		},
		Plan: PlanConfig{
			DailyTarget:      10,
			DueRatio:         0.6,
			MinutesPerTidbit: 1,
			Categories:       []string{},
		},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func(t *testing.T, dir string) *Config
		wantErrorContains []string
	}{
		{
			name:          "no config file uses defaults",
			configContent: "",
			want: func(t *testing.T, dir string) *Config {
				return defaultConfig()
			},
		},
		{
			name: "valid config file with custom values",
			configContent: `server:
  port: 9090
store:
  in_memory: true
  path: ""
scheduler:
  workers: 4
  device_timeout: 2s
  claims_enabled: true
plan:
  daily_target: 20
  due_ratio: 0.5
  categories: [science, fun-facts]
timezone: Asia/Tokyo
`,
			want: func(t *testing.T, dir string) *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 9090
				cfg.Store.InMemory = true
				cfg.Store.Path = ""
				cfg.Scheduler.Workers = 4
				cfg.Scheduler.DeviceTimeout = 2 * time.Second
				cfg.Scheduler.ClaimsEnabled = true
				cfg.Plan.DailyTarget = 20
				cfg.Plan.DueRatio = 0.5
				cfg.Plan.Categories = []string{"science", "fun-facts"}
				cfg.Timezone = "Asia/Tokyo"
				return cfg
			},
		},
		{
			name:            "explicit config file with database content",
			useExplicitPath: true,
			configContent: `content:
  source: database
  file: ""
database:
  host: db.example.com
  database: tidbit_prod
`,
			env: map[string]string{
				"DB_PASSWORD":       "secret",
				"EXPO_ACCESS_TOKEN": "expo-token",
			},
			want: func(t *testing.T, dir string) *Config {
				cfg := defaultConfig()
				cfg.Content.Source = "database"
				cfg.Content.File = ""
				cfg.Database.Host = "db.example.com"
				cfg.Database.Database = "tidbit_prod"
				cfg.Database.Password = "secret"
				cfg.Push.AccessToken = "expo-token"
				return cfg
			},
		},
		{
			name: "existing notification template",
			configContent: `content:
  notification_template: notification.txt.go.tmpl
`,
			want: func(t *testing.T, dir string) *Config {
				cfg := defaultConfig()
				cfg.Content.NotificationTemplate = "notification.txt.go.tmpl"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `server:
  port: 9090
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "out of range values",
			configContent: `push:
  max_batch_size: 500
plan:
  due_ratio: 1.5
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
				"max_batch_size",
				"due_ratio",
			},
		},
		{
			name: "missing notification template",
			configContent: `content:
  notification_template: missing.tmpl
`,
			wantErr: true,
			wantErrorContains: []string{
				"content.notification_template must be an existing and readable file",
			},
		},
		{
			name: "invalid category id",
			configContent: `plan:
  categories: [Science]
`,
			wantErr: true,
			wantErrorContains: []string{
				"plan.categories[0] must use lowercase letters, numbers and hyphens only",
			},
		},
		{
			name: "unknown content source",
			configContent: `content:
  source: s3
`,
			wantErr: true,
			wantErrorContains: []string{
				"source",
			},
		},
		{
			name:          "unknown timezone",
			configContent: "timezone: Mars/Olympus_Mons\n",
			wantErr:       true,
			wantErrorContains: []string{
				"timezone",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notification.txt.go.tmpl"), []byte("{{ .Text }}"), 0644))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "config.yml")
				err := os.WriteFile(configPath, []byte(tt.configContent), 0644)
				require.NoError(t, err)
			} else if tt.configContent != "" {
				err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644)
				require.NoError(t, err)
			}
			t.Chdir(tempDir)

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want(t, tempDir), got)
		})
	}
}

func TestConfig_Location(t *testing.T) {
	loc, err := Config{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = Config{Timezone: "Asia/Tokyo"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())

	_, err = Config{Timezone: "Nowhere/Else"}.Location()
	assert.Error(t, err)
}
