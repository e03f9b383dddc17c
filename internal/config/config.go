package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Store     StoreConfig     `mapstructure:"store"`
	Content   ContentConfig   `mapstructure:"content"`
	Push      PushConfig      `mapstructure:"push"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Plan      PlanConfig      `mapstructure:"plan"`
	// Timezone is an IANA name. Empty means the system time zone.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// StoreConfig configures the learning state store.
type StoreConfig struct {
	Path       string        `mapstructure:"path" validate:"required_unless=InMemory true"`
	InMemory   bool          `mapstructure:"in_memory"`
	GCInterval time.Duration `mapstructure:"gc_interval"`
}

type ContentConfig struct {
	// Source is either "file" or "database".
	Source               string `mapstructure:"source" validate:"oneof=file database"`
	File                 string `mapstructure:"file" validate:"required_if=Source file"`
	NotificationTemplate string `mapstructure:"notification_template" validate:"omitempty,file"`
}

type PushConfig struct {
	BaseURL           string        `mapstructure:"base_url" validate:"required,url"`
	AccessToken       string        `mapstructure:"access_token"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RetryAttempts     uint          `mapstructure:"retry_attempts"`
	RetryDelay        time.Duration `mapstructure:"retry_delay"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"min=0"`
	MaxBatchSize      int           `mapstructure:"max_batch_size" validate:"min=1,max=100"`
}

type SchedulerConfig struct {
	Workers            int           `mapstructure:"workers" validate:"min=1"`
	DeviceTimeout      time.Duration `mapstructure:"device_timeout"`
	RegistryTimeout    time.Duration `mapstructure:"registry_timeout"`
	RegistryAttempts   uint          `mapstructure:"registry_attempts" validate:"min=1"`
	RegistryRetryDelay time.Duration `mapstructure:"registry_retry_delay"`
	// ClaimsEnabled must be set when more than one dispatcher runs.
	ClaimsEnabled  bool          `mapstructure:"claims_enabled"`
	ClaimRetention time.Duration `mapstructure:"claim_retention"`
}

type PlanConfig struct {
	DailyTarget      int      `mapstructure:"daily_target" validate:"min=1"`
	DueRatio         float64  `mapstructure:"due_ratio" validate:"gt=0,lte=1"`
	MinutesPerTidbit int      `mapstructure:"minutes_per_tidbit" validate:"min=1"`
	Categories       []string `mapstructure:"categories" validate:"dive,category_id"`
}

// Location returns the configured time zone.
func (cfg Config) Location() (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation(%s) > %w", cfg.Timezone, err)
	}
	return loc, nil
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tidbit")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:8081"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "tidbit")
	v.SetDefault("database.username", "user")
	v.SetDefault("store.path", filepath.Join(".tidbit", "state"))
	v.SetDefault("store.in_memory", false)
	v.SetDefault("store.gc_interval", 10*time.Minute)
	v.SetDefault("content.source", "file")
	v.SetDefault("content.file", "tidbits.yml")
	// Template is optional - if not specified, will use embedded fallback template
	v.SetDefault("content.notification_template", "")
	v.SetDefault("push.base_url", "https://exp.host")
	v.SetDefault("push.timeout", 10*time.Second)
	v.SetDefault("push.retry_attempts", 2)
	v.SetDefault("push.retry_delay", 500*time.Millisecond)
	v.SetDefault("push.requests_per_second", 6)
	v.SetDefault("push.max_batch_size", 100)
	v.SetDefault("scheduler.workers", 16)
	v.SetDefault("scheduler.device_timeout", 5*time.Second)
	v.SetDefault("scheduler.registry_timeout", 15*time.Second)
	v.SetDefault("scheduler.registry_attempts", 3)
	v.SetDefault("scheduler.registry_retry_delay", time.Second)
	v.SetDefault("scheduler.claims_enabled", false)
	v.SetDefault("scheduler.claim_retention", 24*time.Hour)
	v.SetDefault("plan.daily_target", 10)
	v.SetDefault("plan.due_ratio", 0.6)
	v.SetDefault("plan.minutes_per_tidbit", 1)
	v.SetDefault("plan.categories", []string{})
	v.SetDefault("timezone", "")

	// Bind secrets to environment variables only (not from config file)
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("push.access_token", "EXPO_ACCESS_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind EXPO_ACCESS_TOKEN environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validator.Struct() > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
