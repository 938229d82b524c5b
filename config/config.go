package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/cenniki/pricelist-service/internal/catalog"
	"github.com/cenniki/pricelist-service/internal/http/ratelimit"
	"github.com/cenniki/pricelist-service/internal/notify"
	"github.com/cenniki/pricelist-service/internal/producers"
	"github.com/cenniki/pricelist-service/internal/telemetry"
)

// Change-set store backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Reconcile  ReconcileConfig  `mapstructure:"reconcile"`
	ChangeSets ChangeSetsConfig `mapstructure:"changesets"`
	Auth       AuthConfig       `mapstructure:"auth"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Telemetry  telemetry.Config `mapstructure:"telemetry"`
	Producers  []ProducerConfig `mapstructure:"producers"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	BasePath string `mapstructure:"base_path"`
	// ChangeSets selects the change-set store: file, sqlite or postgres
	ChangeSets string `mapstructure:"changesets"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// SchedulerConfig controls the periodic due-change sweeper
type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	// Timezone is the IANA zone activation days are compared in
	Timezone      string        `mapstructure:"timezone"`
	NotifyTimeout time.Duration `mapstructure:"notify_timeout"`
	// StaleClaimAfter is how long a set may stay applying before startup releases it
	StaleClaimAfter time.Duration `mapstructure:"stale_claim_after"`
}

// ReconcileConfig holds the apply conflict policy
type ReconcileConfig struct {
	Policy string `mapstructure:"policy"`
}

// ChangeSetsConfig holds change-set lifecycle options
type ChangeSetsConfig struct {
	RetainCancelled bool `mapstructure:"retain_cancelled"`
}

// AuthConfig holds the API bearer token
type AuthConfig struct {
	Token string `mapstructure:"token"`
}

// RateLimitConfig holds inbound request rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// NotifyConfig configures apply notifications
type NotifyConfig struct {
	Log     bool              `mapstructure:"log"`
	SMTP    notify.SMTPConfig `mapstructure:"smtp"`
	Webhook WebhookConfig     `mapstructure:"webhook"`
}

// WebhookConfig configures the JSON webhook notifier
type WebhookConfig struct {
	URL    string           `mapstructure:"url"`
	Token  string           `mapstructure:"token"`
	Client ratelimit.Config `mapstructure:"client"`
}

// CatalogConfig holds catalog decoding options
type CatalogConfig struct {
	RowPriceColumns []string `mapstructure:"row_price_columns"`
}

// ProducerConfig is one configured producer
type ProducerConfig struct {
	Slug            string   `mapstructure:"slug"`
	Name            string   `mapstructure:"name"`
	Layout          string   `mapstructure:"layout"`
	Recipients      []string `mapstructure:"recipients"`
	RowPriceColumns []string `mapstructure:"row_price_columns"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		// .env is optional
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix("PRICELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPath == "" && os.IsNotExist(err)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads the first .env found; variables already set win
func loadEnvFile() error {
	for _, dir := range []string{".", "./config"} {
		envFile := filepath.Join(dir, ".env")
		if _, err := os.Stat(envFile); err == nil {
			return godotenv.Load(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// bindEnvVars binds conventional unprefixed environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("database.url", "PRICELIST_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("server.port", "PRICELIST_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.host", "PRICELIST_SERVER_HOST", "HOST")
	_ = v.BindEnv("logging.level", "PRICELIST_LOGGING_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("storage.base_path", "PRICELIST_STORAGE_BASE_PATH", "STORAGE_PATH")
	_ = v.BindEnv("auth.token", "PRICELIST_AUTH_TOKEN", "API_TOKEN")
	_ = v.BindEnv("notify.smtp.host", "PRICELIST_NOTIFY_SMTP_HOST", "SMTP_HOST")
	_ = v.BindEnv("notify.smtp.username", "PRICELIST_NOTIFY_SMTP_USERNAME", "SMTP_USER")
	_ = v.BindEnv("notify.smtp.password", "PRICELIST_NOTIFY_SMTP_PASSWORD", "SMTP_PASSWORD")
	_ = v.BindEnv("telemetry.endpoint", "PRICELIST_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 20<<20)

	// Database defaults
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	// Storage defaults
	v.SetDefault("storage.base_path", "./data")
	v.SetDefault("storage.changesets", BackendFile)
	v.SetDefault("storage.sqlite_path", "./data/changesets.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", 15*time.Minute)
	v.SetDefault("scheduler.timezone", "Europe/Warsaw")
	v.SetDefault("scheduler.notify_timeout", 30*time.Second)
	v.SetDefault("scheduler.stale_claim_after", 30*time.Minute)

	v.SetDefault("reconcile.policy", "overwrite")
	v.SetDefault("changesets.retain_cancelled", false)
	v.SetDefault("auth.token", "")

	// Inbound rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	// Notification defaults
	v.SetDefault("notify.log", true)
	v.SetDefault("notify.smtp.host", "")
	v.SetDefault("notify.smtp.port", 587)
	v.SetDefault("notify.smtp.username", "")
	v.SetDefault("notify.smtp.password", "")
	v.SetDefault("notify.smtp.from", "")
	v.SetDefault("notify.smtp.from_name", "Cenniki")
	v.SetDefault("notify.smtp.recipients", []string{})
	v.SetDefault("notify.webhook.url", "")
	v.SetDefault("notify.webhook.token", "")
	v.SetDefault("notify.webhook.client.requests_per_second", 2)
	v.SetDefault("notify.webhook.client.max_retries", 3)
	v.SetDefault("notify.webhook.client.initial_backoff_ms", 100)
	v.SetDefault("notify.webhook.client.max_backoff_ms", 30000)

	v.SetDefault("catalog.row_price_columns", catalog.DefaultRowPriceColumns)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.service_name", telemetry.DefaultServiceName)
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.metric_interval", time.Minute)
}

// Validate checks values that would otherwise fail at first use
func (c *Config) Validate() error {
	switch c.Storage.ChangeSets {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.Database.URL == "" {
			return errors.New("config: database.url is required for the postgres change-set store")
		}
	default:
		return fmt.Errorf("config: unknown storage.changesets backend %q", c.Storage.ChangeSets)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return errors.New("config: scheduler.interval must be positive")
	}
	if c.Scheduler.StaleClaimAfter <= 0 {
		return errors.New("config: scheduler.stale_claim_after must be positive")
	}
	return nil
}

// Location returns the scheduler time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Scheduler.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: scheduler.timezone: %w", err)
	}
	return loc, nil
}

// ProducerList converts configured producers; producers without their own price columns
// inherit catalog.row_price_columns
func (c *Config) ProducerList() []producers.Producer {
	out := make([]producers.Producer, 0, len(c.Producers))
	for _, p := range c.Producers {
		columns := p.RowPriceColumns
		if len(columns) == 0 {
			columns = c.Catalog.RowPriceColumns
		}
		out = append(out, producers.Producer{
			Slug:            p.Slug,
			Name:            p.Name,
			Layout:          catalog.Layout(p.Layout),
			Recipients:      p.Recipients,
			RowPriceColumns: columns,
		})
	}
	return out
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}
