// Package config loads and validates ingestor configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	DB       DBConfig       `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Sources  SourcesConfig  `mapstructure:"sources"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig holds the shared trigger secret. An empty secret runs the
// trigger surface unauthenticated; startup logs a hardening warning.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
}

// CrawlerConfig governs orchestration behavior.
type CrawlerConfig struct {
	Concurrency       int    `mapstructure:"concurrency"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	UserAgent         string `mapstructure:"user_agent"`
	MaxFailureReasons int    `mapstructure:"max_failure_reasons"`
}

// ScheduleConfig controls the cron cadence.
type ScheduleConfig struct {
	Spec       string `mapstructure:"spec"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig controls the optional run lock. Empty URL disables it.
type RedisConfig struct {
	URL            string `mapstructure:"url"`
	LockKey        string `mapstructure:"lock_key"`
	LockTTLMinutes int    `mapstructure:"lock_ttl_minutes"`
}

// PubSubConfig holds metadata for posting-event notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// SnapshotConfig selects the raw payload archive backend.
type SnapshotConfig struct {
	Provider  string `mapstructure:"provider"` // gcs | local | noop
	GCSBucket string `mapstructure:"gcs_bucket"`
	LocalDir  string `mapstructure:"local_dir"`
	Prefix    string `mapstructure:"prefix"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SourcesConfig enumerates the configured external providers. Disabled
// entries are skipped by the factory without touching the orchestrator.
type SourcesConfig struct {
	Greenhouse      []BoardSource      `mapstructure:"greenhouse"`
	Lever           []BoardSource      `mapstructure:"lever"`
	Workable        []WorkableSource   `mapstructure:"workable"`
	SmartRecruiters []CompanyIDSource  `mapstructure:"smartrecruiters"`
	Recruitee       []BoardSource      `mapstructure:"recruitee"`
	Adzuna          AdzunaSource       `mapstructure:"adzuna"`
	RemoteOK        ToggleSource       `mapstructure:"remoteok"`
	WeWorkRemotely  ToggleSource       `mapstructure:"weworkremotely"`
	CareersPages    []CareersPageEntry `mapstructure:"careers_pages"`
}

// BoardSource configures a board-token adapter (Greenhouse, Lever,
// Recruitee).
type BoardSource struct {
	Enabled bool   `mapstructure:"enabled"`
	Board   string `mapstructure:"board"`
	Company string `mapstructure:"company"`
}

// WorkableSource configures one Workable account.
type WorkableSource struct {
	Enabled   bool   `mapstructure:"enabled"`
	Subdomain string `mapstructure:"subdomain"`
	Company   string `mapstructure:"company"`
	Token     string `mapstructure:"token"`
}

// CompanyIDSource configures a company-identifier adapter.
type CompanyIDSource struct {
	Enabled   bool   `mapstructure:"enabled"`
	CompanyID string `mapstructure:"company_id"`
}

// AdzunaSource configures the Adzuna search adapter.
type AdzunaSource struct {
	Enabled bool   `mapstructure:"enabled"`
	AppID   string `mapstructure:"app_id"`
	AppKey  string `mapstructure:"app_key"`
	Country string `mapstructure:"country"`
	What    string `mapstructure:"what"`
}

// ToggleSource configures adapters that need only an on/off switch.
type ToggleSource struct {
	Enabled bool `mapstructure:"enabled"`
}

// CareersPageEntry configures one scraped careers page.
type CareersPageEntry struct {
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name"`
	Company string `mapstructure:"company"`
	URL     string `mapstructure:"url"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INGESTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("crawler.concurrency", 4)
	v.SetDefault("crawler.timeout_seconds", 15)
	v.SetDefault("crawler.user_agent", "jobpulse-ingestor/0.1")
	v.SetDefault("crawler.max_failure_reasons", 10)
	v.SetDefault("schedule.spec", "@every 6h")
	v.SetDefault("schedule.run_on_start", false)
	v.SetDefault("redis.lock_key", "ingestor:run-lock")
	v.SetDefault("redis.lock_ttl_minutes", 30)
	v.SetDefault("snapshot.provider", "noop")
	v.SetDefault("snapshot.prefix", "snapshots")
	v.SetDefault("logging.development", true)
	v.SetDefault("sources.adzuna.country", "gb")
	v.SetDefault("sources.adzuna.what", "software engineer")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	if c.Schedule.Spec == "" {
		return fmt.Errorf("schedule.spec must be set")
	}
	if c.Snapshot.Provider == "gcs" && c.Snapshot.GCSBucket == "" {
		return fmt.Errorf("snapshot.gcs_bucket must be set when provider is gcs")
	}
	if c.Snapshot.Provider == "local" && c.Snapshot.LocalDir == "" {
		return fmt.Errorf("snapshot.local_dir must be set when provider is local")
	}
	return nil
}

// FetchTimeout converts the crawler timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.TimeoutSeconds) * time.Second
}

// LockTTL converts the run-lock TTL into a duration.
func (c Config) LockTTL() time.Duration {
	return time.Duration(c.Redis.LockTTLMinutes) * time.Minute
}
