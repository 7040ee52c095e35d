// Package config loads service settings from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	DataDir     string        `envconfig:"DATA_DIR" default:"data"`
	RunInterval time.Duration `envconfig:"RUN_INTERVAL" default:"1h"`
	RunOnce     bool          `envconfig:"RUN_ONCE" default:"false"`

	// Feed endpoints and fetch policy.
	RSOEBaseURL  string        `envconfig:"RSOE_BASE_URL" default:"https://rsoe-edis.org/eventList"`
	ReliefWebURL string        `envconfig:"RELIEFWEB_URL" default:"https://api.reliefweb.int/v2/disasters"`
	EMSCURL      string        `envconfig:"EMSC_URL" default:"https://www.seismicportal.eu/fdsnws/event/1/query"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	FetchRetries int           `envconfig:"FETCH_RETRIES" default:"3"`
	RequestDelay time.Duration `envconfig:"REQUEST_DELAY" default:"500ms"`
	MaxPages     int           `envconfig:"MAX_PAGES" default:"3"`

	// Ingestion guards.
	MaxEventsPerRun      int `envconfig:"MAX_EVENTS_PER_RUN" default:"500"`
	DuplicateStreakLimit int `envconfig:"DUPLICATE_STREAK_LIMIT" default:"20"`

	// Dataset shaping.
	CurrentWindowDays int     `envconfig:"CURRENT_WINDOW_DAYS" default:"30"`
	StatsRadius       float64 `envconfig:"STATS_RADIUS" default:"1.0"`
	RiskRadius        float64 `envconfig:"RISK_RADIUS" default:"0.5"`
	BackupKeep        int     `envconfig:"BACKUP_KEEP" default:"5"`

	// Nominatim geocoding (feature-flagged).
	GeocodeEnabled   bool          `envconfig:"GEOCODE_ENABLED" default:"false"`
	GeocodeURL       string        `envconfig:"GEOCODE_URL" default:"https://nominatim.openstreetmap.org/search"`
	GeocodeTimeout   time.Duration `envconfig:"GEOCODE_TIMEOUT" default:"5s"`
	GeocodeCacheSize int           `envconfig:"GEOCODE_CACHE_SIZE" default:"1000"`

	// Kafka risk alerts (feature-flagged).
	KafkaEnabled    bool   `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers    string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaAlertTopic string `envconfig:"KAFKA_ALERT_TOPIC" default:"disaster-risk-alerts"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.RunInterval <= 0 {
		return fmt.Errorf("RUN_INTERVAL must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.FetchRetries < 1 {
		return fmt.Errorf("FETCH_RETRIES must be >= 1")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("MAX_PAGES must be >= 1")
	}
	if c.MaxEventsPerRun < 1 {
		return fmt.Errorf("MAX_EVENTS_PER_RUN must be >= 1")
	}
	if c.DuplicateStreakLimit < 1 {
		return fmt.Errorf("DUPLICATE_STREAK_LIMIT must be >= 1")
	}
	if c.CurrentWindowDays < 1 {
		return fmt.Errorf("CURRENT_WINDOW_DAYS must be >= 1")
	}
	if c.StatsRadius <= 0 {
		return fmt.Errorf("STATS_RADIUS must be positive")
	}
	if c.RiskRadius <= 0 {
		return fmt.Errorf("RISK_RADIUS must be positive")
	}
	if c.GeocodeEnabled && strings.TrimSpace(c.GeocodeURL) == "" {
		return fmt.Errorf("GEOCODE_ENABLED is true but GEOCODE_URL is not set")
	}
	if c.KafkaEnabled {
		if len(c.BrokerList()) == 0 {
			return fmt.Errorf("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
		}
		if strings.TrimSpace(c.KafkaAlertTopic) == "" {
			return fmt.Errorf("KAFKA_ENABLED is true but KAFKA_ALERT_TOPIC is not set")
		}
	}
	return nil
}

// BrokerList splits the comma-separated broker string, dropping blanks.
func (c *Config) BrokerList() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		broker := strings.TrimSpace(part)
		if broker == "" {
			continue
		}
		brokers = append(brokers, broker)
	}
	return brokers
}
