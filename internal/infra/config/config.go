package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Reminders  RemindersConfig  `yaml:"reminders"`
	DealSearch DealSearchConfig `yaml:"dealSearch"`
	Storage    StorageConfig    `yaml:"storage"`
	Rules      RulesConfig      `yaml:"rules"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig holds JWT settings shared with the account service.
type AuthConfig struct {
	Secret      string        `yaml:"secret"`
	Issuer      string        `yaml:"issuer"`
	TokenTTL    time.Duration `yaml:"tokenTtl"`
	DeviceToken string        `yaml:"deviceToken"`
}

// RemindersConfig controls the background reminder tick.
type RemindersConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Interval          time.Duration `yaml:"interval"`
	DedupTTL          time.Duration `yaml:"dedupTtl"`
	FeedingAfter      time.Duration `yaml:"feedingAfter"`
	FeedingUrgentFrom time.Duration `yaml:"feedingUrgentFrom"`
	FeedingGiveUp     time.Duration `yaml:"feedingGiveUp"`
	Timezone          string        `yaml:"timezone"`
}

// DealSearchConfig configures the Google Custom Search client.
type DealSearchConfig struct {
	APIKey          string        `yaml:"apiKey"`
	EngineID        string        `yaml:"engineId"`
	BaseURL         string        `yaml:"baseUrl"`
	Timeout         time.Duration `yaml:"timeout"`
	DefaultLocation string        `yaml:"defaultLocation"`
	MaxItems        int           `yaml:"maxItems"`
	Breaker         BreakerConfig `yaml:"breaker"`
}

// BreakerConfig mirrors the gobreaker settings.
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"maxRequests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold uint32        `yaml:"failureThreshold"`
}

// StorageConfig lists the persistence backends; the first configured one wins.
type StorageConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Valkey   ValkeyConfig   `yaml:"valkey"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SQLiteConfig points at a single-device database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ValkeyConfig contains connection information for the notification sink.
type ValkeyConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Addr        string `yaml:"addr"`
	KeyPrefix   string `yaml:"keyPrefix"`
	DeliveryKey string `yaml:"deliveryKey"`
}

// RulesConfig points at optional keyword rule overrides in an S3 compatible bucket.
type RulesConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"accessKey"`
	SecretKey     string `yaml:"secretKey"`
	UseSSL        bool   `yaml:"useSsl"`
	Bucket        string `yaml:"bucket"`
	ClassifierKey string `yaml:"classifierKey"`
	AdviceKey     string `yaml:"adviceKey"`
	ShoppingKey   string `yaml:"shoppingKey"`
}

// Load reads configuration from .env, a YAML file and environment variables.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}

	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := os.Getenv("AUTH_DEVICE_TOKEN"); v != "" {
		cfg.Auth.DeviceToken = v
	}

	if v := os.Getenv("REMINDERS_ENABLED"); v != "" {
		cfg.Reminders.Enabled = parseBool(v)
	}
	if v := os.Getenv("REMINDERS_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Reminders.Interval = parsed
		}
	}
	if v := os.Getenv("REMINDERS_DEDUP_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Reminders.DedupTTL = parsed
		}
	}
	if v := os.Getenv("REMINDERS_TIMEZONE"); v != "" {
		cfg.Reminders.Timezone = v
	}

	if v := os.Getenv("GOOGLE_CSE_API_KEY"); v != "" {
		cfg.DealSearch.APIKey = v
	}
	if v := os.Getenv("GOOGLE_CSE_ENGINE_ID"); v != "" {
		cfg.DealSearch.EngineID = v
	}
	if v := os.Getenv("DEAL_SEARCH_BASE_URL"); v != "" {
		cfg.DealSearch.BaseURL = v
	}
	if v := os.Getenv("DEAL_SEARCH_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.DealSearch.Timeout = parsed
		}
	}

	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := os.Getenv("VALKEY_ENABLED"); v != "" {
		cfg.Storage.Valkey.Enabled = parseBool(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Storage.Valkey.Addr = v
	}

	if v := os.Getenv("RULES_ENABLED"); v != "" {
		cfg.Rules.Enabled = parseBool(v)
	}
	if v := os.Getenv("RULES_ENDPOINT"); v != "" {
		cfg.Rules.Endpoint = v
	}
	if v := os.Getenv("RULES_ACCESS_KEY"); v != "" {
		cfg.Rules.AccessKey = v
	}
	if v := os.Getenv("RULES_SECRET_KEY"); v != "" {
		cfg.Rules.SecretKey = v
	}
	if v := os.Getenv("RULES_BUCKET"); v != "" {
		cfg.Rules.Bucket = v
	}
	if v := os.Getenv("RULES_USE_SSL"); v != "" {
		cfg.Rules.UseSSL = parseBool(v)
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/notes",
					"/api/v1/persons",
					"/api/v1/medicines",
					"/api/v1/symptoms",
					"/api/v1/reminders/tick",
				},
			},
		},
		Auth: AuthConfig{
			Issuer:   "familylog",
			TokenTTL: time.Hour,
		},
		Reminders: RemindersConfig{
			Enabled:           true,
			Interval:          15 * time.Minute,
			DedupTTL:          72 * time.Hour,
			FeedingAfter:      3 * time.Hour,
			FeedingUrgentFrom: 6 * time.Hour,
			FeedingGiveUp:     8 * time.Hour,
			Timezone:          "Europe/Zagreb",
		},
		DealSearch: DealSearchConfig{
			BaseURL:         "https://www.googleapis.com/customsearch/v1",
			Timeout:         8 * time.Second,
			DefaultLocation: "Zagreb",
			MaxItems:        5,
			Breaker: BreakerConfig{
				Enabled:          true,
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 3,
			},
		},
		Storage: StorageConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Valkey: ValkeyConfig{
				KeyPrefix:   "familylog:reminder:",
				DeliveryKey: "familylog:notifications",
			},
		},
		Rules: RulesConfig{
			Bucket:        "familylog-rules",
			ClassifierKey: "classifier.yaml",
			AdviceKey:     "advice.yaml",
			ShoppingKey:   "shopping.yaml",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if c.Reminders.Enabled && c.Reminders.Interval <= 0 {
		return errors.New("reminders.interval must be positive")
	}
	if c.Reminders.DedupTTL < 0 {
		return errors.New("reminders.dedupTtl cannot be negative")
	}
	if c.Reminders.FeedingUrgentFrom <= c.Reminders.FeedingAfter {
		return errors.New("reminders.feedingUrgentFrom must be after reminders.feedingAfter")
	}
	if c.Reminders.FeedingGiveUp <= c.Reminders.FeedingUrgentFrom {
		return errors.New("reminders.feedingGiveUp must be after reminders.feedingUrgentFrom")
	}
	if _, err := time.LoadLocation(c.Reminders.Timezone); err != nil {
		return fmt.Errorf("reminders.timezone: %w", err)
	}
	if c.DealSearch.MaxItems < 0 {
		return errors.New("dealSearch.maxItems cannot be negative")
	}
	if c.DealSearch.Timeout < 0 {
		return errors.New("dealSearch.timeout cannot be negative")
	}
	if c.Storage.Valkey.Enabled && strings.TrimSpace(c.Storage.Valkey.Addr) == "" {
		return errors.New("storage.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.Rules.Enabled {
		if strings.TrimSpace(c.Rules.Endpoint) == "" {
			return errors.New("rules.endpoint cannot be empty when rule overrides are enabled")
		}
		if strings.TrimSpace(c.Rules.Bucket) == "" {
			return errors.New("rules.bucket cannot be empty when rule overrides are enabled")
		}
	}
	return nil
}

// Location resolves the reminder timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reminders.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
