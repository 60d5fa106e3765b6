package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers
const (
	StoreJSON     = "json"
	StorePostgres = "postgres"
)

// Cache drivers
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	BotToken   string  `envconfig:"BOT_TOKEN"`
	ChannelID  int64   `envconfig:"CHANNEL_ID"`
	ChannelURL string  `envconfig:"CHANNEL_URL"`
	AdminIDs   []int64 `envconfig:"ADMIN_IDS"`

	SubscriptionTTL time.Duration `envconfig:"SUBSCRIPTION_TTL" default:"15m"`
	ProbeTimeout    time.Duration `envconfig:"PROBE_TIMEOUT" default:"10s"`
	SessionIdleTTL  time.Duration `envconfig:"SESSION_IDLE_TTL" default:"24h"`
	PollTimeout     time.Duration `envconfig:"POLL_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`

	StoreDriver  string `envconfig:"STORE_DRIVER" default:"json"`
	AccountsPath string `envconfig:"ACCOUNTS_PATH" default:"acc.json"`
	RequestsPath string `envconfig:"REQUESTS_PATH" default:"requests.json"`
	AliasesPath  string `envconfig:"ALIASES_PATH"`

	CacheDriver string `envconfig:"CACHE_DRIVER" default:"memory"`

	Redis    RedisConfig
	Database DatabaseConfig
}

// RedisConfig holds the subscription cache connection settings
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"steampool"`
	User     string `envconfig:"DB_USER" default:"steampool"`
	Password string `envconfig:"DB_PASSWORD"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.CacheDriver = strings.ToLower(strings.TrimSpace(cfg.CacheDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first missing or invalid setting
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.ChannelID == 0 {
		return fmt.Errorf("CHANNEL_ID is required")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("PROBE_TIMEOUT must be positive")
	}
	if c.SubscriptionTTL <= 0 {
		return fmt.Errorf("SUBSCRIPTION_TTL must be positive")
	}

	switch c.StoreDriver {
	case StoreJSON:
		if c.AccountsPath == "" || c.RequestsPath == "" {
			return fmt.Errorf("ACCOUNTS_PATH and REQUESTS_PATH are required for the json store")
		}
	case StorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q; allowed: json, postgres", c.StoreDriver)
	}

	switch c.CacheDriver {
	case CacheMemory:
	case CacheRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis cache")
		}
	default:
		return fmt.Errorf("invalid CACHE_DRIVER %q; allowed: memory, redis", c.CacheDriver)
	}

	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
