package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		BotToken:        "token",
		ChannelID:       -100123,
		SubscriptionTTL: 15 * time.Minute,
		ProbeTimeout:    10 * time.Second,
		StoreDriver:     StoreJSON,
		AccountsPath:    "acc.json",
		RequestsPath:    "requests.json",
		CacheDriver:     CacheMemory,
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(c *Config) {},
		},
		{
			name:    "missing token",
			modify:  func(c *Config) { c.BotToken = "" },
			wantErr: "BOT_TOKEN is required",
		},
		{
			name:    "missing channel",
			modify:  func(c *Config) { c.ChannelID = 0 },
			wantErr: "CHANNEL_ID is required",
		},
		{
			name:    "postgres without password",
			modify:  func(c *Config) { c.StoreDriver = StorePostgres },
			wantErr: "DB_PASSWORD is required",
		},
		{
			name: "postgres with password",
			modify: func(c *Config) {
				c.StoreDriver = StorePostgres
				c.Database.Password = "secret"
			},
		},
		{
			name:    "unknown store",
			modify:  func(c *Config) { c.StoreDriver = "sqlite" },
			wantErr: "invalid STORE_DRIVER",
		},
		{
			name:    "unknown cache",
			modify:  func(c *Config) { c.CacheDriver = "memcached" },
			wantErr: "invalid CACHE_DRIVER",
		},
		{
			name:    "redis without address",
			modify:  func(c *Config) { c.CacheDriver = CacheRedis },
			wantErr: "REDIS_ADDR is required",
		},
		{
			name:    "zero probe timeout",
			modify:  func(c *Config) { c.ProbeTimeout = 0 },
			wantErr: "PROBE_TIMEOUT must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("CHANNEL_ID", "-100500")
	t.Setenv("ADMIN_IDS", "1,2")
	t.Setenv("PROBE_TIMEOUT", "3s")
	t.Setenv("STORE_DRIVER", "JSON")
	t.Setenv("DB_HOST", "db")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, int64(-100500), cfg.ChannelID)
	assert.Equal(t, []int64{1, 2}, cfg.AdminIDs)
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 15*time.Minute, cfg.SubscriptionTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, StoreJSON, cfg.StoreDriver)
	assert.Equal(t, CacheMemory, cfg.CacheDriver)
	assert.Equal(t, "acc.json", cfg.AccountsPath)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("CHANNEL_ID", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
