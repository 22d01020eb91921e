package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "aurum",
		Password: "secret",
		Name:     "aurum",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "sslmode=disable", "sslmode defaults to disable")

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}

func TestPerUserLimit(t *testing.T) {
	cfg := RateLimitConfig{PerUser: RateLimitRule{Limit: 5, Window: "30s"}}

	limit, window, err := cfg.PerUserLimit()
	require.NoError(t, err)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 30*time.Second, window)
}

func TestPerUserLimitMissingWindow(t *testing.T) {
	cfg := RateLimitConfig{PerUser: RateLimitRule{Limit: 5}}

	_, _, err := cfg.PerUserLimit()
	assert.Error(t, err)
}

func TestIsWhitelisted(t *testing.T) {
	cfg := RateLimitConfig{Whitelist: []string{"123", "456"}}

	assert.True(t, cfg.IsWhitelisted("123"))
	assert.False(t, cfg.IsWhitelisted("789"))
}

func TestRedisEnabled(t *testing.T) {
	assert.False(t, RedisConfig{}.Enabled())
	assert.True(t, RedisConfig{Addr: "localhost:6379"}.Enabled())
}
