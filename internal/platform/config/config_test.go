package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HISTORY_ADDR", "SESSION_TTL", "BACKEND_URL", "BACKEND_TIMEOUT", "REDIS_URL", "LOG_FORMAT", "BACKEND_BREAKER_FAILURES", "BACKEND_BREAKER_COOLDOWN"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
	assert.Equal(t, DefaultClientsPath, cfg.Backend.ClientsPath)
	assert.Equal(t, DefaultOrdersPath, cfg.Backend.OrdersPath)
	assert.Equal(t, DefaultTimeout, cfg.Backend.Timeout)
	assert.Equal(t, DefaultBreakerFailures, cfg.Backend.BreakerFailures)
	assert.Equal(t, DefaultBreakerCooldown, cfg.Backend.BreakerCooldown)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Redis.URL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HISTORY_ADDR", ":9090")
	t.Setenv("BACKEND_URL", "https://api.shop.tn/api/")
	t.Setenv("BACKEND_TIMEOUT", "3")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("BACKEND_BREAKER_FAILURES", "2")
	t.Setenv("BACKEND_BREAKER_COOLDOWN", "1m")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://api.shop.tn/api", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 2, cfg.Backend.BreakerFailures)
	assert.Equal(t, time.Minute, cfg.Backend.BreakerCooldown)
}
