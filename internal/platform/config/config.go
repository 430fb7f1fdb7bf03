package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr       string
	AdminToken string
	SessionTTL time.Duration
	Log        LogConfig
	Backend    BackendConfig
	Redis      RedisConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Format string // "json" or "text"
	Level  string // "debug", "info", "warn", "error"
}

// BackendConfig points at the e-commerce REST backend that owns clients and orders.
type BackendConfig struct {
	BaseURL     string
	Token       string
	ClientsPath string
	OrdersPath  string
	Timeout     time.Duration

	// BreakerFailures consecutive transient failures open a collection's
	// circuit for BreakerCooldown.
	BreakerFailures int
	BreakerCooldown time.Duration
}

// RedisConfig configures the optional Redis session store.
// An empty URL keeps sessions in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

const (
	DefaultAddr        = ":8080"
	DefaultSessionTTL  = 30 * time.Minute
	DefaultClientsPath = "/clients"
	DefaultOrdersPath  = "/commandes"
	DefaultTimeout     = 10 * time.Second

	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:       envString("HISTORY_ADDR", DefaultAddr),
		AdminToken: os.Getenv("ADMIN_API_TOKEN"),
		SessionTTL: envDuration("SESSION_TTL", DefaultSessionTTL),
		Log: LogConfig{
			Format: strings.ToLower(envString("LOG_FORMAT", "json")),
			Level:  strings.ToLower(envString("LOG_LEVEL", "info")),
		},
		Backend: BackendConfig{
			BaseURL:     strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
			Token:       os.Getenv("BACKEND_TOKEN"),
			ClientsPath: envString("BACKEND_CLIENTS_PATH", DefaultClientsPath),
			OrdersPath:  envString("BACKEND_ORDERS_PATH", DefaultOrdersPath),
			Timeout:     envDuration("BACKEND_TIMEOUT", DefaultTimeout),

			BreakerFailures: envInt("BACKEND_BREAKER_FAILURES", DefaultBreakerFailures),
			BreakerCooldown: envDuration("BACKEND_BREAKER_COOLDOWN", DefaultBreakerCooldown),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// envDuration accepts Go durations ("45s") or bare seconds ("45").
func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
