package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port        string
	MetricsPort string

	// Database
	SQLiteDBPath string

	// Auth
	JWTSecret   string
	TokenExpiry time.Duration

	// AMQP (notification events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Redis (recurring tick lock); empty disables the lock
	RedisAddr string

	// Recurring worker
	TickHour    int // local wall-clock hour of the daily tick
	TickLockTTL time.Duration

	// Google Sheets report export (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Role-guard cache
	RoleCacheSize int
	RoleCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budgety.db"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: getEnvDuration("TOKEN_EXPIRY", 24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgety"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "family_events"),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		TickHour:    getEnvInt("TICK_HOUR", 0),
		TickLockTTL: getEnvDuration("TICK_LOCK_TTL", 5*time.Minute),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Reports"),

		RoleCacheSize: getEnvInt("ROLE_CACHE_SIZE", 1000),
		RoleCacheTTL:  getEnvDuration("ROLE_CACHE_TTL", time.Minute),
	}
}

// Validate checks the configuration and returns a combined error when invalid.
func (c *Config) Validate() error {
	var errs []string

	for name, p := range map[string]string{"port": c.Port, "metrics port": c.MetricsPort} {
		if port, err := strconv.Atoi(p); err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s '%s': must be a number", name, p))
		} else if port < 1 || port > 65535 {
			errs = append(errs, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, port))
		}
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET must be set")
	} else if len(c.JWTSecret) < 16 {
		errs = append(errs, "JWT_SECRET must be at least 16 bytes")
	}

	if c.TokenExpiry < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token expiry %v: must be at least 1 minute", c.TokenExpiry))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.TickHour < 0 || c.TickHour > 23 {
		errs = append(errs, fmt.Sprintf("invalid tick hour %d: must be between 0 and 23", c.TickHour))
	}
	if c.TickLockTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid tick lock TTL %v: must be at least 1 second", c.TickLockTTL))
	}

	if c.RoleCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid role cache size %d: must be at least 1", c.RoleCacheSize))
	}
	if c.RoleCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid role cache TTL %v: must be at least 1 second", c.RoleCacheTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
