// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values of DB_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port string

	DBDriver      string
	MongoURI      string
	MongoDatabase string
	DatabaseDSN   string

	JWTSecret    string
	TokenTTL     time.Duration
	AuthRequired bool

	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string
	RabbitMQConsume  bool

	LogLevel  string
	LogFormat string
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "5000")
	v.SetDefault("DB_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "styleSync")
	v.SetDefault("DATABASE_DSN", "file:stylesync.db")
	v.SetDefault("EXPIRES_IN", "24h")
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("RABBITMQ_EXCHANGE", "orders")
	v.SetDefault("RABBITMQ_QUEUE", "order_events")
	v.SetDefault("RABBITMQ_CONSUME", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	ttl, err := ParseLifetime(v.GetString("EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("EXPIRES_IN: %w", err)
	}

	cfg := &Config{
		Port:             v.GetString("PORT"),
		DBDriver:         strings.ToLower(v.GetString("DB_DRIVER")),
		MongoURI:         v.GetString("MONGODB_URI"),
		MongoDatabase:    v.GetString("MONGODB_DATABASE"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         ttl,
		AuthRequired:     v.GetBool("AUTH_REQUIRED"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		RabbitMQQueue:    v.GetString("RABBITMQ_QUEUE"),
		RabbitMQConsume:  v.GetBool("RABBITMQ_CONSUME"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverMongo, DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER: unsupported driver %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT: %w", err)
	}
	return nil
}

// ListenAddr is the address passed to the HTTP listener.
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}

// timeSpan matches spans like "90", "2 days", "1w" or "1.5h". Units are
// case-insensitive; a bare number is milliseconds.
var timeSpan = regexp.MustCompile(`(?i)^(\d*\.?\d+) *(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`)

var spanUnits = map[string]time.Duration{
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  24 * time.Hour,
	"w":  7 * 24 * time.Hour,
	"y":  time.Duration(365.25 * 24 * float64(time.Hour)),
}

// ParseLifetime accepts Go durations ("90m", "1h30m") and the spans
// jsonwebtoken-style EXPIRES_IN values use ("7d", "2 days", "1w", "3600000").
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseDuration(s)
	if err != nil {
		if d, err = parseSpan(s); err != nil {
			return 0, err
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("lifetime must be positive, got %q", s)
	}
	return d, nil
}

func parseSpan(s string) (time.Duration, error) {
	m := timeSpan.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid lifetime %q: want a Go duration or a span like \"7d\", \"2 days\", \"1w\"", s)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lifetime %q: %w", s, err)
	}
	return time.Duration(n * float64(spanUnits[spanUnit(m[2])])), nil
}

func spanUnit(u string) string {
	u = strings.ToLower(u)
	switch {
	case u == "" || strings.HasPrefix(u, "ms") || strings.HasPrefix(u, "mil"):
		return "ms"
	case strings.HasPrefix(u, "mi") || u == "m":
		return "m"
	default:
		return u[:1]
	}
}
