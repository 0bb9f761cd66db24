package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. COURTBOOKING_HTTP_PORT.
const Prefix = "COURTBOOKING"

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort    int    `envconfig:"HTTP_PORT" default:"8080"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	SQLiteDSN   string `envconfig:"SQLITE_DSN" default:"courtbooking.db"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// AdminKeyHash is an argon2id encoded hash of the venue admin key.
	AdminKeyHash string `envconfig:"ADMIN_KEY_HASH"`

	Timezone               string        `envconfig:"TIMEZONE" default:"Local"`
	RecurrenceHorizonYears int           `envconfig:"RECURRENCE_HORIZON_YEARS" default:"1"`
	MaxWindowDays          int           `envconfig:"MAX_WINDOW_DAYS" default:"366"`
	// CalendarCacheTTL of zero disables the calendar cache.
	CalendarCacheTTL       time.Duration `envconfig:"CALENDAR_CACHE_TTL" default:"30s"`

	LogLevel        string  `envconfig:"LOG_LEVEL" default:"info"`
	OTelEnabled     bool    `envconfig:"OTEL_ENABLED" default:"false"`
	OTelEndpoint    string  `envconfig:"OTEL_ENDPOINT" default:"localhost:4317"`
	OTelSampleRatio float64 `envconfig:"OTEL_SAMPLE_RATIO" default:"1"`

	// Location is Timezone resolved by Load.
	Location *time.Location `ignored:"true"`
}

// Load parses configuration values from the current process environment.
//
// Defaults come from the struct tags. Every missing or invalid variable is
// reported in one error.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		var parseErr *envconfig.ParseError
		if errors.As(err, &parseErr) {
			return Config{}, fmt.Errorf("invalid environment variables: %s", parseErr.KeyName)
		}
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)
	name := func(key string) string { return Prefix + "_" + key }

	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.AdminKeyHash = strings.TrimSpace(c.AdminKeyHash)

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		invalid = append(invalid, name("HTTP_PORT"))
	}
	switch c.StoreDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.SQLiteDSN) == "" {
			missing = append(missing, name("SQLITE_DSN"))
		}
	case DriverRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			missing = append(missing, name("REDIS_ADDR"))
		}
	default:
		invalid = append(invalid, name("STORE_DRIVER"))
	}
	if c.RedisDB < 0 {
		invalid = append(invalid, name("REDIS_DB"))
	}
	if c.AdminKeyHash == "" {
		missing = append(missing, name("ADMIN_KEY_HASH"))
	}
	if loc, err := time.LoadLocation(c.Timezone); err != nil {
		invalid = append(invalid, name("TIMEZONE"))
	} else {
		c.Location = loc
	}
	if c.RecurrenceHorizonYears <= 0 {
		invalid = append(invalid, name("RECURRENCE_HORIZON_YEARS"))
	}
	if c.MaxWindowDays <= 0 {
		invalid = append(invalid, name("MAX_WINDOW_DAYS"))
	}
	if c.CalendarCacheTTL < 0 {
		invalid = append(invalid, name("CALENDAR_CACHE_TTL"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, name("LOG_LEVEL"))
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		invalid = append(invalid, name("OTEL_SAMPLE_RATIO"))
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	return nil
}
