// Package config loads the server configuration from the environment.
//
// Every setting has a default, so an empty environment yields a runnable
// SQLite-backed server on :8080. Values that are present but malformed are
// reported, never silently replaced by the default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// CORSConfig lists the origins allowed to call the API. Empty means any.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig controls Strict-Transport-Security.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig configures trace export.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT, host:port of the collector
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG, 0..1
}

// Config is the full server configuration.
type Config struct {
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug|release|test

	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string // always starts with '/', no trailing '/'

	DBDriver       string // sqlite|postgres
	DBPath         string // sqlite only
	DatabaseURL    string // postgres only
	DBMaxOpenConns int
	SeedPath       string // reseed from this dataset at startup when set

	RateRPS   float64 // per client; 0 disables refill
	RateBurst int

	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration

	OTEL OTELConfig
}

// MustLoad is Load for process startup: it panics on any error.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, normalizes the result and validates it. All
// problems are reported together.
func Load() (Config, error) {
	e := &env{}
	cfg := Config{
		Port:              e.str("PORT", "8080"),
		ReadTimeout:       e.duration("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: e.duration("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      e.duration("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       e.duration("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    e.integer("MAX_HEADER_BYTES", 1<<20),
		GinMode:           e.str("GIN_MODE", "release"),

		LogLevel:       e.str("LOG_LEVEL", "info"),
		LogPretty:      e.flag("LOG_PRETTY", false),
		SwaggerEnabled: e.flag("SWAGGER_ENABLED", false),
		APIBasePath:    e.str("API_BASE_PATH", "/api"),

		DBDriver:       e.str("DB_DRIVER", DriverSQLite),
		DBPath:         e.str("DB_PATH", "news.db"),
		DatabaseURL:    e.str("DATABASE_URL", ""),
		DBMaxOpenConns: e.integer("DB_MAX_OPEN_CONNS", 10),
		SeedPath:       e.str("SEED_PATH", ""),

		RateRPS:   e.float("RATE_RPS", 5),
		RateBurst: e.integer("RATE_BURST", 10),

		CORS: CORSConfig{AllowedOrigins: splitCSV(e.str("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: e.flag("ENABLE_HSTS", false),
			HSTSMaxAge: e.duration("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: e.duration("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     e.flag("OTEL_ENABLED", false),
			Endpoint:    e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    e.flag("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: e.str("OTEL_SERVICE_NAME", "go-news-backend"),
			SampleRatio: e.float("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}
	cfg.normalize()

	errs := append(e.errs, cfg.validate()...)
	if len(errs) > 0 {
		return cfg, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.GinMode = strings.ToLower(c.GinMode)
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	c.DBDriver = strings.ToLower(c.DBDriver)
	c.APIBasePath = normalizeBasePath(c.APIBasePath)
}

func (c *Config) validate() []error {
	var errs []error
	check := func(okay bool, msg string) {
		if !okay {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error, fatal, panic", c.LogLevel))
	}
	check(strings.TrimSpace(c.Port) != "", "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	switch c.DBDriver {
	case DriverSQLite:
		check(strings.TrimSpace(c.DBPath) != "", "DB_PATH must not be empty")
	case DriverPostgres:
		check(strings.TrimSpace(c.DatabaseURL) != "", "DATABASE_URL must not be empty when DB_DRIVER=postgres")
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not one of sqlite, postgres", c.DBDriver))
	}
	check(c.DBMaxOpenConns >= 1, "DB_MAX_OPEN_CONNS must be >= 1")

	check(c.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(c.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	return errs
}

// env reads typed variables and remembers every value it could not parse.
// Unset or empty variables take the default.
type env struct {
	errs []error
}

func (e *env) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) bad(k, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", k, v, err))
}

func (e *env) str(k, def string) string {
	if v, ok := e.lookup(k); ok {
		return v
	}
	return def
}

func (e *env) integer(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		e.bad(k, v, err)
		return def
	}
	return i
}

func (e *env) float(k string, def float64) float64 {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.bad(k, v, err)
		return def
	}
	return f
}

func (e *env) flag(k string, def bool) bool {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	e.bad(k, v, errors.New("not a boolean"))
	return def
}

func (e *env) duration(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.bad(k, v, err)
		return def
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath adds a leading '/' and drops trailing ones; "" is "/".
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
