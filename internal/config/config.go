package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings read from the environment
type Config struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	SecretKey          string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// BreakerFailures is the number of consecutive transport failures
	// that opens the provider circuit breaker.
	BreakerFailures uint32

	DatabaseURL string
	SQLitePath  string

	Port string
	Env  string
}

var (
	ErrMissingAPIKey    = errors.New("OPENWEATHER_API_KEY is not set")
	ErrMissingSecretKey = errors.New("SECRET_KEY is not set")
)

// Load reads configuration from the environment. The provider key and
// the cookie secret have no defaults.
func Load() (*Config, error) {
	cfg := &Config{
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL: getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		SecretKey:          os.Getenv("SECRET_KEY"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SQLitePath:         getEnv("SQLITE_PATH", "weather.db"),
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("GO_ENV", "development"),
	}

	timeout, err := time.ParseDuration(getEnv("WEATHER_HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_HTTP_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid WEATHER_HTTP_TIMEOUT: must be positive, got %s", timeout)
	}
	cfg.HTTPTimeout = timeout

	failures, err := strconv.ParseUint(getEnv("WEATHER_BREAKER_FAILURES", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_BREAKER_FAILURES: %w", err)
	}
	cfg.BreakerFailures = uint32(failures)

	return cfg, nil
}

// Validate checks the settings the web server cannot run without
func (c *Config) Validate() error {
	if c.OpenWeatherAPIKey == "" {
		return ErrMissingAPIKey
	}
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	return nil
}

// UsePostgres reports whether a PostgreSQL DSN was configured
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
