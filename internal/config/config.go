// Package config holds runtime settings for the Hangman server: defaults
// overlaid with environment variables (a .env file is loaded by main).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime settings.
//
// Fields:
//   - Port: HTTP listen port.
//   - LogLevel: zerolog level name.
//   - DatabasePath: SQLite file; empty selects the in-memory store.
//   - WordsFile: CSV vocabulary; empty selects the embedded country list.
//   - JWTSecret / TokenTTL: player token signing key and lifetime.
//   - ClientOrigin: allowed CORS origin.
//   - DefaultAttempts / MaxAttempts: attempts budget for new games.
//   - CacheRefreshInterval: period of the average-attempts job.
type Config struct {
	Port                 string
	LogLevel             string
	DatabasePath         string
	WordsFile            string
	JWTSecret            string
	TokenTTL             time.Duration
	ClientOrigin         string
	DefaultAttempts      int
	MaxAttempts          int
	CacheRefreshInterval time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: the JWT secret default is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Port = "8080"
	c.LogLevel = "info"
	c.DatabasePath = ""
	c.WordsFile = ""
	c.JWTSecret = "dev_secret_change_me"
	c.TokenTTL = 14 * 24 * time.Hour
	c.ClientOrigin = "http://localhost:5173"
	c.DefaultAttempts = 6
	c.MaxAttempts = 26
	c.CacheRefreshInterval = time.Minute
}

// Load builds a Config from defaults overlaid with environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.WordsFile = getEnv("WORDS_FILE", cfg.WordsFile)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.ClientOrigin = getEnv("CLIENT_ORIGIN", cfg.ClientOrigin)

	var err error
	if v := os.Getenv("JWT_EXPIRES_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 {
			return nil, fmt.Errorf("config: JWT_EXPIRES_DAYS must be a positive integer, got %q", v)
		}
		cfg.TokenTTL = time.Duration(days) * 24 * time.Hour
	}
	if cfg.DefaultAttempts, err = envInt("DEFAULT_ATTEMPTS", cfg.DefaultAttempts); err != nil {
		return nil, err
	}
	if cfg.MaxAttempts, err = envInt("MAX_ATTEMPTS", cfg.MaxAttempts); err != nil {
		return nil, err
	}
	if v := os.Getenv("CACHE_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: CACHE_REFRESH_INTERVAL: %w", err)
		}
		cfg.CacheRefreshInterval = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.DefaultAttempts < 1 {
		return fmt.Errorf("config: DEFAULT_ATTEMPTS must be positive, got %d", c.DefaultAttempts)
	}
	if c.MaxAttempts < c.DefaultAttempts {
		return fmt.Errorf("config: MAX_ATTEMPTS (%d) is below DEFAULT_ATTEMPTS (%d)", c.MaxAttempts, c.DefaultAttempts)
	}
	return nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", k, err)
	}
	return n, nil
}
