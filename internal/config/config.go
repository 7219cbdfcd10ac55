// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/claude-quota-tui/internal/models"
)

// Config holds the application configuration.
type Config struct {
	Location        *time.Location
	Timezone        string
	LogLevel        string
	LogFile         string
	DataDirs        []string
	Plan            models.Plan
	ResetHour       int
	RefreshInterval time.Duration
	SourceTimeout   time.Duration
	CacheCapacity   int
	CacheTTL        time.Duration
}

// HasCustomResetHour reports whether a single reset hour was configured
// instead of the default reset cycle.
func (c *Config) HasCustomResetHour() bool {
	return c.ResetHour != unsetResetHour
}

// Load reads configuration from .env files and environment variables. The
// timezone is resolved here exactly once; a bad zone name is a startup
// failure, not a per-tick condition.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	plan, err := models.ParsePlan(getEnvString("PLAN", ""))
	if err != nil {
		return nil, err
	}

	resetHour, err := parseResetHour(getEnvString("RESET_HOUR", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Plan:            plan,
		ResetHour:       resetHour,
		Timezone:        getEnvString("TIMEZONE", defaultTimezone),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", defaultRefreshInterval),
		SourceTimeout:   getEnvDuration("SOURCE_TIMEOUT", defaultSourceTimeout),
		CacheCapacity:   getEnvInt("CACHE_CAPACITY", defaultCacheCapacity),
		CacheTTL:        getEnvDuration("CACHE_TTL", defaultCacheTTL),
		DataDirs:        getDataDirs(),
		LogLevel:        getEnvString("LOG_LEVEL", defaultLogLevel),
		LogFile:         getEnvString("LOG_FILE", ""),
	}

	if cfg.RefreshInterval < minRefreshInterval {
		return nil, fmt.Errorf("REFRESH_INTERVAL %v is below the minimum %v", cfg.RefreshInterval, minRefreshInterval)
	}
	if cfg.CacheCapacity <= 0 {
		return nil, fmt.Errorf("CACHE_CAPACITY must be positive, got %d", cfg.CacheCapacity)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %v", cfg.CacheTTL)
	}
	if cfg.SourceTimeout <= 0 {
		return nil, fmt.Errorf("SOURCE_TIMEOUT must be positive, got %v", cfg.SourceTimeout)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.LogFile != "" {
		if err := ensureDir(filepath.Dir(cfg.LogFile)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// parseResetHour validates an optional reset hour; empty means the default
// reset cycle applies.
func parseResetHour(value string) (int, error) {
	if value == "" {
		return unsetResetHour, nil
	}
	hour, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("RESET_HOUR %q is not an integer", value)
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("RESET_HOUR must be between 0 and 23, got %d", hour)
	}
	return hour, nil
}

// getDataDirs returns the directories watched for usage data writes. An
// explicit DATA_DIRS list wins; otherwise the known Claude data locations
// that actually exist are used.
func getDataDirs() []string {
	if value := os.Getenv("DATA_DIRS"); value != "" {
		var dirs []string
		for _, dir := range strings.Split(value, ",") {
			if dir = strings.TrimSpace(dir); dir != "" {
				dirs = append(dirs, dir)
			}
		}
		return dirs
	}

	var dirs []string
	for _, candidate := range defaultDataDirCandidates() {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			dirs = append(dirs, candidate)
		}
	}
	return dirs
}

// defaultDataDirCandidates lists where Claude Code writes usage records.
func defaultDataDirCandidates() []string {
	var candidates []string

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".claude", "projects"))
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "claude", "projects"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "claude", "projects"))
	}

	return candidates
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "claude-quota-tui", ".env"),
			filepath.Join(home, ".claude-quota-tui", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
	}

	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
