package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/claude-quota-tui/internal/models"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	os.Setenv(key, val)
	defer os.Unsetenv(key)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_ENV_INT"

	tests := []struct {
		name   string
		envVal string
		want   int
	}{
		{"Valid", "250", 250},
		{"Invalid", "many", 500},
		{"Empty", "", 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvInt(key, 500); got != tt.want {
				t.Errorf("getEnvInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseResetHour(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"Unset", "", unsetResetHour, false},
		{"Midnight", "0", 0, false},
		{"Evening", "23", 23, false},
		{"TooHigh", "24", 0, true},
		{"Negative", "-1", 0, true},
		{"NotANumber", "nine", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResetHour(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseResetHour(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseResetHour(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Error("getEnvPaths() returned empty list")
	}

	// Basic check that it contains current directory
	cwd, _ := os.Getwd()
	found := false
	for _, p := range paths {
		if p == filepath.Join(cwd, ".env") {
			found = true
			break
		}
	}
	if !found {
		t.Error("getEnvPaths() missing current directory .env")
	}
}

func clearMonitorEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PLAN", "RESET_HOUR", "TIMEZONE", "REFRESH_INTERVAL", "SOURCE_TIMEOUT",
		"CACHE_CAPACITY", "CACHE_TTL", "DATA_DIRS", "LOG_LEVEL", "LOG_FILE",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearMonitorEnv(t)

	// Avoid picking up a local .env
	tmpDir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Plan != models.PlanPro {
		t.Errorf("Plan = %v, want %v", cfg.Plan, models.PlanPro)
	}
	if cfg.HasCustomResetHour() {
		t.Errorf("HasCustomResetHour() = true, want false")
	}
	if cfg.Timezone != defaultTimezone {
		t.Errorf("Timezone = %q, want %q", cfg.Timezone, defaultTimezone)
	}
	if cfg.Location == nil {
		t.Error("Location was not resolved")
	}
	if cfg.RefreshInterval != defaultRefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", cfg.RefreshInterval, defaultRefreshInterval)
	}
	if cfg.CacheCapacity != defaultCacheCapacity {
		t.Errorf("CacheCapacity = %v, want %v", cfg.CacheCapacity, defaultCacheCapacity)
	}
	if cfg.CacheTTL != defaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", cfg.CacheTTL, defaultCacheTTL)
	}
	if cfg.SourceTimeout != defaultSourceTimeout {
		t.Errorf("SourceTimeout = %v, want %v", cfg.SourceTimeout, defaultSourceTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearMonitorEnv(t)

	tmpDir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(tmpDir)

	os.Setenv("PLAN", "max5")
	os.Setenv("RESET_HOUR", "9")
	os.Setenv("TIMEZONE", "UTC")
	os.Setenv("REFRESH_INTERVAL", "5s")
	os.Setenv("DATA_DIRS", filepath.Join(tmpDir, "a")+", "+filepath.Join(tmpDir, "b"))
	defer clearMonitorEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Plan != models.PlanMax5 {
		t.Errorf("Plan = %v, want %v", cfg.Plan, models.PlanMax5)
	}
	if cfg.ResetHour != 9 {
		t.Errorf("ResetHour = %v, want 9", cfg.ResetHour)
	}
	if !cfg.HasCustomResetHour() {
		t.Error("HasCustomResetHour() = false, want true")
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
	if cfg.RefreshInterval != 5*time.Second {
		t.Errorf("RefreshInterval = %v, want 5s", cfg.RefreshInterval)
	}
	if len(cfg.DataDirs) != 2 {
		t.Errorf("DataDirs = %v, want 2 entries", cfg.DataDirs)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"UnknownPlan", "PLAN", "enterprise"},
		{"BadResetHour", "RESET_HOUR", "25"},
		{"BadTimezone", "TIMEZONE", "Mars/Olympus"},
		{"TinyInterval", "REFRESH_INTERVAL", "100ms"},
		{"ZeroCapacity", "CACHE_CAPACITY", "0"},
		{"NegativeTTL", "CACHE_TTL", "-5s"},
	}

	tmpDir := t.TempDir()
	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	os.Chdir(tmpDir)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearMonitorEnv(t)
			os.Setenv(tt.key, tt.value)
			defer os.Unsetenv(tt.key)

			if _, err := Load(); err == nil {
				t.Errorf("Load() succeeded with %s=%s, want error", tt.key, tt.value)
			}
		})
	}
}
