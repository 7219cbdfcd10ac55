// Package config contains everything related to configuration
package config

import "time"

// Defaults for the monitor loop and the cache in front of the usage source.
const (
	defaultRefreshInterval = 3 * time.Second
	minRefreshInterval     = time.Second

	defaultCacheCapacity = 500
	defaultCacheTTL      = 5 * time.Second

	defaultSourceTimeout = 8 * time.Second

	// defaultTimezone applies when TIMEZONE is unset.
	defaultTimezone = "Europe/Warsaw"

	defaultLogLevel = "info"
)

// unsetResetHour marks "no custom reset hour configured"; the scheduler then
// uses its built-in reset cycle.
const unsetResetHour = -1
