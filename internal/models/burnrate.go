// Package models defines data structures and domain types.
package models

import "time"

// BurnRateEstimate is the consumption velocity derived from blocks that
// intersect the trailing window. Recomputed every tick, never persisted.
type BurnRateEstimate struct {
	ComputedAt          time.Time
	UnitsPerMinute      float64
	SampleWindowMinutes float64
}

// Velocity buckets a burn rate for display (units per minute thresholds).
type Velocity string

const (
	VelocitySlow     Velocity = "slow"
	VelocityNormal   Velocity = "normal"
	VelocityFast     Velocity = "fast"
	VelocityVeryFast Velocity = "very fast"
)

// Velocity classification thresholds in units per minute.
const (
	velocityNormalMin = 50
	velocityFastMin   = 150
	velocityMaxMin    = 300
)

// Velocity classifies the estimate into a display bucket.
func (b BurnRateEstimate) Velocity() Velocity {
	switch {
	case b.UnitsPerMinute < velocityNormalMin:
		return VelocitySlow
	case b.UnitsPerMinute < velocityFastMin:
		return VelocityNormal
	case b.UnitsPerMinute < velocityMaxMin:
		return VelocityFast
	default:
		return VelocityVeryFast
	}
}

// Indicator returns the glyph shown next to the burn rate.
func (v Velocity) Indicator() string {
	switch v {
	case VelocitySlow:
		return "🐌"
	case VelocityNormal:
		return "➡️"
	case VelocityFast:
		return "🚀"
	case VelocityVeryFast:
		return "⚡"
	default:
		return ""
	}
}

// PerHour returns the estimate expressed in units per hour.
func (b BurnRateEstimate) PerHour() float64 {
	return b.UnitsPerMinute * 60
}

// IsZero reports whether the estimate carries no measurable consumption.
func (b BurnRateEstimate) IsZero() bool {
	return b.UnitsPerMinute <= 0
}
