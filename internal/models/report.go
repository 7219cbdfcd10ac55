// Package models defines data structures and domain types.
package models

import "time"

// Freshness describes where the data behind a Report came from.
type Freshness string

const (
	// FreshnessLive means the snapshot was fetched from the source this tick.
	FreshnessLive Freshness = "live"
	// FreshnessCached means the snapshot was served from cache within its TTL.
	FreshnessCached Freshness = "cached"
	// FreshnessStale means the source failed and an expired snapshot (or no
	// data at all) is being shown.
	FreshnessStale Freshness = "stale"
)

// TickOutcome classifies one pass of the monitor loop.
type TickOutcome string

const (
	TickSuccess  TickOutcome = "success"
	TickDegraded TickOutcome = "degraded"
	TickFatal    TickOutcome = "fatal"
)

// Report is the full set of values the presentation layer consumes, produced
// once per tick.
type Report struct {
	GeneratedAt     time.Time
	ResetAt         time.Time
	Active          *UsageBlock
	UsageFraction   *float64 // in [0,1]; nil when no session or no ceiling
	DepletionAt     *time.Time
	LastError       string
	BurnRate        BurnRateEstimate
	Tier            QuotaTier
	FetchLatency    time.Duration
	Freshness       Freshness
	Outcome         TickOutcome
	TierJustChanged bool
}

// HasActiveSession reports whether a session block is currently open.
func (r Report) HasActiveSession() bool {
	return r.Active != nil
}

// UsagePercent returns the usage fraction as a percentage, 0 when unknown.
func (r Report) UsagePercent() float64 {
	if r.UsageFraction == nil {
		return 0
	}
	return *r.UsageFraction * 100
}

// UnitsUsed returns the active block's cumulative units, 0 without a session.
func (r Report) UnitsUsed() int {
	if r.Active == nil {
		return 0
	}
	return r.Active.TotalUnits
}

// UnitsRemaining returns how many units are left under the tier ceiling,
// clamped to 0 once the ceiling is exceeded.
func (r Report) UnitsRemaining() int {
	left := r.Tier.Ceiling - r.UnitsUsed()
	if left < 0 {
		return 0
	}
	return left
}

// DepletesBeforeReset reports whether the projected depletion falls before
// the next quota reset.
func (r Report) DepletesBeforeReset() bool {
	return r.DepletionAt != nil && r.DepletionAt.Before(r.ResetAt)
}
