// Package models defines data structures and domain types.
package models

import "time"

// TimeRange represents the selected history time range. History covers the
// current run only, so the ranges are session-scaled.
type TimeRange int

const (
	// TimeRange15Min shows samples from the last 15 minutes.
	TimeRange15Min TimeRange = iota
	// TimeRange1Hour shows samples from the last hour.
	TimeRange1Hour
	// TimeRange4Hours shows samples from the last 4 hours.
	TimeRange4Hours
	// TimeRangeSession shows every sample recorded this run.
	TimeRangeSession
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange15Min:
		return "15 Min"
	case TimeRange1Hour:
		return "1 Hour"
	case TimeRange4Hours:
		return "4 Hours"
	case TimeRangeSession:
		return "Session"
	default:
		return "Unknown"
	}
}

// Minutes returns the span of the time range in minutes (0 = unlimited).
func (t TimeRange) Minutes() int {
	switch t {
	case TimeRange15Min:
		return 15
	case TimeRange1Hour:
		return 60
	case TimeRange4Hours:
		return 240
	case TimeRangeSession:
		return 0
	default:
		return 60
	}
}

// BucketSeconds returns the aggregation bucket width used for charts.
func (t TimeRange) BucketSeconds() int {
	switch t {
	case TimeRange15Min:
		return 15
	case TimeRange1Hour:
		return 60
	case TimeRange4Hours:
		return 300
	default:
		return 300
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// UsageSample is one history row recorded per tick.
type UsageSample struct {
	Timestamp      time.Time
	Freshness      string
	Outcome        string
	ID             int64
	TotalUnits     int
	Ceiling        int
	UnitsPerMinute float64
	UsageFraction  float64
	FractionKnown  bool
}

// SeriesPoint is a bucketed average used by the history charts.
type SeriesPoint struct {
	Bucket      time.Time
	AvgUnits    float64
	AvgRate     float64
	SampleCount int
}

// BlockRow is an observed usage block as stored by the history store. Blocks
// stay listed even when a later fetch fails and the live snapshot is gone.
type BlockRow struct {
	StartTime  time.Time
	EndTime    time.Time
	LastSeen   time.Time
	BlockID    string
	TotalUnits int
	Ended      bool
	IsActive   bool
	IsGap      bool
}

// RunStats aggregates the monitor's own run for the info tab.
type RunStats struct {
	FirstSample   time.Time
	LastSample    time.Time
	Samples       int
	DegradedTicks int
	PeakUnits     int
	PeakRate      float64
	AvgRate       float64
}

// HasData reports whether any samples were recorded this run.
func (s RunStats) HasData() bool {
	return s.Samples > 0
}
