// Package models defines data structures and domain types.
package models

import "time"

// UsageBlock is a time-bounded accounting record reported by the usage source.
type UsageBlock struct {
	StartTime  time.Time
	EndTime    *time.Time // nil while the block is still open
	ID         string
	TotalUnits int
	IsActive   bool
	IsGap      bool
}

// EffectiveEnd returns the block's end time, or now for a block that is
// still open.
func (b UsageBlock) EffectiveEnd(now time.Time) time.Time {
	if b.EndTime != nil {
		return *b.EndTime
	}
	return now
}

// Duration returns how long the block has been running, measured against
// now for open blocks.
func (b UsageBlock) Duration(now time.Time) time.Duration {
	d := b.EffectiveEnd(now).Sub(b.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// Snapshot is the set of usage blocks returned by one fetch. Treated as
// immutable once received; the analytics core only derives values from it.
type Snapshot struct {
	FetchedAt time.Time
	Blocks    []UsageBlock
}

// IsEmpty reports whether the snapshot carries no blocks at all.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Blocks) == 0
}
