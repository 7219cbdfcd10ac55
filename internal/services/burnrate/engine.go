// Package burnrate estimates consumption velocity from blocks intersecting
// the trailing window and projects when the quota depletes.
package burnrate

import (
	"sort"
	"time"

	"github.com/j-veylop/claude-quota-tui/internal/models"
)

// window is the trailing span considered by Estimate.
const window = time.Hour

// Estimate computes units per minute from every block overlapping
// [now-60m, now]. A qualifying block contributes its entire unit count, not
// a prorated share; gap blocks widen the covered span but contribute no
// units. The divisor is the span actually covered, not a fixed hour.
func Estimate(blocks []models.UsageBlock, now time.Time) models.BurnRateEstimate {
	windowStart := now.Add(-window)

	// Most-recent-first by effective end. Once one block ends at or before
	// the window start, every remaining block does too, so the scan can stop
	// without changing the result.
	sorted := make([]models.UsageBlock, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveEnd(now).Before(sorted[j].EffectiveEnd(now))
	})

	totalUnits := 0
	var coveredFrom time.Time
	haveCovered := false

	for i := len(sorted) - 1; i >= 0; i-- {
		b := sorted[i]
		if !b.EffectiveEnd(now).After(windowStart) {
			break
		}
		if !b.StartTime.Before(now) {
			continue
		}

		from := b.StartTime
		if from.Before(windowStart) {
			from = windowStart
		}
		to := b.EffectiveEnd(now)
		if to.After(now) {
			to = now
		}
		if !to.After(from) {
			continue
		}

		if !b.IsGap {
			totalUnits += b.TotalUnits
		}
		if !haveCovered || from.Before(coveredFrom) {
			coveredFrom = from
			haveCovered = true
		}
	}

	est := models.BurnRateEstimate{ComputedAt: now}
	if haveCovered {
		minutes := now.Sub(coveredFrom).Minutes()
		est.SampleWindowMinutes = minutes
		if minutes > 0 {
			est.UnitsPerMinute = float64(totalUnits) / minutes
		}
	}
	return est
}

// ProjectDepletion returns the instant the remaining units run out at the
// estimated rate. Nil means the quota will not deplete under current
// conditions. Negative remaining units count as already depleted.
func ProjectDepletion(est models.BurnRateEstimate, unitsRemaining int, now time.Time) *time.Time {
	if unitsRemaining < 0 {
		depleted := now
		return &depleted
	}
	if est.UnitsPerMinute <= 0 || unitsRemaining == 0 {
		return nil
	}

	minutes := float64(unitsRemaining) / est.UnitsPerMinute
	at := now.Add(time.Duration(minutes * float64(time.Minute)))
	return &at
}
