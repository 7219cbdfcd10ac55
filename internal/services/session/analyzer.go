// Package session turns a snapshot of usage blocks into the current session
// view: the active block plus the block list used by window computations.
package session

import (
	"sort"

	"github.com/j-veylop/claude-quota-tui/internal/logger"
	"github.com/j-veylop/claude-quota-tui/internal/models"
)

// Analysis is the result of examining one snapshot.
type Analysis struct {
	Active *models.UsageBlock
	All    []models.UsageBlock
}

// HasActive reports whether a session block is currently open.
func (a Analysis) HasActive() bool {
	return a.Active != nil
}

// Analyze selects the active block from a snapshot. No active block is a
// valid state, not an error. More than one active block is malformed input;
// the block with the latest start time wins and the anomaly is logged.
func Analyze(snap *models.Snapshot) Analysis {
	if snap == nil {
		return Analysis{}
	}

	analysis := Analysis{All: snap.Blocks}

	activeCount := 0
	var selected models.UsageBlock
	for _, b := range snap.Blocks {
		if !b.IsActive {
			continue
		}
		activeCount++
		if activeCount == 1 || b.StartTime.After(selected.StartTime) {
			selected = b
		}
	}

	if activeCount == 0 {
		return analysis
	}
	if activeCount > 1 {
		logger.Warn("snapshot claims multiple active blocks",
			"count", activeCount,
			"selected", selected.ID,
			"selected_start", selected.StartTime)
	}

	analysis.Active = &selected
	return analysis
}

// TotalUnits sums cumulative units across blocks, skipping gap blocks.
func TotalUnits(blocks []models.UsageBlock) int {
	total := 0
	for _, b := range blocks {
		if b.IsGap {
			continue
		}
		total += b.TotalUnits
	}
	return total
}

// MaxUnits returns the highest cumulative unit count across blocks, skipping
// gap blocks. Returns 0 for an empty or all-gap list.
func MaxUnits(blocks []models.UsageBlock) int {
	max := 0
	for _, b := range blocks {
		if b.IsGap {
			continue
		}
		if b.TotalUnits > max {
			max = b.TotalUnits
		}
	}
	return max
}

// CompletedMaxUnits returns the highest unit count among completed blocks,
// skipping gap and active blocks. Used to seed auto-detected ceilings from
// history alone.
func CompletedMaxUnits(blocks []models.UsageBlock) int {
	max := 0
	for _, b := range blocks {
		if b.IsGap || b.IsActive {
			continue
		}
		if b.TotalUnits > max {
			max = b.TotalUnits
		}
	}
	return max
}

// SortedByStart returns a copy of blocks ordered by start time ascending.
func SortedByStart(blocks []models.UsageBlock) []models.UsageBlock {
	sorted := make([]models.UsageBlock, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}
