// Package resetsched computes upcoming quota reset instants in the
// configured timezone.
package resetsched

import "time"

// DefaultScheduleHours are the local hours at which five-hour billing
// windows roll over when no custom reset hour is configured.
var DefaultScheduleHours = []int{4, 9, 14, 18, 23}

// NextReset returns the earliest instant strictly after now whose local hour
// in loc equals hour, with minutes and seconds at zero. When now sits
// exactly on such a boundary the following day's boundary is returned.
// Nonexistent wall times around DST transitions follow time.Date
// normalization.
func NextReset(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// NextResetFromSchedule returns the earliest default-schedule boundary
// strictly after now.
func NextResetFromSchedule(now time.Time, loc *time.Location) time.Time {
	var best time.Time
	for _, h := range DefaultScheduleHours {
		c := NextReset(now, h, loc)
		if best.IsZero() || c.Before(best) {
			best = c
		}
	}
	return best
}
