package resetsched

import (
	"testing"
	"time"
)

func TestNextReset(t *testing.T) {
	utc := time.UTC

	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2025, 6, 10, 8, 15, 30, 0, utc),
			hour: 14,
			want: time.Date(2025, 6, 10, 14, 0, 0, 0, utc),
		},
		{
			name: "already passed rolls to tomorrow",
			now:  time.Date(2025, 6, 10, 16, 0, 1, 0, utc),
			hour: 14,
			want: time.Date(2025, 6, 11, 14, 0, 0, 0, utc),
		},
		{
			name: "exactly on the boundary rolls a full day",
			now:  time.Date(2025, 6, 10, 14, 0, 0, 0, utc),
			hour: 14,
			want: time.Date(2025, 6, 11, 14, 0, 0, 0, utc),
		},
		{
			name: "one nanosecond past boundary rolls a full day",
			now:  time.Date(2025, 6, 10, 14, 0, 0, 1, utc),
			hour: 14,
			want: time.Date(2025, 6, 11, 14, 0, 0, 0, utc),
		},
		{
			name: "one nanosecond before boundary stays today",
			now:  time.Date(2025, 6, 10, 13, 59, 59, 999999999, utc),
			hour: 14,
			want: time.Date(2025, 6, 10, 14, 0, 0, 0, utc),
		},
		{
			name: "midnight hour",
			now:  time.Date(2025, 6, 10, 23, 30, 0, 0, utc),
			hour: 0,
			want: time.Date(2025, 6, 11, 0, 0, 0, 0, utc),
		},
		{
			name: "month rollover",
			now:  time.Date(2025, 6, 30, 23, 0, 0, 0, utc),
			hour: 9,
			want: time.Date(2025, 7, 1, 9, 0, 0, 0, utc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextReset(tt.now, tt.hour, utc)
			if !got.Equal(tt.want) {
				t.Errorf("NextReset(%v, %d) = %v, want %v", tt.now, tt.hour, got, tt.want)
			}
		})
	}
}

func TestNextReset_AlwaysStrictlyFuture(t *testing.T) {
	utc := time.UTC
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, utc)

	for d := 0; d < 48; d++ {
		at := now.Add(time.Duration(d) * 30 * time.Minute)
		for hour := 0; hour < 24; hour++ {
			got := NextReset(at, hour, utc)
			if !got.After(at) {
				t.Fatalf("NextReset(%v, %d) = %v, not strictly after now", at, hour, got)
			}
			if got.Sub(at) > 24*time.Hour {
				t.Fatalf("NextReset(%v, %d) = %v, more than 24h away", at, hour, got)
			}
			if got.Hour() != hour || got.Minute() != 0 || got.Second() != 0 {
				t.Fatalf("NextReset(%v, %d) = %v, not on the hour boundary", at, hour, got)
			}
		}
	}
}

func TestNextReset_CrossTimezone(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	// 14:30 UTC on June 10 is 16:30 in Warsaw, so a 17:00 Warsaw reset is
	// still ahead while 17:00 UTC-as-local would already have passed.
	now := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	got := NextReset(now, 17, warsaw)
	want := time.Date(2025, 6, 10, 17, 0, 0, 0, warsaw)
	if !got.Equal(want) {
		t.Errorf("NextReset() = %v, want %v", got, want)
	}
}

func TestNextReset_SpringForward(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}

	// Warsaw clocks jump 02:00 CET to 03:00 CEST on 2025-03-30. A 03:00
	// reset lands only thirty absolute minutes after 01:30 CET.
	now := time.Date(2025, 3, 30, 1, 30, 0, 0, warsaw)
	got := NextReset(now, 3, warsaw)
	want := time.Date(2025, 3, 30, 3, 0, 0, 0, warsaw)
	if !got.Equal(want) {
		t.Errorf("NextReset() = %v, want %v", got, want)
	}
	if !got.After(now) {
		t.Errorf("NextReset() = %v, not after %v", got, now)
	}
}

func TestNextResetFromSchedule(t *testing.T) {
	utc := time.UTC

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "between morning boundaries",
			now:  time.Date(2025, 6, 10, 10, 30, 0, 0, utc),
			want: time.Date(2025, 6, 10, 14, 0, 0, 0, utc),
		},
		{
			name: "before first boundary",
			now:  time.Date(2025, 6, 10, 1, 0, 0, 0, utc),
			want: time.Date(2025, 6, 10, 4, 0, 0, 0, utc),
		},
		{
			name: "after last boundary wraps to tomorrow",
			now:  time.Date(2025, 6, 10, 23, 30, 0, 0, utc),
			want: time.Date(2025, 6, 11, 4, 0, 0, 0, utc),
		},
		{
			name: "exactly on a boundary picks the next one",
			now:  time.Date(2025, 6, 10, 9, 0, 0, 0, utc),
			want: time.Date(2025, 6, 10, 14, 0, 0, 0, utc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextResetFromSchedule(tt.now, utc)
			if !got.Equal(tt.want) {
				t.Errorf("NextResetFromSchedule(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
