package models

import (
	"testing"
	"time"
)

func TestUsageBlock_EffectiveEnd(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-30 * time.Minute)

	tests := []struct {
		name  string
		block UsageBlock
		want  time.Time
	}{
		{"Open", UsageBlock{StartTime: now.Add(-time.Hour)}, now},
		{"Closed", UsageBlock{StartTime: now.Add(-time.Hour), EndTime: &ended}, ended},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.block.EffectiveEnd(now); !got.Equal(tt.want) {
				t.Errorf("EffectiveEnd() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsageBlock_Duration(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	ended := now.Add(-10 * time.Minute)

	tests := []struct {
		name  string
		block UsageBlock
		want  time.Duration
	}{
		{"Open", UsageBlock{StartTime: now.Add(-45 * time.Minute)}, 45 * time.Minute},
		{"Closed", UsageBlock{StartTime: now.Add(-70 * time.Minute), EndTime: &ended}, 60 * time.Minute},
		{"FutureStart", UsageBlock{StartTime: now.Add(5 * time.Minute)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.block.Duration(now); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshot_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		snap *Snapshot
		want bool
	}{
		{"Nil", nil, true},
		{"NoBlocks", &Snapshot{}, true},
		{"WithBlocks", &Snapshot{Blocks: []UsageBlock{{ID: "b1"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}
