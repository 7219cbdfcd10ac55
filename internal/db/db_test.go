package db

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/j-veylop/claude-quota-tui/internal/models"
)

var testDBCounter atomic.Int64

// Helper to create a test database with a unique name, so shared-cache
// state never leaks between tests.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(fmt.Sprintf("test-%d", testDBCounter.Add(1)))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return db
}

func TestNew(t *testing.T) {
	db, err := New("new-test")
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	if db.Name() != "new-test" {
		t.Errorf("Expected name new-test, got %s", db.Name())
	}
}

func TestSchema_TablesExist(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	tables := []string{
		"usage_samples",
		"session_blocks",
	}

	for _, table := range tables {
		var name string
		err := db.QueryRowContext(context.Background(), "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s does not exist: %v", table, err)
		}
	}
}

func TestNew_NamesAreIsolated(t *testing.T) {
	first := newTestDB(t)
	defer first.Close()
	second := newTestDB(t)
	defer second.Close()

	sample := &models.UsageSample{Timestamp: time.Now(), TotalUnits: 10}
	if err := first.InsertSample(sample); err != nil {
		t.Fatalf("Failed to insert sample: %v", err)
	}

	samples, err := second.RecentSamples(10)
	if err != nil {
		t.Fatalf("Failed to query samples: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("Expected empty database, got %d samples", len(samples))
	}
}

func TestClose(t *testing.T) {
	db := newTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Verify database is closed by trying to query
	_, err := db.QueryContext(context.Background(), "SELECT 1")
	if err == nil {
		t.Error("Expected error querying closed database")
	}
}

func TestInsertSample(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	sample := &models.UsageSample{
		Timestamp:      time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC),
		TotalUnits:     1645,
		Ceiling:        7000,
		UnitsPerMinute: 2.4,
		UsageFraction:  0.235,
		FractionKnown:  true,
		Freshness:      string(models.FreshnessLive),
		Outcome:        string(models.TickSuccess),
	}

	if err := db.InsertSample(sample); err != nil {
		t.Fatalf("Failed to insert sample: %v", err)
	}
	if sample.ID == 0 {
		t.Error("Expected sample ID to be set after insert")
	}

	samples, err := db.RecentSamples(10)
	if err != nil {
		t.Fatalf("Failed to query samples: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("Expected 1 sample, got %d", len(samples))
	}

	got := samples[0]
	if got.TotalUnits != 1645 || got.Ceiling != 7000 {
		t.Errorf("Got units=%d ceiling=%d, want 1645/7000", got.TotalUnits, got.Ceiling)
	}
	if !got.FractionKnown || got.UsageFraction != 0.235 {
		t.Errorf("Got fraction=%v known=%v, want 0.235/true", got.UsageFraction, got.FractionKnown)
	}
	if got.Freshness != string(models.FreshnessLive) {
		t.Errorf("Got freshness %q, want live", got.Freshness)
	}
	if got.Timestamp.Unix() != sample.Timestamp.Unix() {
		t.Errorf("Got timestamp %v, want %v", got.Timestamp, sample.Timestamp)
	}
}

func TestInsertSample_UnknownFraction(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	sample := &models.UsageSample{
		Timestamp: time.Now(),
		Freshness: string(models.FreshnessStale),
		Outcome:   string(models.TickDegraded),
	}
	if err := db.InsertSample(sample); err != nil {
		t.Fatalf("Failed to insert sample: %v", err)
	}

	samples, err := db.RecentSamples(1)
	if err != nil {
		t.Fatalf("Failed to query samples: %v", err)
	}
	if samples[0].FractionKnown {
		t.Error("Expected fraction to stay unknown")
	}
}

func TestRecentSamples_Order(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	base := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		sample := &models.UsageSample{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			TotalUnits: i * 100,
		}
		if err := db.InsertSample(sample); err != nil {
			t.Fatalf("Failed to insert sample %d: %v", i, err)
		}
	}

	samples, err := db.RecentSamples(3)
	if err != nil {
		t.Fatalf("Failed to query samples: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(samples))
	}
	if samples[0].TotalUnits != 400 || samples[2].TotalUnits != 200 {
		t.Errorf("Expected newest first, got %d..%d", samples[0].TotalUnits, samples[2].TotalUnits)
	}
}

func TestSampleSeries(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	inserts := []struct {
		at    time.Time
		units int
		rate  float64
	}{
		{at: now.Add(-10 * time.Minute), units: 100, rate: 2},
		{at: now.Add(-10*time.Minute + 10*time.Second), units: 200, rate: 4},
		{at: now.Add(-5 * time.Minute), units: 300, rate: 6},
		{at: now.Add(-2 * time.Hour), units: 9999, rate: 99},
	}
	for _, in := range inserts {
		sample := &models.UsageSample{Timestamp: in.at, TotalUnits: in.units, UnitsPerMinute: in.rate}
		if err := db.InsertSample(sample); err != nil {
			t.Fatalf("Failed to insert sample: %v", err)
		}
	}

	points, err := db.SampleSeries(models.TimeRange1Hour, now)
	if err != nil {
		t.Fatalf("Failed to query series: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 buckets, got %d: %+v", len(points), points)
	}

	first := points[0]
	if first.SampleCount != 2 {
		t.Errorf("Expected 2 samples in first bucket, got %d", first.SampleCount)
	}
	if first.AvgUnits != 150 || first.AvgRate != 3 {
		t.Errorf("Got avg units=%v rate=%v, want 150/3", first.AvgUnits, first.AvgRate)
	}
	if !first.Bucket.Before(points[1].Bucket) {
		t.Errorf("Expected ascending buckets, got %v then %v", first.Bucket, points[1].Bucket)
	}

	// The session range has no cutoff and sees the old sample too.
	points, err = db.SampleSeries(models.TimeRangeSession, now)
	if err != nil {
		t.Fatalf("Failed to query session series: %v", err)
	}
	if len(points) != 3 {
		t.Errorf("Expected 3 buckets for session range, got %d", len(points))
	}
}

func TestTotalStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	stats, err := db.TotalStats()
	if err != nil {
		t.Fatalf("Failed to query empty stats: %v", err)
	}
	if stats.HasData() {
		t.Errorf("Expected no data, got %+v", stats)
	}

	base := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	inserts := []*models.UsageSample{
		{Timestamp: base, TotalUnits: 100, UnitsPerMinute: 2, Outcome: string(models.TickSuccess)},
		{Timestamp: base.Add(time.Minute), TotalUnits: 500, UnitsPerMinute: 6, Outcome: string(models.TickDegraded)},
		{Timestamp: base.Add(2 * time.Minute), TotalUnits: 300, UnitsPerMinute: 4, Outcome: string(models.TickSuccess)},
	}
	for _, sample := range inserts {
		if err := db.InsertSample(sample); err != nil {
			t.Fatalf("Failed to insert sample: %v", err)
		}
	}

	stats, err = db.TotalStats()
	if err != nil {
		t.Fatalf("Failed to query stats: %v", err)
	}
	if stats.Samples != 3 {
		t.Errorf("Expected 3 samples, got %d", stats.Samples)
	}
	if stats.DegradedTicks != 1 {
		t.Errorf("Expected 1 degraded tick, got %d", stats.DegradedTicks)
	}
	if stats.PeakUnits != 500 {
		t.Errorf("Expected peak units 500, got %d", stats.PeakUnits)
	}
	if stats.PeakRate != 6 {
		t.Errorf("Expected peak rate 6, got %v", stats.PeakRate)
	}
	if stats.AvgRate != 4 {
		t.Errorf("Expected avg rate 4, got %v", stats.AvgRate)
	}
	if !stats.FirstSample.Equal(base) {
		t.Errorf("Expected first sample %v, got %v", base, stats.FirstSample)
	}
	if !stats.LastSample.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("Expected last sample %v, got %v", base.Add(2*time.Minute), stats.LastSample)
	}
}

func TestUpsertBlock(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	start := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	block := models.UsageBlock{
		ID:         "2025-06-10T12:00:00.000Z",
		StartTime:  start,
		IsActive:   true,
		TotalUnits: 100,
	}
	if err := db.UpsertBlock(block, start.Add(time.Minute)); err != nil {
		t.Fatalf("Failed to upsert block: %v", err)
	}

	// Same block seen again later, now completed.
	end := start.Add(3 * time.Hour)
	block.EndTime = &end
	block.IsActive = false
	block.TotalUnits = 4200
	if err := db.UpsertBlock(block, end); err != nil {
		t.Fatalf("Failed to upsert block again: %v", err)
	}

	blocks, err := db.RecentBlocks(10)
	if err != nil {
		t.Fatalf("Failed to query blocks: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}

	got := blocks[0]
	if got.TotalUnits != 4200 {
		t.Errorf("Expected updated units 4200, got %d", got.TotalUnits)
	}
	if got.IsActive {
		t.Error("Expected block to be inactive after update")
	}
	if !got.Ended || !got.EndTime.Equal(end) {
		t.Errorf("Expected end %v, got ended=%v end=%v", end, got.Ended, got.EndTime)
	}
	if !got.LastSeen.Equal(end) {
		t.Errorf("Expected last seen %v, got %v", end, got.LastSeen)
	}
}

func TestRecentBlocks_Order(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	base := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		block := models.UsageBlock{
			ID:         fmt.Sprintf("block-%d", i),
			StartTime:  base.Add(time.Duration(i) * 5 * time.Hour),
			TotalUnits: i,
		}
		if err := db.UpsertBlock(block, time.Now()); err != nil {
			t.Fatalf("Failed to upsert block %d: %v", i, err)
		}
	}

	blocks, err := db.RecentBlocks(2)
	if err != nil {
		t.Fatalf("Failed to query blocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].BlockID != "block-3" || blocks[1].BlockID != "block-2" {
		t.Errorf("Expected newest start first, got %s then %s", blocks[0].BlockID, blocks[1].BlockID)
	}
}
