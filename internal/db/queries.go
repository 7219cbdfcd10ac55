package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/claude-quota-tui/internal/logger"
	"github.com/j-veylop/claude-quota-tui/internal/models"
)

// timeLayout is how timestamps are stored, so SQLite's date functions can
// read them back.
const timeLayout = "2006-01-02 15:04:05"

// InsertSample records one tick in the history.
func (db *DB) InsertSample(sample *models.UsageSample) error {
	query := `
		INSERT INTO usage_samples (
			timestamp, total_units, ceiling, units_per_minute,
			usage_fraction, freshness, outcome
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := sample.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var fraction sql.NullFloat64
	if sample.FractionKnown {
		fraction = sql.NullFloat64{Float64: sample.UsageFraction, Valid: true}
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(timeLayout),
		sample.TotalUnits,
		sample.Ceiling,
		sample.UnitsPerMinute,
		fraction,
		sample.Freshness,
		sample.Outcome,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		sample.ID = id
	}

	return nil
}

// RecentSamples returns the most recent samples, newest first.
func (db *DB) RecentSamples(limit int) ([]models.UsageSample, error) {
	query := `
		SELECT id, timestamp, total_units, ceiling, units_per_minute,
			   usage_fraction, freshness, outcome
		FROM usage_samples
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []models.UsageSample
	for rows.Next() {
		var s models.UsageSample
		var fraction sql.NullFloat64

		err := rows.Scan(
			&s.ID,
			&s.Timestamp,
			&s.TotalUnits,
			&s.Ceiling,
			&s.UnitsPerMinute,
			&fraction,
			&s.Freshness,
			&s.Outcome,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage sample: %w", err)
		}

		s.UsageFraction = fraction.Float64
		s.FractionKnown = fraction.Valid
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

// SampleSeries returns bucketed averages for the chart over the given range.
func (db *DB) SampleSeries(rng models.TimeRange, now time.Time) ([]models.SeriesPoint, error) {
	query := `
		SELECT
			(CAST(strftime('%s', timestamp) AS INTEGER) / ?) * ? AS bucket,
			AVG(total_units) AS avg_units,
			AVG(units_per_minute) AS avg_rate,
			COUNT(*) AS sample_count
		FROM usage_samples
		WHERE timestamp >= ?
		GROUP BY bucket
		ORDER BY bucket ASC
	`

	bucket := rng.BucketSeconds()
	var cutoff time.Time
	if m := rng.Minutes(); m > 0 {
		cutoff = now.Add(-time.Duration(m) * time.Minute)
	}

	rows, err := db.QueryContext(context.Background(), query,
		bucket, bucket, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query sample series: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var points []models.SeriesPoint
	for rows.Next() {
		var p models.SeriesPoint
		var epoch int64

		err := rows.Scan(&epoch, &p.AvgUnits, &p.AvgRate, &p.SampleCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series point: %w", err)
		}

		p.Bucket = time.Unix(epoch, 0).UTC()
		points = append(points, p)
	}

	return points, rows.Err()
}

// TotalStats returns aggregated statistics for the whole run.
func (db *DB) TotalStats() (*models.RunStats, error) {
	query := `
		SELECT
			COUNT(*) AS samples,
			COALESCE(MIN(timestamp), '0001-01-01 00:00:00') AS first_sample,
			COALESCE(MAX(timestamp), '0001-01-01 00:00:00') AS last_sample,
			COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0) AS degraded_ticks,
			COALESCE(MAX(total_units), 0) AS peak_units,
			COALESCE(MAX(units_per_minute), 0) AS peak_rate,
			COALESCE(AVG(units_per_minute), 0) AS avg_rate
		FROM usage_samples
	`

	var stats models.RunStats
	var first, last string
	err := db.QueryRowContext(context.Background(), query, string(models.TickDegraded)).Scan(
		&stats.Samples,
		&first,
		&last,
		&stats.DegradedTicks,
		&stats.PeakUnits,
		&stats.PeakRate,
		&stats.AvgRate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query total stats: %w", err)
	}

	// Aggregate columns come back as text, not DATETIME.
	stats.FirstSample, _ = time.Parse(timeLayout, first)
	stats.LastSample, _ = time.Parse(timeLayout, last)

	return &stats, nil
}

// UpsertBlock records an observed block, updating it when already known.
// Blocks stay listed after the live snapshot is gone, so the sessions tab
// survives fetch failures.
func (db *DB) UpsertBlock(block models.UsageBlock, seenAt time.Time) error {
	query := `
		INSERT INTO session_blocks (
			block_id, start_time, end_time, total_units, is_active, is_gap, last_seen
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(block_id) DO UPDATE SET
			end_time = excluded.end_time,
			total_units = excluded.total_units,
			is_active = excluded.is_active,
			is_gap = excluded.is_gap,
			last_seen = excluded.last_seen
	`

	if seenAt.IsZero() {
		seenAt = time.Now()
	}

	_, err := db.ExecContext(context.Background(), query,
		block.ID,
		block.StartTime.UTC().Format(timeLayout),
		nullTimeString(block.EndTime),
		block.TotalUnits,
		block.IsActive,
		block.IsGap,
		seenAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert block: %w", err)
	}
	return nil
}

// RecentBlocks returns observed blocks, newest start first.
func (db *DB) RecentBlocks(limit int) ([]models.BlockRow, error) {
	query := `
		SELECT block_id, start_time, end_time, last_seen, total_units, is_active, is_gap
		FROM session_blocks
		ORDER BY start_time DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var blocks []models.BlockRow
	for rows.Next() {
		var b models.BlockRow
		var end sql.NullTime

		err := rows.Scan(
			&b.BlockID,
			&b.StartTime,
			&end,
			&b.LastSeen,
			&b.TotalUnits,
			&b.IsActive,
			&b.IsGap,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block row: %w", err)
		}

		b.Ended = end.Valid
		if end.Valid {
			b.EndTime = end.Time
		}
		blocks = append(blocks, b)
	}

	return blocks, rows.Err()
}

// nullTimeString returns a sql.NullString from an optional time.
func nullTimeString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}
