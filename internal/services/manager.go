// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/claude-quota-tui/internal/cache"
	"github.com/j-veylop/claude-quota-tui/internal/config"
	"github.com/j-veylop/claude-quota-tui/internal/db"
	"github.com/j-veylop/claude-quota-tui/internal/logger"
	"github.com/j-veylop/claude-quota-tui/internal/models"
	"github.com/j-veylop/claude-quota-tui/internal/services/burnrate"
	"github.com/j-veylop/claude-quota-tui/internal/services/resetsched"
	"github.com/j-veylop/claude-quota-tui/internal/services/session"
	"github.com/j-veylop/claude-quota-tui/internal/services/source"
	"github.com/j-veylop/claude-quota-tui/internal/services/tier"
)

type (
	// ReportEvent carries the report produced by one tick.
	ReportEvent struct {
		Report *models.Report
	}

	// TierSwitchEvent is emitted once when a static plan switches to
	// auto-detection.
	TierSwitchEvent struct {
		From models.QuotaTier
		To   models.QuotaTier
	}

	// SourceErrorEvent is emitted when a fetch fails recoverably.
	SourceErrorEvent struct {
		Err error
	}

	// FatalEvent is emitted when the monitor cannot continue, such as a
	// missing CLI on the very first fetch.
	FatalEvent struct {
		Err error
	}

	// StatsEvent carries cache statistics after each tick.
	StatsEvent struct {
		Cache cache.Stats
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ReportEvent) isServiceEvent()      {}
func (TierSwitchEvent) isServiceEvent()  {}
func (SourceErrorEvent) isServiceEvent() {}
func (FatalEvent) isServiceEvent()       {}
func (StatsEvent) isServiceEvent()       {}

// Fetcher fetches usage snapshots.
type Fetcher interface {
	Fetch(ctx context.Context) (*models.Snapshot, error)
}

// fetchCacheKey is the adaptive-cache key for the raw fetch. With the base
// TTL above the refresh interval, alternating ticks are served from cache
// instead of spawning the CLI.
const fetchCacheKey = "blocks_offline_json"

// dbName identifies the in-memory history database. Each manager gets a
// numbered instance; shared-cache DSNs with the same name would otherwise
// see each other's rows.
const dbName = "cqt"

var dbInstance atomic.Int64

// Manager runs the tick loop and routes derived reports to subscribers.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	source      Fetcher
	watcher     *source.Watcher
	cache       *cache.Cache
	tierCtl     *tier.Controller
	database    *db.DB
	stopChan    chan struct{}
	refreshChan chan struct{}
	subscribers []chan<- ServiceEvent
	ctx         context.Context
	cancel      context.CancelFunc
	now         func() time.Time

	lastGood        *models.Snapshot
	lastReport      *models.Report
	firstFetchDone  bool
	depletionWarned bool
}

// NewManager creates a manager with the real CLI client and starts the tick
// loop.
func NewManager(cfg *config.Config) (*Manager, error) {
	m, err := newManager(cfg, source.NewClient(cfg.SourceTimeout))
	if err != nil {
		return nil, err
	}

	watcher, err := source.NewWatcher(cfg.DataDirs)
	if err != nil {
		logger.Warn("transcript watching disabled", "error", err)
	} else {
		m.watcher = watcher
	}

	go m.run()

	return m, nil
}

// newManager wires everything except the file watcher and the tick loop.
func newManager(cfg *config.Config, fetcher Fetcher) (*Manager, error) {
	usageCache, err := cache.New(cfg.CacheCapacity, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	database, err := db.New(fmt.Sprintf("%s-%d", dbName, dbInstance.Add(1)))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		cfg:         cfg,
		source:      fetcher,
		cache:       usageCache,
		tierCtl:     tier.New(cfg.Plan),
		database:    database,
		stopChan:    make(chan struct{}),
		refreshChan: make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
		now:         time.Now,
	}, nil
}

// run executes ticks on the refresh interval, on transcript changes, and on
// manual refresh requests.
func (m *Manager) run() {
	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()

	var changes <-chan struct{}
	if m.watcher != nil {
		changes = m.watcher.Changes()
	}

	m.tick()

	for {
		select {
		case <-ticker.C:
			m.tick()
		case <-changes:
			// A transcript write makes the cached snapshot obsolete;
			// drop it so this tick refetches.
			m.cache.Purge()
			m.tick()
		case <-m.refreshChan:
			// Forced refresh always consults the source.
			m.cache.Purge()
			m.tick()
		case <-m.stopChan:
			return
		}
	}
}

// tick produces one report and fans out its consequences.
func (m *Manager) tick() {
	now := m.now()
	prevTier := m.tierCtl.Tier()

	report, liveSnap, fetchErr := m.runTick(now)

	m.mu.Lock()
	m.lastReport = report
	m.mu.Unlock()

	m.recordHistory(report, liveSnap)

	m.broadcast(ReportEvent{Report: report})

	if report.TierJustChanged {
		m.broadcast(TierSwitchEvent{From: prevTier, To: report.Tier})
		m.notifyTierSwitch(prevTier, report.Tier)
	}

	switch {
	case report.Outcome == models.TickFatal:
		m.broadcast(FatalEvent{Err: fetchErr})
	case fetchErr != nil:
		m.broadcast(SourceErrorEvent{Err: fetchErr})
	}

	m.checkDepletionWarning(report)

	m.broadcast(StatsEvent{Cache: m.cache.Stats()})
}

// runTick fetches (or reuses) a snapshot and derives the report from it.
// liveSnap is non-nil only when the source was actually consulted.
func (m *Manager) runTick(now time.Time) (report *models.Report, liveSnap *models.Snapshot, fetchErr error) {
	snap, freshness, latency, fetchErr := m.obtainSnapshot()

	if fetchErr != nil {
		m.mu.RLock()
		firstFetchDone := m.firstFetchDone
		fallback := m.lastGood
		m.mu.RUnlock()

		if !firstFetchDone && isFatal(fetchErr) {
			logger.Error("usage source unavailable", "error", fetchErr)
			return m.failureReport(now, fetchErr, models.TickFatal), nil, fetchErr
		}

		logger.Warn("fetch failed, serving stale data", "error", fetchErr)
		if fallback == nil {
			return m.failureReport(now, fetchErr, models.TickDegraded), nil, fetchErr
		}
		report := m.deriveReport(now, fallback, models.FreshnessStale, 0)
		report.Outcome = models.TickDegraded
		report.LastError = fetchErr.Error()
		return report, nil, fetchErr
	}

	report = m.deriveReport(now, snap, freshness, latency)
	if freshness == models.FreshnessLive {
		liveSnap = snap
	}
	return report, liveSnap, nil
}

// obtainSnapshot serves the snapshot from the adaptive cache when possible
// and falls through to the CLI otherwise.
func (m *Manager) obtainSnapshot() (*models.Snapshot, models.Freshness, time.Duration, error) {
	if v, ok := m.cache.Get(fetchCacheKey); ok {
		if snap, ok := v.(*models.Snapshot); ok {
			return snap, models.FreshnessCached, 0, nil
		}
	}

	start := m.now()
	snap, err := m.source.Fetch(m.ctx)
	latency := m.now().Sub(start)
	if err != nil {
		return nil, models.FreshnessStale, latency, err
	}

	m.cache.Set(fetchCacheKey, snap)

	m.mu.Lock()
	m.lastGood = snap
	m.firstFetchDone = true
	m.mu.Unlock()

	return snap, models.FreshnessLive, latency, nil
}

// deriveReport computes everything the presentation layer needs from one
// snapshot.
func (m *Manager) deriveReport(now time.Time, snap *models.Snapshot, freshness models.Freshness, latency time.Duration) *models.Report {
	analysis := session.Analyze(snap)

	estimate := m.burnRate(analysis.All, now)
	currentTier, justChanged := m.tierCtl.Observe(analysis.Active, analysis.All)

	report := &models.Report{
		GeneratedAt:     now,
		ResetAt:         m.nextReset(now),
		Active:          analysis.Active,
		BurnRate:        estimate,
		Tier:            currentTier,
		FetchLatency:    latency,
		Freshness:       freshness,
		Outcome:         models.TickSuccess,
		TierJustChanged: justChanged,
	}

	if analysis.HasActive() && currentTier.Ceiling > 0 {
		fraction := float64(analysis.Active.TotalUnits) / float64(currentTier.Ceiling)
		fraction = math.Min(1, math.Max(0, fraction))
		report.UsageFraction = &fraction

		remaining := currentTier.Ceiling - analysis.Active.TotalUnits
		report.DepletionAt = burnrate.ProjectDepletion(estimate, remaining, now)
	}

	return report
}

// burnRate returns the estimate for the given blocks, reusing a cached
// result when the same blocks were seen within the TTL.
func (m *Manager) burnRate(blocks []models.UsageBlock, now time.Time) models.BurnRateEstimate {
	key := cache.BlocksKey("burnrate", blocks)
	if v, ok := m.cache.Get(key); ok {
		if estimate, ok := v.(models.BurnRateEstimate); ok {
			return estimate
		}
	}

	estimate := burnrate.Estimate(blocks, now)
	m.cache.Set(key, estimate)
	return estimate
}

// failureReport builds a report for a tick with no usable snapshot.
func (m *Manager) failureReport(now time.Time, err error, outcome models.TickOutcome) *models.Report {
	return &models.Report{
		GeneratedAt: now,
		ResetAt:     m.nextReset(now),
		LastError:   err.Error(),
		Tier:        m.tierCtl.Tier(),
		Freshness:   models.FreshnessStale,
		Outcome:     outcome,
	}
}

func (m *Manager) nextReset(now time.Time) time.Time {
	if m.cfg.HasCustomResetHour() {
		return resetsched.NextReset(now, m.cfg.ResetHour, m.cfg.Location)
	}
	return resetsched.NextResetFromSchedule(now, m.cfg.Location)
}

// isFatal reports whether the error leaves the monitor with nothing to show,
// ever.
func isFatal(err error) bool {
	return errors.Is(err, source.ErrNotInstalled)
}

// recordHistory writes the tick into the in-memory store. History failures
// are logged, never surfaced; the live view does not depend on them.
func (m *Manager) recordHistory(report *models.Report, liveSnap *models.Snapshot) {
	sample := &models.UsageSample{
		Timestamp:      report.GeneratedAt,
		TotalUnits:     report.UnitsUsed(),
		Ceiling:        report.Tier.Ceiling,
		UnitsPerMinute: report.BurnRate.UnitsPerMinute,
		Freshness:      string(report.Freshness),
		Outcome:        string(report.Outcome),
	}
	if report.UsageFraction != nil {
		sample.UsageFraction = *report.UsageFraction
		sample.FractionKnown = true
	}
	if err := m.database.InsertSample(sample); err != nil {
		logger.Error("failed to record sample", "error", err)
	}

	if liveSnap == nil {
		return
	}
	for _, block := range liveSnap.Blocks {
		if err := m.database.UpsertBlock(block, report.GeneratedAt); err != nil {
			logger.Error("failed to record block", "block", block.ID, "error", err)
		}
	}
}

// notifyTierSwitch raises a desktop notification for the one-time switch to
// auto-detection.
func (m *Manager) notifyTierSwitch(from, to models.QuotaTier) {
	title := "Quota tier exceeded"
	body := fmt.Sprintf("Usage passed the %s ceiling (%d); tracking %d now.",
		from.Plan, from.Ceiling, to.Ceiling)
	if err := beeep.Notify(title, body, ""); err != nil {
		logger.Debug("notification failed", "error", err)
	}
}

// checkDepletionWarning notifies when the projection first crosses the next
// reset, and re-arms once the projection clears again.
func (m *Manager) checkDepletionWarning(report *models.Report) {
	depleting := report.DepletesBeforeReset()

	m.mu.Lock()
	warned := m.depletionWarned
	m.depletionWarned = depleting
	m.mu.Unlock()

	if !depleting || warned {
		return
	}

	title := "Quota depletion ahead"
	body := fmt.Sprintf("At the current rate the quota runs out %s, before the %s reset.",
		report.DepletionAt.Format("15:04"), report.ResetAt.Format("15:04"))
	if err := beeep.Notify(title, body, ""); err != nil {
		logger.Debug("notification failed", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// RefreshNow requests an immediate tick. A pending request already covers
// this one.
func (m *Manager) RefreshNow() {
	select {
	case m.refreshChan <- struct{}{}:
	default:
	}
}

// LastReport returns the most recent report, nil before the first tick.
func (m *Manager) LastReport() *models.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastReport
}

// CacheStats returns current adaptive-cache statistics.
func (m *Manager) CacheStats() cache.Stats {
	return m.cache.Stats()
}

// RecentBlocks returns observed session blocks from the history store.
func (m *Manager) RecentBlocks(limit int) ([]models.BlockRow, error) {
	return m.database.RecentBlocks(limit)
}

// RecentSamples returns the newest history samples.
func (m *Manager) RecentSamples(limit int) ([]models.UsageSample, error) {
	return m.database.RecentSamples(limit)
}

// SampleSeries returns bucketed history for the chart.
func (m *Manager) SampleSeries(rng models.TimeRange) ([]models.SeriesPoint, error) {
	return m.database.SampleSeries(rng, m.now())
}

// RunStats returns aggregate statistics for this run.
func (m *Manager) RunStats() (*models.RunStats, error) {
	return m.database.TotalStats()
}

// Database returns the history store for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// InitialState returns the latest report and cache statistics for TUI
// initialization.
func (m *Manager) InitialState() (*models.Report, cache.Stats) {
	return m.LastReport(), m.cache.Stats()
}

// Close stops the tick loop and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)
	m.cancel()

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := m.database.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
