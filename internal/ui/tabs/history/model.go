// Package history provides the usage history tab with bucketed charts.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/claude-quota-tui/internal/app"
	"github.com/j-veylop/claude-quota-tui/internal/models"
	"github.com/j-veylop/claude-quota-tui/internal/services"
)

// recentSampleCount is how many raw samples the listing below the chart shows.
const recentSampleCount = 10

// metric selects which series value the chart plots.
type metric int

const (
	metricUnits metric = iota
	metricRate
)

// String returns the display name for a metric.
func (m metric) String() string {
	switch m {
	case metricUnits:
		return "units"
	case metricRate:
		return "units/min"
	default:
		return "unknown"
	}
}

// next cycles to the other metric.
func (m metric) next() metric {
	return (m + 1) % 2
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange  key.Binding
	ToggleMetric key.Binding
	Refresh      key.Binding
	Up           key.Binding
	Down         key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		ToggleMetric: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle metric"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// seriesLoadedMsg is sent when history data is loaded.
type seriesLoadedMsg struct {
	points  []models.SeriesPoint
	samples []models.UsageSample
}

// historyErrorMsg is sent when there's an error loading history.
type historyErrorMsg struct {
	err string
}

// Model represents the history tab state.
type Model struct {
	services *services.Manager
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	// Current view state
	timeRange   models.TimeRange
	metric      metric
	points      []models.SeriesPoint
	samples     []models.UsageSample
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new history model.
func New(svc *services.Manager) *Model {
	return &Model{
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRange1Hour,
		metric:    metricUnits,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadHistoryCmd()
}

// loadHistoryCmd creates a command to load bucketed series and raw samples.
func (m *Model) loadHistoryCmd() tea.Cmd {
	svc := m.services
	rng := m.timeRange
	return func() tea.Msg {
		if svc == nil {
			return historyErrorMsg{err: "services not initialized"}
		}

		points, err := svc.SampleSeries(rng)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}

		samples, err := svc.RecentSamples(recentSampleCount)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}

		return seriesLoadedMsg{points: points, samples: samples}
	}
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case seriesLoadedMsg:
		m.points = msg.points
		m.samples = msg.samples
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case historyErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("History error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	case app.ReportMsg:
		if !m.loading {
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory && !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadHistoryCmd())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	case key.Matches(msg, m.keys.ToggleMetric):
		m.metric = m.metric.next()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		cmds = append(cmds, m.loadHistoryCmd())

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.ToggleMetric,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.ToggleMetric, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
