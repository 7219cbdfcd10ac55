// Package dashboard provides the live session view for the quota monitor.
package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/claude-quota-tui/internal/app"
	"github.com/j-veylop/claude-quota-tui/internal/services"
	"github.com/j-veylop/claude-quota-tui/internal/ui/components"
)

// trendSampleCount bounds the burn-rate sparkline to the last half hour of
// samples at the default refresh interval.
const trendSampleCount = 30

type trendLoadedMsg struct {
	values []float64
}

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	Refresh key.Binding
}

// defaultKeyMap returns the default key bindings for the dashboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	usageBar components.UsageBar
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	trend    []float64
	width    int
	height   int
}

// New creates a new dashboard model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		services: svc,
		usageBar: components.NewUsageBar(),
		spinner:  components.NewSpinner("Waiting for usage data..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.syncCmds())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.ReportMsg:
		cmds = append(cmds, m.applyReport(msg))

	case app.TabSwitchMsg:
		if msg.Tab == app.TabDashboard {
			cmds = append(cmds, m.syncCmds())
		}

	case trendLoadedMsg:
		m.trend = msg.values

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.usageBar, cmd = m.usageBar.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applyReport animates the usage bar toward the new fraction and refreshes
// the burn-rate trend behind it.
func (m *Model) applyReport(msg app.ReportMsg) tea.Cmd {
	fraction := 0.0
	if msg.Report != nil && msg.Report.UsageFraction != nil {
		fraction = *msg.Report.UsageFraction
	}
	return tea.Batch(m.usageBar.SetPercent(fraction), m.loadTrendCmd())
}

// syncCmds realigns the bar with the shared state, used when the tab becomes
// visible after being inactive.
func (m *Model) syncCmds() tea.Cmd {
	var cmds []tea.Cmd
	if report := m.state.Report(); report != nil {
		fraction := 0.0
		if report.UsageFraction != nil {
			fraction = *report.UsageFraction
		}
		cmds = append(cmds, m.usageBar.SetPercent(fraction))
	}
	cmds = append(cmds, m.loadTrendCmd())
	return tea.Batch(cmds...)
}

// loadTrendCmd fetches recent burn-rate samples for the sparkline,
// reordered oldest to newest.
func (m *Model) loadTrendCmd() tea.Cmd {
	if m.services == nil {
		return nil
	}
	svc := m.services
	return func() tea.Msg {
		samples, err := svc.RecentSamples(trendSampleCount)
		if err != nil || len(samples) == 0 {
			return trendLoadedMsg{}
		}
		values := make([]float64, len(samples))
		for i, s := range samples {
			values[len(samples)-1-i] = s.UnitsPerMinute
		}
		return trendLoadedMsg{values: values}
	}
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.usageBar.SetWidth(max(width-30, 20))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Refresh},
	}
}
