// Package sessions provides the session block history tab.
package sessions

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/claude-quota-tui/internal/app"
	"github.com/j-veylop/claude-quota-tui/internal/models"
	"github.com/j-veylop/claude-quota-tui/internal/services"
	"github.com/j-veylop/claude-quota-tui/internal/ui/components"
	"github.com/j-veylop/claude-quota-tui/internal/ui/styles"
)

// blockHistoryLimit bounds how many blocks the table loads per refresh.
const blockHistoryLimit = 50

type blocksLoadedMsg struct {
	blocks []models.BlockRow
}

type blocksErrorMsg struct {
	err error
}

// keyMap defines the key bindings specific to the sessions tab.
type keyMap struct {
	Refresh key.Binding
}

// defaultKeyMap returns the default key bindings for the sessions tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// Model represents the sessions tab state.
type Model struct {
	services *services.Manager
	table    table.Model
	spinner  components.LoadingSpinner
	keys     keyMap
	blocks   []models.BlockRow
	width    int
	height   int
	loaded   bool
}

// New creates a new sessions model.
func New(svc *services.Manager) *Model {
	columns := []table.Column{
		{Title: "Started", Width: 14},
		{Title: "Ended", Width: 14},
		{Title: "Duration", Width: 10},
		{Title: "Units", Width: 8},
		{Title: "State", Width: 8},
		{Title: "Last seen", Width: 11},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		services: svc,
		table:    t,
		spinner:  components.NewSpinner("Loading session history..."),
		keys:     defaultKeyMap(),
	}
}

// Init initializes the sessions tab.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.loadBlocksCmd())
}

// Update handles messages for the sessions tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case blocksLoadedMsg:
		m.blocks = msg.blocks
		m.loaded = true
		m.updateTableData()

	case blocksErrorMsg:
		m.loaded = true
		err := msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("Failed to load session history: %v", err),
				Duration: app.LongNotificationDuration,
			}
		})

	case app.ReportMsg:
		// Only the active tab receives messages, so this reloads at most
		// once per refresh cycle while the tab is visible.
		cmds = append(cmds, m.loadBlocksCmd())

	case app.TabSwitchMsg:
		if msg.Tab == app.TabSessions {
			cmds = append(cmds, m.loadBlocksCmd())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// loadBlocksCmd fetches the recent session blocks from the history store.
func (m *Model) loadBlocksCmd() tea.Cmd {
	if m.services == nil {
		return nil
	}
	svc := m.services
	return func() tea.Msg {
		blocks, err := svc.RecentBlocks(blockHistoryLimit)
		if err != nil {
			return blocksErrorMsg{err: err}
		}
		return blocksLoadedMsg{blocks: blocks}
	}
}

// updateTableData rebuilds the table rows from the loaded blocks.
func (m *Model) updateTableData() {
	rows := make([]table.Row, 0, len(m.blocks))

	for _, block := range m.blocks {
		started := block.StartTime.Local().Format("Jan 2 15:04")

		ended := "-"
		if block.Ended && !block.EndTime.IsZero() {
			ended = block.EndTime.Local().Format("Jan 2 15:04")
		}

		rows = append(rows, table.Row{
			started,
			ended,
			formatBlockDuration(block),
			strconv.Itoa(block.TotalUnits),
			blockState(block),
			block.LastSeen.Local().Format("15:04:05"),
		})
	}

	m.table.SetRows(rows)
}

// blockState classifies a block row for the table.
func blockState(block models.BlockRow) string {
	switch {
	case block.IsGap:
		return "GAP"
	case block.IsActive:
		return "ACTIVE"
	case block.Ended:
		return "ENDED"
	default:
		return "OPEN"
	}
}

// formatBlockDuration renders how long a block ran, measured to the last
// sighting for blocks that never reported an end.
func formatBlockDuration(block models.BlockRow) string {
	end := block.EndTime
	if !block.Ended || end.IsZero() {
		end = block.LastSeen
	}

	d := end.Sub(block.StartTime)
	if d < 0 {
		d = 0
	}

	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", h, mins)
}

// SetSize sets the available size for the sessions tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-16, 5))

	startWidth := 14
	if width > 100 {
		startWidth = 18
	}

	columns := []table.Column{
		{Title: "Started", Width: startWidth},
		{Title: "Ended", Width: startWidth},
		{Title: "Duration", Width: 10},
		{Title: "Units", Width: 8},
		{Title: "State", Width: 8},
		{Title: "Last seen", Width: 11},
	}
	m.table.SetColumns(columns)
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
