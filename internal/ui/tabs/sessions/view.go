package sessions

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/claude-quota-tui/internal/ui/components"
	"github.com/j-veylop/claude-quota-tui/internal/ui/styles"
)

// chartBlockCount is how many recent blocks the footer chart compares.
const chartBlockCount = 8

// View renders the sessions tab.
func (m *Model) View() string {
	if !m.loaded {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())

	if len(m.blocks) == 0 {
		sections = append(sections, m.renderEmptyState())
	} else {
		sections = append(sections, m.renderTable())
		sections = append(sections, "")
		sections = append(sections, m.renderUnitsChart())
	}

	sections = append(sections, m.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the sessions tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Session Blocks")

	active := 0
	for _, block := range m.blocks {
		if block.IsActive {
			active++
		}
	}

	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d blocks recorded, %d active", len(m.blocks), active))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderTable renders the block history table.
func (m *Model) renderTable() string {
	cardWidth := m.width - 6
	if cardWidth < 60 {
		cardWidth = 60
	}

	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

// renderEmptyState renders the empty state when no blocks were recorded.
func (m *Model) renderEmptyState() string {
	cardWidth := m.width - 6
	if cardWidth < 40 {
		cardWidth = 40
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Session Blocks Yet"),
		"",
		styles.HelpStyle.Render("Blocks appear here once usage data has been observed."),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(content)
}

// renderUnitsChart renders a bar chart comparing units across recent blocks.
func (m *Model) renderUnitsChart() string {
	cardWidth := m.width - 6
	if cardWidth < 60 {
		cardWidth = 60
	}

	values := make([]float64, 0, chartBlockCount)
	labels := make([]string, 0, chartBlockCount)

	// Blocks arrive newest first; chart them oldest to newest, skipping gaps.
	count := 0
	for _, block := range m.blocks {
		if block.IsGap {
			continue
		}
		values = append([]float64{float64(block.TotalUnits)}, values...)
		labels = append([]string{block.StartTime.Local().Format("15:04")}, labels...)
		count++
		if count >= chartBlockCount {
			break
		}
	}

	var rows []string
	titleIcon := lipgloss.NewStyle().Foreground(styles.Rate).Render("◆")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Units per Block")))
	rows = append(rows, "")
	rows = append(rows, components.RenderBarChart(values, labels, cardWidth-8))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderFooter renders the footer with keyboard shortcuts.
func (m *Model) renderFooter() string {
	shortcuts := []string{
		styles.HelpKeyStyle.Render("j/k") + " move",
		styles.HelpKeyStyle.Render("r") + " refresh",
	}

	footer := ""
	for i, s := range shortcuts {
		if i > 0 {
			footer += styles.HelpSeparatorStyle.Render(" | ")
		}
		footer += s
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(footer)
}
