package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/claude-quota-tui/internal/models"
	"github.com/j-veylop/claude-quota-tui/internal/ui/components"
	"github.com/j-veylop/claude-quota-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if len(m.points) == 0 && len(m.samples) == 0 {
		return m.renderEmpty()
	}

	var sections []string

	sections = append(sections,
		m.renderHeader(),
		m.renderSeriesChart(),
		m.renderRecentSamples(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading usage history..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Usage History"),
		"",
		styles.HelpStyle.Render("No samples recorded yet."),
		styles.HelpStyle.Render("Data appears here as refresh cycles are recorded."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Usage History")

	selectorStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := selectorStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))
	metricIndicator := selectorStyle.Render(fmt.Sprintf("[m] %s", m.metric.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator, " ", metricIndicator)

	var subtitle string
	if len(m.points) > 0 {
		first := m.points[0].Bucket
		last := m.points[len(m.points)-1].Bucket
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("%d buckets, %s → %s",
			len(m.points),
			first.Local().Format("15:04"),
			last.Local().Format("15:04"),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderSeriesChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Consumption")), "")

	if len(m.points) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No bucketed data in the selected range"))
	} else {
		values := make([]float64, len(m.points))
		for i, p := range m.points {
			switch m.metric {
			case metricRate:
				values[i] = p.AvgRate
			default:
				values[i] = p.AvgUnits
			}
		}

		chartWidth := max(cardWidth-12, 30)
		chartHeight := 8

		caption := fmt.Sprintf("%s per %ds bucket (%s)",
			m.metric.String(), m.timeRange.BucketSeconds(), m.timeRange.String())
		chart := components.RenderLineChart(values, chartWidth, chartHeight, caption)

		for _, line := range strings.Split(chart, "\n") {
			rows = append(rows, "  "+line)
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderRecentSamples() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("🕐")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Recent Samples")), "")

	if len(m.samples) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No samples recorded"))
	} else {
		for _, sample := range m.samples {
			rows = append(rows, m.renderSampleLine(sample))
		}
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderSampleLine(sample models.UsageSample) string {
	ts := sample.Timestamp.Local().Format("15:04:05")

	units := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(12).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%d units", sample.TotalUnits))

	rate := styles.HelpStyle.
		Width(12).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f/min", sample.UnitsPerMinute))

	freshness := styles.GetFreshnessStyle(sample.Freshness).Render(sample.Freshness)

	return fmt.Sprintf("  %s %s %s  %s",
		styles.HelpStyle.Render(ts),
		units,
		rate,
		freshness,
	)
}
