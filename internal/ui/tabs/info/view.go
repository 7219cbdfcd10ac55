package info

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/claude-quota-tui/internal/models"
	"github.com/j-veylop/claude-quota-tui/internal/services/resetsched"
	"github.com/j-veylop/claude-quota-tui/internal/ui/styles"
	"github.com/j-veylop/claude-quota-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections,
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderCacheCard(),
		m.renderRunStatsCard(),
		m.renderAboutCard(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, cache behavior and run statistics")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	w := m.width - 6
	if w < 50 {
		w = 50
	}
	if w > 80 {
		w = 80
	}
	return w
}

// renderConfigCard renders the effective configuration.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		cfg := m.config
		rows = append(rows, m.renderRow("Plan", describePlan(cfg.Plan)))
		rows = append(rows, m.renderRow("Timezone", cfg.Timezone))
		rows = append(rows, m.renderRow("Reset Schedule", describeResetSchedule(cfg.HasCustomResetHour(), cfg.ResetHour)))
		rows = append(rows, m.renderRow("Refresh Interval", cfg.RefreshInterval.String()))
		rows = append(rows, m.renderRow("Source Timeout", cfg.SourceTimeout.String()))
		rows = append(rows, m.renderRow("Cache", fmt.Sprintf("%d entries, %s base TTL", cfg.CacheCapacity, cfg.CacheTTL)))
		rows = append(rows, m.renderRow("Data Dirs", describeDataDirs(cfg.DataDirs)))
		rows = append(rows, m.renderRow("Log Level", cfg.LogLevel))
		if cfg.LogFile != "" {
			rows = append(rows, m.renderRow("Log File", cfg.LogFile))
		}
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderCacheCard renders live statistics from the report cache.
func (m *Model) renderCacheCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Report Cache"))
	rows = append(rows, "")

	stats := m.state.CacheStats()
	if stats == nil {
		rows = append(rows, styles.HelpStyle.Render("No cache activity recorded yet"))
	} else {
		rows = append(rows, m.renderRow("Hits", fmt.Sprintf("%d", stats.Hits)))
		rows = append(rows, m.renderRow("Misses", fmt.Sprintf("%d", stats.Misses)))
		rows = append(rows, m.renderRow("Hit Rate", fmt.Sprintf("%.0f%%", stats.HitRate*100)))
		rows = append(rows, m.renderRow("Entries", fmt.Sprintf("%d / %d", stats.Size, stats.Capacity)))
		rows = append(rows, m.renderRow("Effective TTL", stats.EffectiveTTL.String()))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderRunStatsCard renders lifetime statistics from the history store.
func (m *Model) renderRunStatsCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Recorded Usage"))
	rows = append(rows, "")

	if m.runStats == nil || !m.runStats.HasData() {
		rows = append(rows, styles.HelpStyle.Render("No samples recorded yet"))
	} else {
		s := m.runStats
		rows = append(rows, m.renderRow("Samples", fmt.Sprintf("%d", s.Samples)))
		rows = append(rows, m.renderRow("Degraded Ticks", fmt.Sprintf("%d", s.DegradedTicks)))
		rows = append(rows, m.renderRow("Peak Units", fmt.Sprintf("%d", s.PeakUnits)))
		rows = append(rows, m.renderRow("Peak Rate", fmt.Sprintf("%.1f units/min", s.PeakRate)))
		rows = append(rows, m.renderRow("Avg Rate", fmt.Sprintf("%.1f units/min", s.AvgRate)))
		rows = append(rows, m.renderRow("Window", fmt.Sprintf("%s → %s",
			s.FirstSample.Local().Format("Jan 2 15:04"),
			s.LastSample.Local().Format("Jan 2 15:04"),
		)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAboutCard renders the version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About claude-quota-tui"))
	rows = append(rows, "")

	rows = append(rows, m.renderRow("Version", version.GetVersion()))
	rows = append(rows, m.renderRow("Commit", version.GetCommit()))
	rows = append(rows, m.renderRow("Built", version.GetDate()))
	rows = append(rows, m.renderRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderRow renders a label-value row.
func (m *Model) renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func describePlan(plan models.Plan) string {
	if plan == models.PlanAuto {
		return "auto (ceiling detected from history)"
	}
	return fmt.Sprintf("%s (%d units per block)", plan, plan.Ceiling())
}

func describeResetSchedule(custom bool, hour int) string {
	if custom {
		return fmt.Sprintf("daily at %02d:00", hour)
	}
	parts := make([]string, len(resetsched.DefaultScheduleHours))
	for i, h := range resetsched.DefaultScheduleHours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}

func describeDataDirs(dirs []string) string {
	switch len(dirs) {
	case 0:
		return "none found"
	case 1:
		return dirs[0]
	default:
		return fmt.Sprintf("%s (+%d more)", dirs[0], len(dirs)-1)
	}
}
