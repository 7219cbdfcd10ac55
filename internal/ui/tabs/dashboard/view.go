package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/claude-quota-tui/internal/models"
	"github.com/j-veylop/claude-quota-tui/internal/ui/components"
	"github.com/j-veylop/claude-quota-tui/internal/ui/styles"
)

// sessionPeriod is the length of one Claude usage window, which is also the
// spacing of the reset schedule.
const sessionPeriod = 5 * time.Hour

// View renders the dashboard component.
func (m *Model) View() string {
	report := m.state.Report()
	if m.state.IsInitialLoading() || report == nil {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())

	if report.LastError != "" {
		sections = append(sections, m.renderDegradedBanner(report))
	}

	sections = append(sections, m.renderSessionCard(report))
	sections = append(sections, "")
	sections = append(sections, m.renderBurnCard(report))
	sections = append(sections, "")
	sections = append(sections, m.renderResetCard(report))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Claude Quota Monitor")
	subtitle := styles.HelpStyle.Render("Session usage, burn rate and depletion forecast")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderDegradedBanner(report *models.Report) string {
	cardWidth := max(m.width-6, 40)

	msg := report.LastError
	if maxLen := cardWidth - 14; len(msg) > maxLen && maxLen > 3 {
		msg = msg[:maxLen-3] + "..."
	}

	banner := fmt.Sprintf("%s %s",
		styles.WarningTextStyle.Render("⚠ degraded:"),
		styles.HelpStyle.Render(msg),
	)
	return lipgloss.JoinVertical(lipgloss.Left, banner, "")
}

// renderSessionCard renders the active session with its usage bar.
func (m *Model) renderSessionCard(report *models.Report) string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Current Session")))
	rows = append(rows, "")

	if !report.HasActiveSession() {
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No active session")))
		rows = append(rows, styles.InfoTextStyle.Render("  ╰─▶ Usage appears once Claude activity starts"))
		rows = append(rows, "")
		rows = append(rows, m.renderTierLine(report))
		rows = append(rows, m.renderFreshnessLine(report))

		return styles.CardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	rows = append(rows, m.renderSessionHeader(report))
	rows = append(rows, "")
	rows = append(rows, m.renderUsageLine(report))
	rows = append(rows, m.renderUnitsLine(report))
	rows = append(rows, "")
	rows = append(rows, m.renderTierLine(report))
	rows = append(rows, m.renderFreshnessLine(report))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderSessionHeader(report *models.Report) string {
	block := report.Active
	started := block.StartTime.Local().Format("15:04")
	duration := formatCountdown(block.Duration(report.GeneratedAt))

	return fmt.Sprintf("  %s %s %s",
		styles.SuccessTextStyle.Render("● Active"),
		lipgloss.NewStyle().Bold(true).Render("since "+started),
		styles.HelpStyle.Render("("+duration+")"),
	)
}

func (m *Model) renderUsageLine(report *models.Report) string {
	percent := report.UsagePercent()
	percentStr := styles.GetUsageStyle(percent).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Left,
		"    ",
		m.usageBar.View(),
		" ",
		percentStr,
	)
}

func (m *Model) renderUnitsLine(report *models.Report) string {
	used := formatUnits(report.UnitsUsed())
	ceiling := formatUnits(report.Tier.Ceiling)
	left := formatUnits(report.UnitsRemaining())

	return fmt.Sprintf("    %s %s",
		lipgloss.NewStyle().Foreground(styles.TextPrimary).Render(used+" / "+ceiling+" units"),
		styles.HelpStyle.Render("("+left+" left)"),
	)
}

func (m *Model) renderTierLine(report *models.Report) string {
	name := report.Tier.Name()
	tierStr := styles.GetTierStyle(name).Render(strings.ToUpper(name))

	suffix := ""
	if report.Tier.AutoDetected {
		suffix = styles.HelpStyle.Render(" · auto-detected")
	}

	return fmt.Sprintf("  %s %s%s",
		styles.HelpStyle.Render("Tier:"),
		tierStr,
		suffix,
	)
}

func (m *Model) renderFreshnessLine(report *models.Report) string {
	fr := string(report.Freshness)
	dot := styles.GetFreshnessStyle(fr).Render("●")

	detail := ""
	switch report.Freshness {
	case models.FreshnessLive:
		detail = fmt.Sprintf("fetched in %dms", report.FetchLatency.Milliseconds())
	case models.FreshnessCached:
		detail = "served from cache"
	case models.FreshnessStale:
		detail = "source unavailable"
	}

	return fmt.Sprintf("  %s %s %s",
		dot,
		lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(fr),
		styles.HelpStyle.Render(detail),
	)
}

// renderBurnCard renders the consumption velocity and depletion forecast.
func (m *Model) renderBurnCard(report *models.Report) string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Rate).Render("◆")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Burn Rate")))
	rows = append(rows, "")

	if report.BurnRate.IsZero() {
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No measurable consumption")))
	} else {
		rows = append(rows, m.renderRateLine(report))
		if len(m.trend) > 1 {
			sparkWidth := max(cardWidth-12, 20)
			spark := components.RenderSparkline(m.trend, sparkWidth)
			rows = append(rows, "")
			rows = append(rows, "    "+lipgloss.NewStyle().Foreground(styles.Rate).Render(spark))
			rows = append(rows, "    "+styles.HelpStyle.Render("units/min trend"))
		}
	}

	rows = append(rows, "")
	rows = append(rows, m.renderProjectionLine(report))

	return styles.ProjectionCardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderRateLine(report *models.Report) string {
	velocity := report.BurnRate.Velocity()
	rateStr := styles.GetVelocityStyle(string(velocity)).Render(
		fmt.Sprintf("%.1f units/min", report.BurnRate.UnitsPerMinute),
	)

	perHour := styles.HelpStyle.Render(fmt.Sprintf("(%s/hr)", formatUnits(int(report.BurnRate.PerHour()))))
	window := styles.HelpStyle.Render(fmt.Sprintf("over %.0fm", report.BurnRate.SampleWindowMinutes))

	return fmt.Sprintf("  %s %s %s %s", velocity.Indicator(), rateStr, perHour, window)
}

func (m *Model) renderProjectionLine(report *models.Report) string {
	switch {
	case report.DepletesBeforeReset():
		at := report.DepletionAt.Local().Format("15:04")
		in := formatCountdown(time.Until(*report.DepletionAt))
		return fmt.Sprintf("  %s %s",
			styles.ProjectionCriticalStyle.Render("▲ DEPLETES "+at),
			styles.ErrorTextStyle.Render("(in "+in+", before reset)"),
		)

	case report.DepletionAt != nil:
		at := report.DepletionAt.Local().Format("15:04")
		return fmt.Sprintf("  %s %s",
			styles.ProjectionSafeStyle.Render("● ON PACE"),
			styles.HelpStyle.Render("would deplete "+at+", after reset"),
		)

	default:
		return "  " + styles.HelpStyle.Render("No depletion projected")
	}
}

// renderResetCard renders the countdown to the next quota reset.
func (m *Model) renderResetCard(report *models.Report) string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Claude).Render("↻")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Next Reset")))
	rows = append(rows, "")

	remaining := time.Until(report.ResetAt)
	resetAt := report.ResetAt.Local().Format("Mon 15:04")

	rows = append(rows, fmt.Sprintf("  %s %s",
		lipgloss.NewStyle().Foreground(styles.TextPrimary).Render("Resets at "+resetAt),
		styles.HelpStyle.Render("(in "+formatCountdown(remaining)+")"),
	))

	elapsed := 1.0 - remaining.Seconds()/sessionPeriod.Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > 1 {
		elapsed = 1
	}

	barWidth := max(cardWidth-12, 20)
	rows = append(rows, "    "+components.RenderTimeBarChars(elapsed, barWidth))

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// formatCountdown renders a duration as hours and minutes, seconds only
// under a minute.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	h := int(d.Hours())
	mins := int(d.Minutes()) % 60

	if h == 0 && mins == 0 {
		return fmt.Sprintf("%ds", int(d.Seconds())%60)
	}
	if h == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %02dm", h, mins)
}

// formatUnits groups thousands with commas.
func formatUnits(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
