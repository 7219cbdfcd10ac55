// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/claude-quota-tui/internal/logger"
	"github.com/j-veylop/claude-quota-tui/internal/ui/styles"
)

// UsageBar renders the session consumption bar. The bar fills with the used
// share of the quota ceiling, so the gradient runs green into red.
type UsageBar struct {
	progress progress.Model
}

// NewUsageBar creates a usage bar with gradient colors.
func NewUsageBar() UsageBar {
	p := progress.New(
		progress.WithScaledGradient("#51cf66", "#ff6b6b"),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	return UsageBar{progress: p}
}

// Init initializes the progress bar model.
func (u UsageBar) Init() tea.Cmd {
	return nil
}

// Update handles progress bar animation frames.
func (u UsageBar) Update(msg tea.Msg) (UsageBar, tea.Cmd) {
	model, cmd := u.progress.Update(msg)
	u.progress = model.(progress.Model)
	return u, cmd
}

// SetPercent animates the bar toward the given consumed fraction in [0,1].
func (u *UsageBar) SetPercent(fraction float64) tea.Cmd {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return u.progress.SetPercent(fraction)
}

// SetWidth sets the bar width in cells.
func (u *UsageBar) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	u.progress.Width = width
}

// View renders the bar at its animated position.
func (u UsageBar) View() string {
	return u.progress.View()
}

// ViewAs renders the bar at a fixed fraction, bypassing animation.
func (u UsageBar) ViewAs(fraction float64) string {
	return u.progress.ViewAs(fraction)
}

// RenderTimeBarChars renders the bar characters for a countdown bar. The bar
// fills up as time runs out.
func RenderTimeBarChars(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#ffd93d", "#6c5ce7", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
