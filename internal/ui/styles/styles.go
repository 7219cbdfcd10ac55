// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the monitor theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Accent colors
	Claude = lipgloss.Color("208") // Orange
	Rate   = lipgloss.Color("39")  // Blue

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// ActiveTabStyle styles the currently selected tab.
var ActiveTabStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("229")).
	Background(Primary).
	Padding(0, 2).
	MarginRight(1)

// InactiveTabStyle styles non-selected tabs.
var InactiveTabStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(BgLight).
	Padding(0, 2).
	MarginRight(1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// FocusedStyle is used for focused elements and selection markers.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HelpSeparatorStyle styles separators in help text.
var HelpSeparatorStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TableSelectedStyle styles selected table rows.
var TableSelectedStyle = lipgloss.NewStyle().
	Background(BgAccent).
	Foreground(TextPrimary).
	Bold(true)

// TierProStyle styles named subscription plans.
var TierProStyle = lipgloss.NewStyle().
	Foreground(Success).
	Bold(true)

// TierAutoStyle styles the auto-detected tier.
var TierAutoStyle = lipgloss.NewStyle().
	Foreground(Warning).
	Bold(true)

// TierUnknownStyle styles unrecognized tiers.
var TierUnknownStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// UsageLowStyle for low usage percentages (<70% of the ceiling).
var UsageLowStyle = lipgloss.NewStyle().
	Foreground(Success)

// UsageMediumStyle for elevated usage percentages (70-90%).
var UsageMediumStyle = lipgloss.NewStyle().
	Foreground(Warning)

// UsageHighStyle for usage near or at the ceiling (>90%).
var UsageHighStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// FreshnessLiveStyle marks data fetched from the source this tick.
var FreshnessLiveStyle = lipgloss.NewStyle().
	Foreground(Success)

// FreshnessCachedStyle marks data served from the cache within its TTL.
var FreshnessCachedStyle = lipgloss.NewStyle().
	Foreground(Info)

// FreshnessStaleStyle marks fallback data shown after a fetch failure.
var FreshnessStaleStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// VelocitySlowStyle for a burn rate in the slow bucket.
var VelocitySlowStyle = lipgloss.NewStyle().
	Foreground(Success)

// VelocityNormalStyle for a burn rate in the normal bucket.
var VelocityNormalStyle = lipgloss.NewStyle().
	Foreground(Info)

// VelocityFastStyle for a burn rate in the fast bucket.
var VelocityFastStyle = lipgloss.NewStyle().
	Foreground(Warning)

// VelocityVeryFastStyle for a burn rate in the very fast bucket.
var VelocityVeryFastStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

var ProjectionSafeStyle = lipgloss.NewStyle().
	Foreground(Success)

var ProjectionWarningStyle = lipgloss.NewStyle().
	Foreground(Warning).
	Bold(true)

var ProjectionCriticalStyle = lipgloss.NewStyle().
	Foreground(Error).
	Bold(true)

var ProjectionCardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Secondary).
	Padding(1, 2).
	MarginBottom(1)

// GetUsageStyle returns the style for a consumed-percentage value. High
// consumption is the danger direction.
func GetUsageStyle(percent float64) lipgloss.Style {
	switch {
	case percent > 90:
		return UsageHighStyle
	case percent > 70:
		return UsageMediumStyle
	default:
		return UsageLowStyle
	}
}

// GetTierStyle returns the style for a tier display name.
func GetTierStyle(tier string) lipgloss.Style {
	switch tier {
	case "pro", "max5", "max20":
		return TierProStyle
	default:
		if len(tier) >= 4 && tier[:4] == "auto" {
			return TierAutoStyle
		}
		return TierUnknownStyle
	}
}

// GetFreshnessStyle returns the style for a data-freshness label.
func GetFreshnessStyle(freshness string) lipgloss.Style {
	switch freshness {
	case "live":
		return FreshnessLiveStyle
	case "cached":
		return FreshnessCachedStyle
	default:
		return FreshnessStaleStyle
	}
}

// GetVelocityStyle returns the style for a burn-rate velocity bucket.
func GetVelocityStyle(velocity string) lipgloss.Style {
	switch velocity {
	case "slow":
		return VelocitySlowStyle
	case "normal":
		return VelocityNormalStyle
	case "fast":
		return VelocityFastStyle
	case "very fast":
		return VelocityVeryFastStyle
	default:
		return TierUnknownStyle
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
