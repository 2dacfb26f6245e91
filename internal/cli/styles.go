package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("12")
	colorSuccess = lipgloss.Color("10")
	colorWarning = lipgloss.Color("11")
	colorError   = lipgloss.Color("9")
	colorMuted   = lipgloss.Color("8")
	colorWhite   = lipgloss.Color("15")
)

// Badge styles for status indicators
var (
	badgeApplied = lipgloss.NewStyle().
			Background(colorSuccess).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1).
			Bold(true)

	badgePending = lipgloss.NewStyle().
			Background(colorWarning).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1).
			Bold(true)

	badgeFailed = lipgloss.NewStyle().
			Background(colorError).
			Foreground(colorWhite).
			Padding(0, 1).
			Bold(true)

	badgeInfo = lipgloss.NewStyle().
			Background(colorPrimary).
			Foreground(colorWhite).
			Padding(0, 1).
			Bold(true)
)

// RenderBadge renders a styled badge, falling back to [TEXT] without colors.
func RenderBadge(text string, style lipgloss.Style) string {
	if !EnableColors() {
		return "[" + text + "]"
	}
	return style.Render(text)
}

// RenderAppliedBadge renders an "applied" status badge.
func RenderAppliedBadge() string {
	return RenderBadge("APPLIED", badgeApplied)
}

// RenderPendingBadge renders a "pending" status badge.
func RenderPendingBadge() string {
	return RenderBadge("PENDING", badgePending)
}

// RenderFailedBadge renders a "failed" badge.
func RenderFailedBadge() string {
	return RenderBadge("FAILED", badgeFailed)
}

// RenderDriftedBadge marks an applied migration whose checksum no
// longer matches the local rendering.
func RenderDriftedBadge() string {
	return RenderBadge("DRIFTED", badgeFailed)
}

// RenderInfoBadge renders an informational badge.
func RenderInfoBadge(text string) string {
	return RenderBadge(text, badgeInfo)
}

// Muted renders muted/dim text.
func Muted(s string) string {
	if !EnableColors() {
		return s
	}
	return lipgloss.NewStyle().Foreground(colorMuted).Render(s)
}

// Bold renders bold text.
func Bold(s string) string {
	if !EnableColors() {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Render(s)
}

// Green renders green text.
func Green(s string) string {
	if !EnableColors() {
		return s
	}
	return lipgloss.NewStyle().Foreground(colorSuccess).Render(s)
}

// Yellow renders yellow text.
func Yellow(s string) string {
	if !EnableColors() {
		return s
	}
	return lipgloss.NewStyle().Foreground(colorWarning).Render(s)
}

// Red renders red text.
func Red(s string) string {
	if !EnableColors() {
		return s
	}
	return lipgloss.NewStyle().Foreground(colorError).Render(s)
}

// RenderSubtitle renders a section heading.
func RenderSubtitle(text string) string {
	if !EnableColors() {
		return "── " + text + " ──"
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(styleHighlight.GetForeground()).
		Render(text)
}

// Rule renders a horizontal divider of the given width.
func Rule(width int) string {
	if width <= 0 {
		width = 40
	}
	return Dim(strings.Repeat("─", width))
}
