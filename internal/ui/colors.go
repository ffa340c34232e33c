package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic colors for status indication. ANSI codes keep them readable on
// both light and dark terminals.
const (
	ColorSuccess lipgloss.Color = "2"
	ColorError   lipgloss.Color = "1"
	ColorWarning lipgloss.Color = "3"
	ColorInfo    lipgloss.Color = "6"
)

// Text colors.
const (
	ColorPrimary lipgloss.Color = "7"
	ColorMuted   lipgloss.Color = "8"
)

// SpinnerColors are cycled by the spinner animation.
var SpinnerColors = []lipgloss.Color{"5", "4", "6", "2"}

// Color modes accepted by SetColorMode.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// SetColorMode picks the lipgloss color profile. "auto" keeps what termenv
// detects for stdout, which is already plain when stdout is piped.
func SetColorMode(mode string) {
	switch mode {
	case ColorNever:
		DisableColors()
	case ColorAlways:
		if lipgloss.ColorProfile() == termenv.Ascii {
			lipgloss.SetColorProfile(termenv.ANSI256)
		}
	}
}

// DisableColors switches all styles to monochrome output.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// SuccessStyle styles positive outcomes.
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

// ErrorStyle styles failures.
func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

// WarningStyle styles degraded or skipped items.
func WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorWarning)
}

// MutedStyle styles secondary text.
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// TitleStyle styles section titles.
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorInfo).Bold(true)
}
