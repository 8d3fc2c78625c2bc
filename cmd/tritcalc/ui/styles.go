// Package ui provides the visual styling for the tritcalc shell, with
// light and dark palettes.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light mode
	LightBackground = lipgloss.Color("#f4f5f6")
	LightForeground = lipgloss.Color("#1b2a41")
	LightPrimary    = lipgloss.Color("#1b2a41")
	LightAccent     = lipgloss.Color("#00897b") // teal
	LightMuted      = lipgloss.Color("#8a94a6")
	LightBorder     = lipgloss.Color("#dce0e5")

	// Dark mode
	DarkBackground = lipgloss.Color("#141d2b")
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#4db6ac")
	DarkAccent     = lipgloss.Color("#4db6ac")
	DarkMuted      = lipgloss.Color("#5c6b82")
	DarkBorder     = lipgloss.Color("#2a3850")

	// Semantic colors, shared by both modes
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		IsDark:     true,
	}
}

// DetectTheme picks dark mode from COLORFGBG or TRITCALC_DARK_MODE=1,
// light otherwise.
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; ANSI 0-6 and 8 are dark.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil && ((bg >= 0 && bg <= 6) || bg == 8) {
			return DarkTheme()
		}
	}
	if os.Getenv("TRITCALC_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	StatusBar lipgloss.Style
	Badge     lipgloss.Style
	Alert     lipgloss.Style

	Prompt lipgloss.Style
	Echo   lipgloss.Style
	Output lipgloss.Style
	Error  lipgloss.Style
	Muted  lipgloss.Style

	Divider lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		StatusBar: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Alert: lipgloss.NewStyle().
			Background(Destructive).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Echo: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Output: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true).
			PaddingLeft(2),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
