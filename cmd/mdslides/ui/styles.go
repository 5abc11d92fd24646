// Package ui renders terminal output for the mdslides CLI: run progress,
// pattern tables and history listings.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mdslides/internal/types"
)

// Palette shared by both themes.
var (
	ColorError   = lipgloss.Color("#e53935")
	ColorOK      = lipgloss.Color("#8BC34A")
	ColorWarning = lipgloss.Color("#FFC107")
	ColorInfo    = lipgloss.Color("#2196F3")
)

// Theme is the set of colors that differ between light and dark terminals.
type Theme struct {
	Text   lipgloss.Color
	Accent lipgloss.Color
	Dim    lipgloss.Color
	Rule   lipgloss.Color
	Dark   bool
}

var (
	lightTheme = Theme{Text: "#1b2a41", Accent: "#3f88c5", Dim: "#8a94a6", Rule: "#dce0e5"}
	darkTheme  = Theme{Text: "#f2f2f2", Accent: "#7fb7e6", Dim: "#6b7a90", Rule: "#2a3850", Dark: true}
)

// DetectTheme picks the dark theme when COLORFGBG reports a dark background
// or MDSLIDES_DARK_MODE=1.
func DetectTheme() Theme {
	if os.Getenv("MDSLIDES_DARK_MODE") == "1" {
		return darkTheme
	}
	if _, bg, ok := strings.Cut(os.Getenv("COLORFGBG"), ";"); ok {
		if idx, err := strconv.Atoi(bg); err == nil && (idx <= 6 || idx == 8) && idx >= 0 {
			return darkTheme
		}
	}
	return lightTheme
}

// Styles are the rendered styles for one theme.
type Styles struct {
	Theme Theme

	Header lipgloss.Style
	Title  lipgloss.Style
	Muted  lipgloss.Style
	Bold   lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Divider lipgloss.Style
}

// NewStyles builds styles for theme.
func NewStyles(theme Theme) Styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return Styles{
		Theme:   theme,
		Header:  lipgloss.NewStyle().Background(theme.Accent).Foreground(lipgloss.Color("#ffffff")).Bold(true).Padding(0, 2),
		Title:   fg(theme.Accent).Bold(true),
		Muted:   fg(theme.Dim),
		Bold:    fg(theme.Text).Bold(true),
		Success: fg(ColorOK).Bold(true),
		Error:   fg(ColorError).Bold(true),
		Warning: fg(ColorWarning).Bold(true),
		Info:    fg(ColorInfo),
		Divider: fg(theme.Rule),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal rule.
func (s Styles) RenderDivider(width int) string {
	return s.Divider.Render(strings.Repeat("─", width))
}

// StageLine renders one stage with an icon for its state.
func (s Styles) StageLine(stage types.Stage, state types.StageState) string {
	label := stage.String()
	switch state {
	case types.StageCompleted:
		return s.Success.Render("✓ " + label)
	case types.StageRunning:
		return s.Info.Render("▶ " + label)
	case types.StageFailed:
		return s.Error.Render("✗ " + label)
	case types.StageSkipped:
		return s.Muted.Render("- " + label)
	default:
		return s.Muted.Render("○ " + label)
	}
}

// Score renders a 0-100 quality score colored by band.
func (s Styles) Score(score int) string {
	text := strconv.Itoa(score) + "/100"
	switch {
	case score >= 80:
		return s.Success.Render(text)
	case score >= 50:
		return s.Warning.Render(text)
	default:
		return s.Error.Render(text)
	}
}
