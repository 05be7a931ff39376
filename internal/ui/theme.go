package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bamsammich/reflink-diff/internal/config"
)

// Catppuccin Mocha defaults.
const (
	defaultCopyColor   = "#89b4fa"
	defaultAddColor    = "#a6e3a1"
	defaultDeleteColor = "#f38ba8"
	defaultArrowColor  = "#5a6278"
)

// Theme styles the prefixes and arrows of output lines. A theme without
// color renders text untouched.
type Theme struct {
	copy   lipgloss.Style
	add    lipgloss.Style
	delete lipgloss.Style
	arrow  lipgloss.Style
	color  bool
}

// NewTheme builds a theme from config overrides. With color false every
// style is a no-op, which is what piped output gets.
func NewTheme(cfg config.ThemeConfig, color bool) Theme {
	return Theme{
		copy:   styleFor(cfg.Copy, defaultCopyColor).Bold(true),
		add:    styleFor(cfg.Add, defaultAddColor).Bold(true),
		delete: styleFor(cfg.Delete, defaultDeleteColor).Bold(true),
		arrow:  styleFor(cfg.Arrow, defaultArrowColor),
		color:  color,
	}
}

func styleFor(override *string, fallback string) lipgloss.Style {
	c := fallback
	if override != nil && *override != "" {
		c = *override
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

func (t Theme) paint(s lipgloss.Style, text string) string {
	if !t.color {
		return text
	}
	return s.Render(text)
}

// ArrowLine renders "<src> -> <dst>".
func (t Theme) ArrowLine(src, dst string) string {
	return src + " " + t.paint(t.arrow, "->") + " " + dst
}
