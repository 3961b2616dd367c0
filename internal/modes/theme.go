package modes

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/user/brainassist/internal/types"
)

// Theme is the resolved terminal styling for a mode.
type Theme struct {
	Accent lipgloss.Color
	Label  lipgloss.Style
	Border lipgloss.Style
	Prompt lipgloss.Style
}

// Tailwind 500 shades so terminal colors match the web palette names.
var palette = map[string]lipgloss.Color{
	"blue":    lipgloss.Color("#3b82f6"),
	"emerald": lipgloss.Color("#10b981"),
	"fuchsia": lipgloss.Color("#d946ef"),
	"indigo":  lipgloss.Color("#6366f1"),
	"violet":  lipgloss.Color("#8b5cf6"),
	"sky":     lipgloss.Color("#0ea5e9"),
	"cyan":    lipgloss.Color("#06b6d4"),
	"amber":   lipgloss.Color("#f59e0b"),
	"rose":    lipgloss.Color("#f43f5e"),
	"yellow":  lipgloss.Color("#eab308"),
}

var themes = buildThemes()

func buildThemes() map[types.ChatMode]Theme {
	out := make(map[types.ChatMode]Theme, len(registry))
	for mode, p := range registry {
		accent := palette[p.Color]
		out[mode] = Theme{
			Accent: accent,
			Label:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accent).Padding(0, 1),
			Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
			Prompt: lipgloss.NewStyle().Bold(true).Foreground(accent),
		}
	}
	return out
}

// ThemeFor returns the style table entry for mode. Like Resolve, an unknown
// mode panics.
func ThemeFor(mode types.ChatMode) Theme {
	t, ok := themes[mode]
	if !ok {
		panic("modes: no theme for chat mode " + string(mode))
	}
	return t
}
