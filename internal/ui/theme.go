package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors for the console UI.
type Theme struct {
	Name string

	Background string
	Surface    string

	SelectionBg   string
	SelectionText string

	Text   string
	Muted  string
	Faint  string
	Accent string

	Success string
	Warning string
	Danger  string
	Info    string

	// Per-level foreground colors for log lines.
	LevelColors map[string]string

	// Match highlight for active search terms.
	MatchBg   string
	MatchText string
}

// Styles returns pre-built lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		InfoText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Match: lipgloss.NewStyle().
			Background(lipgloss.Color(t.MatchBg)).
			Foreground(lipgloss.Color(t.MatchText)).
			Bold(true),

		levelColors: t.LevelColors,
	}
}

// Styles contains pre-built lipgloss styles for the theme.
type Styles struct {
	Text       lipgloss.Style
	MutedText  lipgloss.Style
	FaintText  lipgloss.Style
	AccentText lipgloss.Style

	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Match    lipgloss.Style

	levelColors map[string]string
}

// LevelStyle returns the foreground style for a log level name.
func (s Styles) LevelStyle(level string) lipgloss.Style {
	color := s.levelColors[level]
	if color == "" {
		color = "#6272A4"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var themes = map[string]Theme{
	"Midnight": midnightTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Midnight", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return midnightTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func midnightTheme() Theme {
	// Dracula palette: https://draculatheme.com/spec
	return Theme{
		Name: "Midnight",

		Background: "#191A21",
		Surface:    "#282A36",

		SelectionBg:   "#44475A",
		SelectionText: "#F8F8F2",

		Text:   "#F8F8F2",
		Muted:  "#6272A4",
		Faint:  "#44475A",
		Accent: "#BD93F9",

		Success: "#50FA7B",
		Warning: "#FFB86C",
		Danger:  "#FF5555",
		Info:    "#8BE9FD",

		LevelColors: map[string]string{
			"TRACE": "#44475A",
			"DEBUG": "#6272A4",
			"INFO":  "#8BE9FD",
			"WARN":  "#FFB86C",
			"ERROR": "#FF5555",
		},

		MatchBg:   "#FFB86C",
		MatchText: "#191A21",
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617",
		Surface:    "#0f172a",

		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",

		Text:   "#f1f5f9",
		Muted:  "#94a3b8",
		Faint:  "#64748b",
		Accent: "#38bdf8",

		Success: "#22c55e",
		Warning: "#f59e0b",
		Danger:  "#ef4444",
		Info:    "#06b6d4",

		LevelColors: map[string]string{
			"TRACE": "#64748b",
			"DEBUG": "#94a3b8",
			"INFO":  "#38bdf8",
			"WARN":  "#f59e0b",
			"ERROR": "#ef4444",
		},

		MatchBg:   "#f59e0b",
		MatchText: "#020617",
	}
}
