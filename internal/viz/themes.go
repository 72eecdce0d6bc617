package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/intervalo/internal/motion"
)

// Theme defines color scheme for the TUI
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
}

// Available themes, one per narrative path
var (
	ThemeLuz = Theme{
		Name:       "luz",
		Primary:    lipgloss.Color("#f9c55a"), // Gold
		Secondary:  lipgloss.Color("#ffe8b0"),
		Accent:     lipgloss.Color("#fff6dc"),
		Background: lipgloss.Color("#0c0905"),
		Text:       lipgloss.Color("#f5ecd9"),
		Muted:      lipgloss.Color("#7a6a4a"),
	}

	ThemeSombra = Theme{
		Name:       "sombra",
		Primary:    lipgloss.Color("#b1363c"), // Crimson
		Secondary:  lipgloss.Color("#6d2a3a"),
		Accent:     lipgloss.Color("#e0686d"),
		Background: lipgloss.Color("#050308"),
		Text:       lipgloss.Color("#d8c8cc"),
		Muted:      lipgloss.Color("#4a3a44"),
	}

	ThemeIntervalo = Theme{
		Name:       "intervalo",
		Primary:    lipgloss.Color("#f9c55a"),
		Secondary:  lipgloss.Color("#b1363c"),
		Accent:     lipgloss.Color("#ffffff"),
		Background: lipgloss.Color("#050308"),
		Text:       lipgloss.Color("#eeeeee"),
		Muted:      lipgloss.Color("#666677"),
	}

	// Default theme
	CurrentTheme = ThemeIntervalo

	Themes = []Theme{
		ThemeLuz,
		ThemeSombra,
		ThemeIntervalo,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeIntervalo
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// BandColor picks the theme colour for a motion band
func (t Theme) BandColor(b motion.Band) lipgloss.Color {
	switch b {
	case motion.Lento:
		return t.Secondary
	case motion.Medio:
		return t.Primary
	case motion.Rapido:
		return t.Accent
	}
	return t.Muted
}
