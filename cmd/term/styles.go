package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/portfolio/internal/domain/terminal"
)

// Palette holds the colors of one site theme.
type Palette struct {
	Foreground lipgloss.Color
	Accent     lipgloss.Color
	Heading    lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Link       lipgloss.Color
	Border     lipgloss.Color
}

var palettes = map[terminal.Theme]Palette{
	terminal.ThemeCmd: {
		Foreground: "#33ff33",
		Accent:     "#7fff7f",
		Heading:    "#b3ffb3",
		Muted:      "#1f9f1f",
		Success:    "#33ff33",
		Error:      "#ff5555",
		Link:       "#66ffcc",
		Border:     "#1f9f1f",
	},
	terminal.ThemeMagic: {
		Foreground: "#e0d0ff",
		Accent:     "#c792ea",
		Heading:    "#ff79c6",
		Muted:      "#8a7fb0",
		Success:    "#a6e3a1",
		Error:      "#ff6e6e",
		Link:       "#89ddff",
		Border:     "#6c4f9e",
	},
	terminal.ThemeAngler: {
		Foreground: "#cfe8ff",
		Accent:     "#4fc3f7",
		Heading:    "#81d4fa",
		Muted:      "#5f7f99",
		Success:    "#80cbc4",
		Error:      "#ef5350",
		Link:       "#b3e5fc",
		Border:     "#0277bd",
	},
	terminal.ThemeDefault: {
		Foreground: "#e5e5e5",
		Accent:     "#ffffff",
		Heading:    "#ffffff",
		Muted:      "#8a8a8a",
		Success:    "#8bc34a",
		Error:      "#f44336",
		Link:       "#64b5f6",
		Border:     "#555555",
	},
}

// Styles renders terminal output for one theme.
type Styles struct {
	Theme  terminal.Theme
	Prompt lipgloss.Style
	Input  lipgloss.Style
	Lines  map[terminal.Style]lipgloss.Style
	Frame  lipgloss.Style
	Status lipgloss.Style
}

// NewStyles builds the styles for t. Unknown themes fall back to cmd.
func NewStyles(t terminal.Theme) Styles {
	p, ok := palettes[t]
	if !ok {
		t, p = terminal.ThemeCmd, palettes[terminal.ThemeCmd]
	}
	base := lipgloss.NewStyle().Foreground(p.Foreground)
	return Styles{
		Theme:  t,
		Prompt: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Input:  base,
		Lines: map[terminal.Style]lipgloss.Style{
			terminal.StylePlain:   base,
			terminal.StyleHeading: lipgloss.NewStyle().Foreground(p.Heading).Bold(true),
			terminal.StyleAccent:  lipgloss.NewStyle().Foreground(p.Accent),
			terminal.StyleMuted:   lipgloss.NewStyle().Foreground(p.Muted),
			terminal.StyleSuccess: lipgloss.NewStyle().Foreground(p.Success),
			terminal.StyleError:   lipgloss.NewStyle().Foreground(p.Error),
			terminal.StyleLink:    lipgloss.NewStyle().Foreground(p.Link).Underline(true),
		},
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		Status: lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// Line renders one output line.
func (s Styles) Line(l terminal.Line) string {
	style, ok := s.Lines[l.Style]
	if !ok {
		style = s.Lines[terminal.StylePlain]
	}
	return style.Render(l.Text)
}
