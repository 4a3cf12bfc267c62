// Package tui provides the terminal day planner.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/dayplanner/internal/tui/theme"
)

const (
	paletteWidth = 28
	labelWidth   = 8
	minCellWidth = 20
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	theme *theme.Theme

	Title     lipgloss.Style
	Header    lipgloss.Style
	TodayMark lipgloss.Style
	Dragging  lipgloss.Style

	// Day grid
	Label      lipgloss.Style
	LabelNow   lipgloss.Style
	Free       lipgloss.Style
	FreeCursor lipgloss.Style
	DropTarget lipgloss.Style
	Blocked    lipgloss.Style

	// Palette
	Palette         lipgloss.Style
	PaletteTitle    lipgloss.Style
	PaletteItem     lipgloss.Style
	PaletteSelected lipgloss.Style

	// Confirmation modal
	Modal       lipgloss.Style
	ModalTitle  lipgloss.Style
	Field       lipgloss.Style
	FieldActive lipgloss.Style

	Muted  lipgloss.Style
	Error  lipgloss.Style
	Status lipgloss.Style
	Help   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t *theme.Theme) Styles {
	c := theme.Color
	return Styles{
		theme: t,

		Title:     lipgloss.NewStyle().Bold(true).Foreground(c(t.Accent)),
		Header:    lipgloss.NewStyle().Foreground(c(t.Fg)).Bold(true),
		TodayMark: lipgloss.NewStyle().Foreground(c(t.Current)),
		Dragging:  lipgloss.NewStyle().Foreground(c(t.Warning)).Bold(true),

		Label:      lipgloss.NewStyle().Foreground(c(t.FgMuted)).Width(labelWidth).Align(lipgloss.Right),
		LabelNow:   lipgloss.NewStyle().Foreground(c(t.Current)).Bold(true).Width(labelWidth).Align(lipgloss.Right),
		Free:       lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		FreeCursor: lipgloss.NewStyle().Foreground(c(t.Fg)).Background(c(t.BgSelection)),
		DropTarget: lipgloss.NewStyle().Foreground(c(t.TextOn(t.Current))).Background(c(t.Current)).Bold(true),
		Blocked:    lipgloss.NewStyle().Foreground(c(t.TextOn(t.Danger))).Background(c(t.Danger)),

		Palette: lipgloss.NewStyle().
			Width(paletteWidth).
			PaddingRight(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(c(t.BgSelection)),
		PaletteTitle:    lipgloss.NewStyle().Foreground(c(t.Accent)).Bold(true).MarginBottom(1),
		PaletteItem:     lipgloss.NewStyle().Foreground(c(t.Fg)),
		PaletteSelected: lipgloss.NewStyle().Foreground(c(t.Fg)).Background(c(t.BgSelection)).Bold(true),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Accent)).
			Background(c(t.BgHighlight)).
			Padding(1, 2),
		ModalTitle:  lipgloss.NewStyle().Foreground(c(t.Accent)).Bold(true),
		Field:       lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		FieldActive: lipgloss.NewStyle().Foreground(c(t.Accent)).Bold(true),

		Muted:  lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		Error:  lipgloss.NewStyle().Foreground(c(t.Danger)).Bold(true),
		Status: lipgloss.NewStyle().Foreground(c(t.Fg)),
		Help:   lipgloss.NewStyle().Foreground(c(t.FgMuted)),
	}
}

// Session returns the block style for a session of the given category color.
func (s Styles) Session(color string, past bool) lipgloss.Style {
	bg := s.theme.SessionBg(color)
	if past {
		bg = s.theme.PastSessionBg(color)
	}
	return lipgloss.NewStyle().
		Background(theme.Color(bg)).
		Foreground(theme.Color(s.theme.TextOn(bg)))
}

// Swatch returns a foreground style in the category color.
func (s Styles) Swatch(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.Color(color))
}
