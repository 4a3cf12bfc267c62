// Package theme provides color themes for the TUI.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the base colors of a TUI theme.
type Theme struct {
	Name        string
	Bg          string // Base background
	BgHighlight string // Palette and modal panels
	BgSelection string // Cursor, selection
	Fg          string // Primary foreground
	FgMuted     string // Free slots, secondary text
	Accent      string // Title, borders
	Current     string // The slot holding now
	Warning     string // Drag in progress
	Danger      string // Errors
}

// Catppuccin flavors.
var themes = map[string]Theme{
	"mocha": {
		Name: "mocha", Bg: "#1e1e2e", BgHighlight: "#313244", BgSelection: "#45475a",
		Fg: "#cdd6f4", FgMuted: "#6c7086", Accent: "#cba6f7",
		Current: "#a6e3a1", Warning: "#fab387", Danger: "#f38ba8",
	},
	"macchiato": {
		Name: "macchiato", Bg: "#24273a", BgHighlight: "#363a4f", BgSelection: "#494d64",
		Fg: "#cad3f5", FgMuted: "#6e738d", Accent: "#c6a0f6",
		Current: "#a6da95", Warning: "#f5a97f", Danger: "#ed8796",
	},
	"frappe": {
		Name: "frappe", Bg: "#303446", BgHighlight: "#414559", BgSelection: "#51576d",
		Fg: "#c6d0f5", FgMuted: "#737994", Accent: "#ca9ee6",
		Current: "#a6d189", Warning: "#ef9f76", Danger: "#e78284",
	},
	"latte": {
		Name: "latte", Bg: "#eff1f5", BgHighlight: "#ccd0da", BgSelection: "#bcc0cc",
		Fg: "#4c4f69", FgMuted: "#9ca0b0", Accent: "#8839ef",
		Current: "#40a02b", Warning: "#fe640b", Danger: "#d20f39",
	},
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Load returns the named theme, falling back to mocha for unknown names.
func Load(name string) *Theme {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		t = themes["mocha"]
	}
	return &t
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	_, ok := themes[strings.ToLower(name)]
	return ok
}

// IsLight reports whether the theme has a light background.
func (t *Theme) IsLight() bool {
	return relativeLuminance(t.Bg) > 0.55
}
