package theme

import (
	"math"
	"strconv"
)

// SessionBg derives a session block background from its category color so
// text stays readable on the theme.
func (t *Theme) SessionBg(category string) string {
	if !validHex(category) {
		return t.BgSelection
	}
	if t.IsLight() {
		return blendColors(category, t.Bg, 0.55)
	}
	return darkenColor(category)
}

// PastSessionBg is SessionBg muted further, for days before today.
func (t *Theme) PastSessionBg(category string) string {
	if !validHex(category) {
		return t.BgHighlight
	}
	if t.IsLight() {
		return blendColors(category, t.Bg, 0.8)
	}
	return muteColor(category)
}

// TextOn picks the theme foreground or background, whichever contrasts
// more with bg.
func (t *Theme) TextOn(bg string) string {
	return chooseTextColor(bg, t.Fg, t.Bg)
}

func validHex(hex string) bool {
	if len(hex) != 7 || hex[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(hex[1:], 16, 32)
	return err == nil
}

func parseRGB(hex string) (r, g, b int) {
	v, _ := strconv.ParseUint(hex[1:], 16, 32)
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

// formatHexColor formats RGB values as a hex color string.
func formatHexColor(r, g, b int) string {
	const hex = "0123456789abcdef"
	result := make([]byte, 7)
	result[0] = '#'
	result[1] = hex[r>>4]
	result[2] = hex[r&0xf]
	result[3] = hex[g>>4]
	result[4] = hex[g&0xf]
	result[5] = hex[b>>4]
	result[6] = hex[b&0xf]
	return string(result)
}

// scaleColor multiplies each channel by factor with a minimum floor so
// blocks stay visible on dark themes.
func scaleColor(hex string, factor float64, floor int) string {
	r, g, b := parseRGB(hex)
	scale := func(c int) int {
		return max(int(float64(c)*factor), floor)
	}
	return formatHexColor(scale(r), scale(g), scale(b))
}

func darkenColor(hex string) string {
	return scaleColor(hex, 0.50, 40)
}

func muteColor(hex string) string {
	return scaleColor(hex, 0.30, 30)
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	if !validHex(hex) {
		return 0
	}
	r, g, b := parseRGB(hex)
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func blendColors(a, b string, ratio float64) string {
	if !validHex(a) || !validHex(b) {
		return a
	}
	ratio = min(max(ratio, 0), 1)

	ar, ag, ab := parseRGB(a)
	br, bg, bb := parseRGB(b)
	mix := func(x, y int) int {
		return int(float64(x)*(1-ratio) + float64(y)*ratio)
	}
	return formatHexColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}
