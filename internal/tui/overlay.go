package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlay draws box centered on top of base, which is padded or cut to
// width x height first.
func overlay(base, box string, width, height int) string {
	if width <= 0 || height <= 0 {
		return base
	}
	boxLines := strings.Split(strings.TrimRight(box, "\n"), "\n")
	boxW := 0
	for _, line := range boxLines {
		boxW = max(boxW, lipgloss.Width(line))
	}
	boxW = min(boxW, width)
	boxH := min(len(boxLines), height)

	top := max(0, (height-boxH)/2)
	left := max(0, (width-boxW)/2)

	lines := normalizeBase(base, width, height)
	for i := 0; i < boxH; i++ {
		line := boxLines[i]
		if w := lipgloss.Width(line); w > boxW {
			line = ansi.Cut(line, 0, boxW)
		} else if w < boxW {
			line += strings.Repeat(" ", boxW-w)
		}
		row := top + i
		lines[row] = ansi.Cut(lines[row], 0, left) + ansi.ResetStyle + line + ansi.Cut(lines[row], left+boxW, width)
	}
	return strings.Join(lines, "\n")
}

func normalizeBase(base string, width, height int) []string {
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	for i, line := range lines {
		lineWidth := lipgloss.Width(line)
		if lineWidth > width {
			lines[i] = ansi.Cut(line, 0, width)
			continue
		}
		if lineWidth < width {
			lines[i] = line + strings.Repeat(" ", width-lineWidth)
		}
	}
	return lines
}
