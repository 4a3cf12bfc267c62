package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/javiermolinar/dayplanner/internal/plan"
)

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// Bar draws value as a share of total in width cells.
func Bar(value, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = (value * width) / total
	}
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// printSessionRow prints one session as "#id HH:MM-HH:MM ■ activity  duration".
func printSessionRow(w io.Writer, s *plan.Session, nameWidth int) {
	name := truncate(s.ActivityName, nameWidth)
	fmt.Fprintf(w, "  #%-4d %s-%s  %s %-*s  %s",
		s.ID, s.StartTime, s.EndTime,
		formatSwatch(s.CategoryColor, "■"), nameWidth, name,
		formatMuted(FormatDuration(s.DurationMinutes)),
	)
	if s.Notes != "" {
		fmt.Fprintf(w, "  %s", formatMuted(truncate(s.Notes, 40)))
	}
	fmt.Fprintln(w)
}

// printSessions prints sessions grouped under a header per date.
func printSessions(w io.Writer, sessions []*plan.Session) {
	nameWidth := 12
	for _, s := range sessions {
		nameWidth = max(nameWidth, len([]rune(s.ActivityName)))
	}
	nameWidth = min(nameWidth, max(12, termWidth()-40))

	var currentDate string
	for _, s := range sessions {
		if s.Date != currentDate {
			if currentDate != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "=== %s ===\n", formatHeader(s.Date))
			currentDate = s.Date
		}
		printSessionRow(w, s, nameWidth)
	}
}

// PrintInsightWrapped formats and prints insight text preserving structure.
func PrintInsightWrapped(w io.Writer, text string, width int) {
	text = stripMarkdownCodeBlocks(text)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}

		prefix, content, contentWidth, isHeader := parseInsightLine(trimmed, width)
		if isHeader {
			fmt.Fprintln(w)
			fmt.Fprintln(w, formatHeader("  "+content))
			continue
		}

		wrapAndPrint(w, content, prefix, contentWidth)
	}
}

// parseInsightLine parses a line and returns formatting info.
func parseInsightLine(trimmed string, width int) (prefix, content string, contentWidth int, isHeader bool) {
	prefix = "  "
	content = trimmed
	contentWidth = width - 2

	switch {
	case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		prefix = "    • "
		content = strings.TrimPrefix(strings.TrimPrefix(trimmed, "- "), "* ")
		contentWidth = width - 6

	case strings.HasPrefix(trimmed, "#"):
		content = strings.TrimLeft(trimmed, "# ")
		isHeader = true

	case strings.HasPrefix(trimmed, ">"):
		content = strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))
		prefix = "  │ "
		contentWidth = width - 4
	}

	return prefix, content, contentWidth, isHeader
}

// wrapAndPrint wraps text to width and prints with the given prefix.
func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}

	indent := strings.Repeat(" ", len([]rune(prefix)))
	lead := prefix
	line := ""
	for _, word := range words {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			fmt.Fprintln(w, formatInsight(lead+line))
			lead = indent
			line = word
		}
	}
	fmt.Fprintln(w, formatInsight(lead+line))
}

// stripMarkdownCodeBlocks removes ``` fences from text, keeping what they enclose.
func stripMarkdownCodeBlocks(text string) string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}
