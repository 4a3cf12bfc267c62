package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/placement"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

// View renders the model.
func (m Model) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPalette(), " ", m.renderDay())
	view := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), "", body, m.renderStatus(), m.renderHelp())

	sf := m.flow.Surface()
	if sf == nil {
		return view
	}
	modal := m.renderSurface(sf)
	if m.width <= 0 || m.height <= 0 {
		return lipgloss.JoinVertical(lipgloss.Left, view, modal)
	}
	return overlay(view, modal, m.width, m.height)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("dayplanner")
	day := m.date
	if t, err := dateutil.ParseDate(m.date); err == nil {
		day = t.Format("Mon, Jan 2 2006")
	}
	header := title + "  " + m.styles.Header.Render(day)
	if m.isToday() {
		header += " " + m.styles.TodayMark.Render("(today)")
	}
	if a := m.flow.Dragged(); a != nil {
		header += "  " + m.styles.Dragging.Render("moving: "+a.Name)
	}
	return header
}

func (m Model) renderPalette() string {
	var b strings.Builder
	b.WriteString(m.styles.PaletteTitle.Render("Activities"))
	b.WriteString("\n")

	if len(m.activities) == 0 {
		b.WriteString(m.styles.Muted.Render("No activities yet"))
		return m.styles.Palette.Render(b.String())
	}

	category := ""
	for i, a := range m.activities {
		if a.CategoryName != category {
			category = a.CategoryName
			b.WriteString(m.styles.Muted.Render(category))
			b.WriteString("\n")
		}
		swatch := m.styles.Swatch(a.CategoryColor).Render("■")
		name := ansi.Truncate(a.Name, paletteWidth-5, "…")
		style := m.styles.PaletteItem
		if i == m.paletteCursor && m.focus == FocusPalette {
			style = m.styles.PaletteSelected
		}
		b.WriteString(" " + swatch + " " + style.Render(name))
		b.WriteString("\n")
	}
	return m.styles.Palette.Render(strings.TrimSuffix(b.String(), "\n"))
}

func (m Model) cellWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(minCellWidth, m.width-paletteWidth-labelWidth-6)
}

func (m Model) renderDay() string {
	if m.dayErr != nil {
		msg := ansi.Wordwrap(m.dayErr.Error(), m.cellWidth(), " ")
		return m.styles.Error.Render("This day cannot be shown.") + "\n" + m.styles.Muted.Render(msg)
	}
	g := m.flow.Grid()
	if g == nil {
		return m.styles.Muted.Render("Loading…")
	}

	rows := m.gridRows()
	now := -1
	if m.isToday() {
		now = slot.CurrentIndex(m.now())
	}
	lines := make([]string, 0, rows)
	for i := m.scroll; i < m.scroll+rows && i < slot.PerDay; i++ {
		label := m.styles.Label.Render(slot.Label(i))
		if i == now {
			label = m.styles.LabelNow.Render(slot.Label(i))
		}
		pointer := " "
		if i == m.cursor && m.focus == FocusGrid {
			pointer = "›"
		}
		lines = append(lines, label+" "+pointer+" "+m.renderSlot(g, i))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSlot(g *grid.Grid, i int) string {
	width := m.cellWidth()
	cell, _ := g.At(i)
	onCursor := i == m.cursor && m.focus == FocusGrid
	dragging := m.flow.State() == placement.Dragging

	if dragging && onCursor {
		if m.flow.CanDrop(i) {
			return m.styles.DropTarget.Width(width).Render("drop " + m.flow.Dragged().Name + " here")
		}
		return m.styles.Blocked.Width(width).Render("occupied")
	}

	switch cell.Kind {
	case grid.OccupiedStart:
		s := cell.Session
		text := fmt.Sprintf("%s  %s", s.ActivityName, shortDuration(s.DurationMinutes))
		if s.Notes != "" {
			text += "  " + s.Notes
		}
		text = ansi.Truncate(text, width-1, "…")
		style := m.styles.Session(s.CategoryColor, m.isPast()).Width(width)
		if onCursor {
			style = style.Bold(true).Underline(true)
		}
		return style.Render(text)
	case grid.OccupiedContinuation:
		style := m.styles.Session(cell.Session.CategoryColor, m.isPast()).Width(width)
		return style.Render("")
	default:
		if onCursor {
			return m.styles.FreeCursor.Width(width).Render("·")
		}
		return m.styles.Free.Render("·")
	}
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.styles.Error.Render(m.status)
	}
	return m.styles.Status.Render(m.status)
}

func (m Model) renderHelp() string {
	var keys string
	switch {
	case m.flow.Surface() != nil:
		keys = "←/→ duration · tab notes · enter save · esc cancel"
		if m.flow.Surface().Mode == placement.ModeEdit {
			keys += " · ctrl+d delete"
		}
	case m.flow.State() == placement.Dragging:
		keys = "↑/↓ move · enter drop · esc cancel · [/] day"
	case m.focus == FocusPalette:
		keys = "↑/↓ select · space pick up · tab grid · [/] day · t today · q quit"
	default:
		keys = "↑/↓ move · enter edit · tab palette · [/] day · t today · q quit"
	}
	return m.styles.Help.Render(keys)
}

func (m Model) renderSurface(sf *placement.Surface) string {
	title := "New session"
	name := ""
	if sf.Mode == placement.ModeEdit {
		title = "Edit session"
		name = sf.Session.ActivityName
	} else if sf.Activity != nil {
		name = sf.Activity.Name
	}

	end := sf.EndTime()
	if end == "" {
		end = "?"
	}

	durationStyle, notesStyle := m.styles.FieldActive, m.styles.Field
	if m.modalField == FieldNotes {
		durationStyle, notesStyle = m.styles.Field, m.styles.FieldActive
	}

	lines := []string{
		m.styles.ModalTitle.Render(title),
		"",
		m.styles.Header.Render(name),
		fmt.Sprintf("%s  %s - %s", sf.Date(), sf.StartTime(), end),
		"",
		durationStyle.Render("Duration") + "  ‹ " + slot.DurationLabel(sf.Duration) + " ›",
		notesStyle.Render("Notes   ") + "  " + m.notes.View(),
	}
	if sf.Err != "" {
		msg := sf.Err
		if sf.Retryable {
			msg += " Press enter to retry."
		}
		lines = append(lines, "", m.styles.Error.Render(ansi.Wordwrap(msg, 44, " ")))
	}
	return m.styles.Modal.Render(strings.Join(lines, "\n"))
}

// shortDuration formats minutes as "1h30m", "2h" or "30m".
func shortDuration(minutes int) string {
	h, mins := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, mins)
	}
}
