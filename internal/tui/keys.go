package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/log"
	"github.com/javiermolinar/dayplanner/internal/placement"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

const pageSize = 8

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	log.Debug("key", "key", msg.String())

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.flow.Surface() != nil {
		return m.handleSurfaceKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

// handleNormalKeys handles keys while no confirmation is open.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab":
		if m.focus == FocusPalette {
			m.focus = FocusGrid
		} else {
			m.focus = FocusPalette
		}

	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-pageSize)
	case "pgdown":
		m.move(pageSize)

	case "[":
		return m.changeDay(dateutil.Shift(m.date, -1))
	case "]":
		return m.changeDay(dateutil.Shift(m.date, 1))
	case "t":
		return m.changeDay(m.today())

	case " ":
		if m.focus == FocusPalette {
			return m.pickUp()
		}
		if m.flow.State() == placement.Dragging {
			return m.drop()
		}
	case "enter":
		if m.focus == FocusPalette {
			return m.pickUp()
		}
		if m.flow.State() == placement.Dragging {
			return m.drop()
		}
		return m.click()

	case "esc":
		if m.flow.State() == placement.Dragging {
			_ = m.flow.DropOutside()
			cmd := m.setStatus("Drag cancelled", false)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if m.focus == FocusPalette {
		if len(m.activities) == 0 {
			return
		}
		m.paletteCursor = min(max(m.paletteCursor+delta, 0), len(m.activities)-1)
		return
	}
	m.cursor += delta
	m.ensureVisible()
}

func (m Model) changeDay(date string) (tea.Model, tea.Cmd) {
	if date == m.date && m.dayErr == nil && !m.loading {
		return m, nil
	}
	m.date = date
	m.loading = true
	m.reposition = true
	m.dayErr = nil
	// Drops wait for the new day; the drag itself carries over.
	m.flow.SetGrid(nil)
	return m, m.loadDay()
}

func (m Model) pickUp() (tea.Model, tea.Cmd) {
	if len(m.activities) == 0 {
		cmd := m.setStatus("No activities yet. Add one with `dayplanner activity add`.", true)
		return m, cmd
	}
	a := m.activities[m.paletteCursor]
	if err := m.flow.PickUp(a); err != nil {
		cmd := m.setStatus(err.Error(), true)
		return m, cmd
	}
	m.focus = FocusGrid
	cmd := m.setStatus(fmt.Sprintf("Moving %s. Enter to drop, Esc to cancel.", a.Name), false)
	return m, cmd
}

func (m Model) drop() (tea.Model, tea.Cmd) {
	outcome, err := m.flow.Drop(m.cursor)
	if errors.Is(err, placement.ErrNoGrid) {
		cmd := m.setStatus("This day is not available, drag cancelled.", true)
		return m, cmd
	}
	if err != nil {
		cmd := m.setStatus(err.Error(), true)
		return m, cmd
	}

	switch outcome {
	case placement.DroppedOnFree:
		m.openSurface()
		return m, nil
	case placement.DroppedOnOccupied:
		cmd := m.setStatus("That slot is taken.", true)
		return m, cmd
	default:
		cmd := m.setStatus("Dropped outside the day.", false)
		return m, cmd
	}
}

func (m Model) click() (tea.Model, tea.Cmd) {
	g := m.flow.Grid()
	if g == nil {
		return m, nil
	}
	i := m.cursor
	// A continuation row edits the session it belongs to.
	if owner := g.OwnerAt(i); owner != nil {
		if start, err := slot.Index(owner.StartTime); err == nil {
			i = start
		}
	}
	err := m.flow.Click(i)
	if errors.Is(err, placement.ErrNothingToEdit) {
		return m, nil
	}
	if err != nil {
		cmd := m.setStatus(err.Error(), true)
		return m, cmd
	}
	m.openSurface()
	return m, nil
}

func (m *Model) openSurface() {
	m.modalField = FieldDuration
	m.notes.SetValue(m.flow.Surface().Notes)
	m.notes.Blur()
}

func (m *Model) closeSurface() {
	m.notes.Blur()
	m.notes.SetValue("")
	m.modalField = FieldDuration
}

// handleSurfaceKeys handles keys while the confirmation is open.
func (m Model) handleSurfaceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.flow.Cancel()
		m.closeSurface()
		return m, nil
	case "enter":
		return m.submit()
	case "ctrl+d":
		return m.deleteSession()
	case "tab", "shift+tab":
		if m.modalField == FieldDuration {
			m.modalField = FieldNotes
			m.notes.Focus()
			return m, textinput.Blink
		}
		m.modalField = FieldDuration
		m.notes.Blur()
		return m, nil
	}

	if m.modalField == FieldNotes {
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "left", "h", "up", "k":
		m.flow.CycleDuration(-1)
	case "right", "l", "down", "j":
		m.flow.CycleDuration(1)
	}
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	sf := m.flow.Surface()
	_ = m.flow.SetNotes(strings.TrimSpace(m.notes.Value()))
	verb, name := "Created", ""
	if sf.Mode == placement.ModeEdit {
		verb, name = "Updated", sf.Session.ActivityName
	} else if sf.Activity != nil {
		name = sf.Activity.Name
	}

	saved, err := m.flow.Submit(m.ctx, m.store)
	if err != nil {
		if placement.IsDomain(err) {
			log.Warn("session rejected", "date", sf.Date(), "start", sf.StartTime(), "error", err)
		} else {
			log.Error("saving session failed", err, "date", sf.Date(), "start", sf.StartTime())
		}
		if sf.NeedsRefresh {
			return m, m.loadDay()
		}
		return m, nil
	}

	m.closeSurface()
	if saved.ActivityName != "" {
		name = saved.ActivityName
	}
	status := fmt.Sprintf("%s %s %s-%s", verb, name, saved.StartTime, saved.EndTime)
	cmd := m.setStatus(status, false)
	return m, tea.Batch(m.loadDay(), cmd)
}

func (m Model) deleteSession() (tea.Model, tea.Cmd) {
	sf := m.flow.Surface()
	if sf.Mode != placement.ModeEdit {
		return m, nil
	}
	name := sf.Session.ActivityName
	if err := m.flow.Delete(m.ctx, m.store); err != nil {
		log.Error("deleting session failed", err, "id", sf.Session.ID)
		if sf.NeedsRefresh {
			return m, m.loadDay()
		}
		return m, nil
	}
	m.closeSurface()
	cmd := m.setStatus("Deleted "+name, false)
	return m, tea.Batch(m.loadDay(), cmd)
}
