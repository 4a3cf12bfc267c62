package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/dayplanner/internal/log"
	"github.com/javiermolinar/dayplanner/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case commands.DayLoadedMsg:
		// A response for a day we already navigated away from.
		if msg.Date != m.date {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.dayErr = msg.Err
			m.flow.SetGrid(nil)
			log.Warn("day unavailable", "date", msg.Date, "error", msg.Err)
			return m, nil
		}
		m.dayErr = nil
		m.flow.SetGrid(msg.Grid)
		if m.reposition {
			m.positionDay(msg.Grid)
			m.reposition = false
		}
		return m, nil

	case commands.ActivitiesLoadedMsg:
		m.activities = msg.Activities
		m.paletteCursor = min(m.paletteCursor, max(0, len(m.activities)-1))
		return m, nil

	case commands.ErrMsg:
		log.Error("tui command failed", msg.Err)
		cmd := m.setStatus(msg.Err.Error(), true)
		return m, cmd

	case commands.StatusMsg:
		cmd := m.setStatus(msg.Msg, false)
		return m, cmd

	case commands.ClearStatusMsg:
		m.status = ""
		m.statusErr = false
		return m, nil
	}

	// Cursor blink and friends for the notes field.
	if m.flow.Surface() != nil && m.modalField == FieldNotes {
		var cmd tea.Cmd
		m.notes, cmd = m.notes.Update(msg)
		return m, cmd
	}
	return m, nil
}
