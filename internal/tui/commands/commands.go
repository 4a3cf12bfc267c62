// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/plan"
)

// DayLoader lists the sessions of one day.
type DayLoader interface {
	ListSessionsByDate(ctx context.Context, owner int64, date string) ([]*plan.Session, error)
}

// ActivityLoader lists the activities offered in the palette.
type ActivityLoader interface {
	ListActivities(ctx context.Context, owner, categoryID int64) ([]*plan.Activity, error)
}

// DayLoadedMsg is sent when a day has been fetched and laid out.
// Err is set when the fetch failed or the stored sessions could not be
// placed on the grid; Grid is nil then.
type DayLoadedMsg struct {
	Date string
	Grid *grid.Grid
	Err  error
}

// ActivitiesLoadedMsg is sent when the palette data is loaded.
type ActivitiesLoadedMsg struct {
	Activities []*plan.Activity
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsg is sent for temporary status messages.
type StatusMsg struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadDay fetches the sessions of date and builds its grid.
func LoadDay(ctx context.Context, store DayLoader, owner int64, date string) tea.Cmd {
	return func() tea.Msg {
		sessions, err := store.ListSessionsByDate(ctx, owner, date)
		if err != nil {
			return DayLoadedMsg{Date: date, Err: err}
		}
		g, err := grid.Build(date, sessions)
		if err != nil {
			return DayLoadedMsg{Date: date, Err: err}
		}
		return DayLoadedMsg{Date: date, Grid: g}
	}
}

// LoadActivities fetches every activity of owner.
func LoadActivities(ctx context.Context, store ActivityLoader, owner int64) tea.Cmd {
	return func() tea.Msg {
		activities, err := store.ListActivities(ctx, owner, 0)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return ActivitiesLoadedMsg{Activities: activities}
	}
}

// ClearStatusAfter returns a command that clears the status after a delay.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
