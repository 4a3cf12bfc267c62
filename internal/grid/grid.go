// Package grid builds the 48-slot occupancy map of a single day.
//
// A Grid is derived from the sessions of one date and never mutated; when
// the session set changes callers build a new one.
package grid

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

// ErrIntegrity is matched by every *IntegrityError.
var ErrIntegrity = errors.New("grid integrity violation")

// DefaultScrollSlot is where the view starts on a day with nothing to show (06:00).
const DefaultScrollSlot = 12

// Kind is the occupancy state of a slot.
type Kind int

const (
	Free Kind = iota
	OccupiedStart
	OccupiedContinuation
)

func (k Kind) String() string {
	switch k {
	case Free:
		return "free"
	case OccupiedStart:
		return "start"
	case OccupiedContinuation:
		return "continuation"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Slot is one 30-minute cell of the grid.
// Session is set for both occupied kinds; Span only on OccupiedStart.
type Slot struct {
	Kind    Kind
	Session *plan.Session
	Span    int
}

// IntegrityError reports a session set that cannot be laid out: two sessions
// claiming one slot, or a session whose times do not sit on the grid.
type IntegrityError struct {
	Date       string
	Slot       int   // -1 when the session has no valid start slot
	SessionID  int64 // the session being placed
	ConflictID int64 // the session already holding Slot, 0 if none
	Reason     string
}

func (e *IntegrityError) Error() string {
	if e.ConflictID != 0 {
		return fmt.Sprintf("%s on %s: slot %d claimed by sessions #%d and #%d",
			ErrIntegrity, e.Date, e.Slot, e.ConflictID, e.SessionID)
	}
	return fmt.Sprintf("%s on %s: session #%d %s", ErrIntegrity, e.Date, e.SessionID, e.Reason)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// Grid is the occupancy map of one date.
type Grid struct {
	date     string
	slots    [slot.PerDay]Slot
	sessions []*plan.Session
}

// Build lays sessions out on an empty grid for date. Callers pre-filter
// sessions by date; Build does not. The first slot claimed twice, or the first
// session with an unaligned start, is returned as an *IntegrityError.
func Build(date string, sessions []*plan.Session) (*Grid, error) {
	g, conflicts := build(date, sessions, true)
	if len(conflicts) > 0 {
		return nil, conflicts[0]
	}
	return g, nil
}

// Check lays sessions out like Build but keeps going, returning every
// integrity problem found. A nil result means Build would succeed.
func Check(date string, sessions []*plan.Session) []*IntegrityError {
	_, conflicts := build(date, sessions, false)
	return conflicts
}

func build(date string, sessions []*plan.Session, stopAtFirst bool) (*Grid, []*IntegrityError) {
	g := &Grid{date: date}
	var conflicts []*IntegrityError

	for _, s := range sessions {
		if s == nil {
			continue
		}
		start, err := slot.Index(s.StartTime)
		if err != nil {
			conflicts = append(conflicts, &IntegrityError{
				Date: date, Slot: -1, SessionID: s.ID,
				Reason: fmt.Sprintf("has start time %q off the grid", s.StartTime),
			})
			if stopAtFirst {
				return nil, conflicts
			}
			continue
		}
		n := slot.Span(s.DurationMinutes)
		if n < 1 {
			conflicts = append(conflicts, &IntegrityError{
				Date: date, Slot: start, SessionID: s.ID,
				Reason: fmt.Sprintf("has invalid duration %d", s.DurationMinutes),
			})
			if stopAtFirst {
				return nil, conflicts
			}
			continue
		}

		end := min(start+n, slot.PerDay)
		clash := false
		for i := start; i < end; i++ {
			if held := g.slots[i]; held.Kind != Free {
				conflicts = append(conflicts, &IntegrityError{
					Date: date, Slot: i, SessionID: s.ID, ConflictID: held.Session.ID,
				})
				clash = true
				break
			}
		}
		if clash {
			if stopAtFirst {
				return nil, conflicts
			}
			continue
		}

		g.slots[start] = Slot{Kind: OccupiedStart, Session: s, Span: n}
		for i := start + 1; i < end; i++ {
			g.slots[i] = Slot{Kind: OccupiedContinuation, Session: s}
		}
		g.sessions = append(g.sessions, s)
	}

	return g, conflicts
}

// Date returns the date the grid was built for.
func (g *Grid) Date() string {
	return g.date
}

// At returns slot i. The second result is false outside [0, 47].
func (g *Grid) At(i int) (Slot, bool) {
	if i < 0 || i >= slot.PerDay {
		return Slot{}, false
	}
	return g.slots[i], true
}

// Droppable reports whether a new session may be dropped on slot i.
func (g *Grid) Droppable(i int) bool {
	s, ok := g.At(i)
	return ok && s.Kind == Free
}

// SessionAt returns the session starting at slot i, or nil.
// Continuation slots return nil: only the first slot of a session is clickable.
func (g *Grid) SessionAt(i int) *plan.Session {
	s, ok := g.At(i)
	if !ok || s.Kind != OccupiedStart {
		return nil
	}
	return s.Session
}

// OwnerAt returns the session covering slot i, start or continuation.
func (g *Grid) OwnerAt(i int) *plan.Session {
	s, ok := g.At(i)
	if !ok {
		return nil
	}
	return s.Session
}

// Sessions returns the placed sessions in the order they were given.
func (g *Grid) Sessions() []*plan.Session {
	return g.sessions
}

// FirstOccupied returns the earliest occupied slot, or -1 on an empty day.
func (g *Grid) FirstOccupied() int {
	for i, s := range g.slots {
		if s.Kind != Free {
			return i
		}
	}
	return -1
}

// FreeFrom returns how many consecutive free slots start at i.
func (g *Grid) FreeFrom(i int) int {
	n := 0
	for ; i < slot.PerDay && i >= 0 && g.slots[i].Kind == Free; i++ {
		n++
	}
	return n
}

// String renders the grid one character per slot: '-' free, '#' the start
// of a session, '+' a continuation.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(slot.PerDay)
	for _, s := range g.slots {
		switch s.Kind {
		case OccupiedStart:
			b.WriteByte('#')
		case OccupiedContinuation:
			b.WriteByte('+')
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// ScrollTarget picks the slot a day view should open on: two slots above now
// when viewing today, four slots above the first session otherwise, and
// DefaultScrollSlot on an empty day.
func ScrollTarget(g *Grid, isToday bool, now time.Time) int {
	if isToday {
		return max(0, slot.CurrentIndex(now)-2)
	}
	if g != nil {
		if first := g.FirstOccupied(); first >= 0 {
			return max(0, first-4)
		}
	}
	return DefaultScrollSlot
}
