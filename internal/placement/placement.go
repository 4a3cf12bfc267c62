// Package placement implements the pick-up / drop / confirm interaction that
// turns an activity into a session on the day grid.
//
// The flow is either Idle or Dragging an activity. A drop on a free slot
// opens a confirmation surface for a new session; a click on the first slot
// of a placed session opens the same surface in edit mode. Nothing is
// persisted until the surface is submitted.
package placement

import (
	"context"
	"errors"
	"fmt"

	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

// Flow errors. These report misuse of the state machine, not domain failures.
var (
	ErrNotDragging        = errors.New("not dragging an activity")
	ErrAlreadyDragging    = errors.New("already dragging an activity")
	ErrSurfaceOpen        = errors.New("confirmation is open")
	ErrNoSurface          = errors.New("nothing to confirm")
	ErrNoGrid             = errors.New("no day loaded")
	ErrNothingToEdit      = errors.New("no session starts at this slot")
	ErrNotEditing         = errors.New("only existing sessions can be deleted")
	ErrDurationNotAllowed = errors.New("duration not available for this start time")
)

// User-visible messages.
const (
	MsgOverlap      = "This time slot overlaps with an existing session. Please choose a different duration."
	MsgSaveFailed   = "Failed to save session. Please try again."
	MsgDeleteFailed = "Failed to delete session. Please try again."
	MsgGone         = "This session no longer exists. The day will be refreshed."
	MsgBadActivity  = "This activity no longer exists. The day will be refreshed."
)

// DefaultDuration is preselected when a drop opens the surface, if it is
// one of the surface's options.
const DefaultDuration = slot.Minutes

// Scheduler commits session changes. Implemented by the local store and the
// API client.
type Scheduler interface {
	CreateSession(ctx context.Context, s *plan.Session) error
	UpdateSession(ctx context.Context, id int64, p plan.SessionPatch) (*plan.Session, error)
	DeleteSession(ctx context.Context, id int64) error
}

// State is the drag state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Outcome is where a drop landed.
type Outcome int

const (
	DroppedOnFree Outcome = iota
	DroppedOnOccupied
	DroppedOutside
)

func (o Outcome) String() string {
	switch o {
	case DroppedOnFree:
		return "dropped on free slot"
	case DroppedOnOccupied:
		return "dropped on occupied slot"
	default:
		return "dropped outside"
	}
}

// Mode is what the confirmation surface will do on submit.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Intent is the session a valid drop proposes.
type Intent struct {
	ActivityID int64
	Date       string
	StartTime  string
}

// Surface is the editable confirmation shown after a drop or a click.
type Surface struct {
	Mode     Mode
	Intent   Intent         // ModeCreate
	Activity *plan.Activity // ModeCreate, the dragged payload
	Session  *plan.Session  // ModeEdit, the session being edited

	Duration int
	Notes    string
	Options  []int

	// Set after a failed submit or delete.
	Err          string
	NeedsRefresh bool
	Retryable    bool
}

// StartTime returns the start of the session being created or edited.
func (s *Surface) StartTime() string {
	if s.Mode == ModeEdit {
		return s.Session.StartTime
	}
	return s.Intent.StartTime
}

// Date returns the date of the session being created or edited.
func (s *Surface) Date() string {
	if s.Mode == ModeEdit {
		return s.Session.Date
	}
	return s.Intent.Date
}

// EndTime returns the end implied by the selected duration, or "" if the
// duration does not fit.
func (s *Surface) EndTime() string {
	end, err := slot.EndTime(s.StartTime(), s.Duration)
	if err != nil {
		return ""
	}
	return end
}

func (s *Surface) fail(err error, fallback string) {
	s.Err = Message(err, fallback)
	s.NeedsRefresh = errors.Is(err, plan.ErrNotFound) || errors.Is(err, plan.ErrReference)
	s.Retryable = !IsDomain(err)
}

func (s *Surface) clearError() {
	s.Err = ""
	s.NeedsRefresh = false
	s.Retryable = false
}

// Flow is the placement state machine for one day view.
// It is not safe for concurrent use; drive it from a single event loop.
type Flow struct {
	grid      *grid.Grid
	state     State
	activity  *plan.Activity
	surface   *Surface
	durations []int
}

// New creates an idle Flow offering durations on the confirmation surface.
// A nil durations slice uses slot.DefaultDurations.
func New(durations []int) *Flow {
	if len(durations) == 0 {
		durations = slot.DefaultDurations
	}
	return &Flow{durations: durations}
}

// SetGrid replaces the day the flow works against. Drag and surface state
// survive so a drag can move across days.
func (f *Flow) SetGrid(g *grid.Grid) {
	f.grid = g
}

// Grid returns the current day grid.
func (f *Flow) Grid() *grid.Grid {
	return f.grid
}

// State returns the drag state.
func (f *Flow) State() State {
	return f.state
}

// Dragged returns the activity being dragged, or nil when idle.
func (f *Flow) Dragged() *plan.Activity {
	return f.activity
}

// Surface returns the open confirmation surface, or nil.
func (f *Flow) Surface() *Surface {
	return f.surface
}

// PickUp starts dragging a.
func (f *Flow) PickUp(a *plan.Activity) error {
	if a == nil {
		return fmt.Errorf("%w: no activity selected", ErrNotDragging)
	}
	if f.surface != nil {
		return ErrSurfaceOpen
	}
	if f.state == Dragging {
		return ErrAlreadyDragging
	}
	f.state = Dragging
	f.activity = a
	return nil
}

// CanDrop reports whether dropping now on slot i would propose a session.
func (f *Flow) CanDrop(i int) bool {
	return f.state == Dragging && f.grid != nil && f.grid.Droppable(i)
}

// Drop releases the dragged activity on slot i. The flow always returns to
// Idle. Only a drop on a free slot opens the confirmation surface; every
// other outcome leaves no trace.
func (f *Flow) Drop(i int) (Outcome, error) {
	if f.state != Dragging {
		return DroppedOutside, ErrNotDragging
	}
	a := f.activity
	f.reset()

	if f.grid == nil {
		return DroppedOutside, ErrNoGrid
	}
	if _, ok := f.grid.At(i); !ok {
		return DroppedOutside, nil
	}
	if !f.grid.Droppable(i) {
		return DroppedOnOccupied, nil
	}

	start, err := slot.TimeOf(i)
	if err != nil {
		return DroppedOutside, nil
	}
	options := slot.DurationOptions(start, f.durations)
	duration := DefaultDuration
	if !contains(options, duration) && len(options) > 0 {
		duration = options[0]
	}
	f.surface = &Surface{
		Mode:     ModeCreate,
		Intent:   Intent{ActivityID: a.ID, Date: f.grid.Date(), StartTime: start},
		Activity: a,
		Duration: duration,
		Options:  options,
	}
	return DroppedOnFree, nil
}

// DropOutside aborts the drag.
func (f *Flow) DropOutside() error {
	if f.state != Dragging {
		return ErrNotDragging
	}
	f.reset()
	return nil
}

// Click opens the surface in edit mode for the session starting at slot i.
// It cancels any drag in progress.
func (f *Flow) Click(i int) error {
	if f.surface != nil {
		return ErrSurfaceOpen
	}
	if f.grid == nil {
		return ErrNoGrid
	}
	s := f.grid.SessionAt(i)
	if s == nil {
		return ErrNothingToEdit
	}
	f.reset()

	options := slot.DurationOptions(s.StartTime, f.durations)
	if !contains(options, s.DurationMinutes) {
		// Keep the stored duration selectable even if it is not a preset.
		options = insertSorted(options, s.DurationMinutes)
	}
	f.surface = &Surface{
		Mode:     ModeEdit,
		Session:  s,
		Duration: s.DurationMinutes,
		Notes:    s.Notes,
		Options:  options,
	}
	return nil
}

// SetDuration selects one of the surface's duration options.
func (f *Flow) SetDuration(d int) error {
	if f.surface == nil {
		return ErrNoSurface
	}
	if !contains(f.surface.Options, d) {
		return fmt.Errorf("%w: %d minutes from %s", ErrDurationNotAllowed, d, f.surface.StartTime())
	}
	f.surface.Duration = d
	f.surface.clearError()
	return nil
}

// CycleDuration moves the selection by step options, wrapping around. A
// selection outside the options moves to the first (or, stepping back, last).
func (f *Flow) CycleDuration(step int) {
	if f.surface == nil || len(f.surface.Options) == 0 {
		return
	}
	opts := f.surface.Options
	idx := -1
	for i, d := range opts {
		if d == f.surface.Duration {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && step < 0:
		idx = len(opts) - 1
	case idx < 0:
		idx = 0
	default:
		idx = ((idx+step)%len(opts) + len(opts)) % len(opts)
	}
	f.surface.Duration = opts[idx]
	f.surface.clearError()
}

// SetNotes replaces the surface notes.
func (f *Flow) SetNotes(notes string) error {
	if f.surface == nil {
		return ErrNoSurface
	}
	f.surface.Notes = notes
	return nil
}

// Cancel closes the surface without saving.
func (f *Flow) Cancel() {
	f.surface = nil
}

// Submit validates the surface and commits it through sched.
//
// The end time is derived from the selected duration, the duration must be
// one of the options for the start time, and the candidate is checked
// against the loaded day (excluding itself when editing) before sched is
// called. On any failure the surface stays open with Err set.
func (f *Flow) Submit(ctx context.Context, sched Scheduler) (*plan.Session, error) {
	sf := f.surface
	if sf == nil {
		return nil, ErrNoSurface
	}
	sf.clearError()

	if !contains(sf.Options, sf.Duration) {
		err := &plan.ValidationError{
			Field:   "duration_minutes",
			Message: fmt.Sprintf("%d minutes does not fit after %s", sf.Duration, sf.StartTime()),
		}
		sf.fail(err, MsgSaveFailed)
		return nil, err
	}

	var (
		saved *plan.Session
		err   error
	)
	switch sf.Mode {
	case ModeCreate:
		saved, err = f.create(ctx, sched, sf)
	case ModeEdit:
		saved, err = f.update(ctx, sched, sf)
	}
	if err != nil {
		sf.fail(err, MsgSaveFailed)
		return nil, err
	}

	f.surface = nil
	return saved, nil
}

func (f *Flow) create(ctx context.Context, sched Scheduler, sf *Surface) (*plan.Session, error) {
	s, err := plan.NewSession(sf.Intent.ActivityID, sf.Intent.Date, sf.Intent.StartTime, sf.Duration, sf.Notes)
	if err != nil {
		return nil, err
	}
	if sf.Activity != nil && sf.Activity.OwnerID != 0 {
		s.OwnerID = sf.Activity.OwnerID
	}
	if err := f.checkOverlap(s, 0); err != nil {
		return nil, err
	}
	if err := sched.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (f *Flow) update(ctx context.Context, sched Scheduler, sf *Surface) (*plan.Session, error) {
	existing := sf.Session
	duration, notes := sf.Duration, sf.Notes
	patch := plan.SessionPatch{DurationMinutes: &duration, Notes: &notes}

	merged, err := plan.ApplySession(*existing, patch)
	if err != nil {
		return nil, err
	}
	if err := f.checkOverlap(&merged, existing.ID); err != nil {
		return nil, err
	}
	return sched.UpdateSession(ctx, existing.ID, patch)
}

// checkOverlap is the advisory client-side check; the store repeats it
// atomically on write.
func (f *Flow) checkOverlap(candidate *plan.Session, excludeID int64) error {
	if f.grid == nil || f.grid.Date() != candidate.Date {
		return nil
	}
	return plan.CheckOverlap(f.grid.Sessions(), candidate, excludeID)
}

// Delete removes the session being edited. No overlap check is needed.
func (f *Flow) Delete(ctx context.Context, sched Scheduler) error {
	sf := f.surface
	if sf == nil {
		return ErrNoSurface
	}
	if sf.Mode != ModeEdit {
		return ErrNotEditing
	}
	sf.clearError()
	if err := sched.DeleteSession(ctx, sf.Session.ID); err != nil {
		sf.fail(err, MsgDeleteFailed)
		return err
	}
	f.surface = nil
	return nil
}

func (f *Flow) reset() {
	f.state = Idle
	f.activity = nil
}

// IsDomain reports whether err is one of the domain error classes, as
// opposed to a transport or storage failure worth retrying.
func IsDomain(err error) bool {
	for _, class := range []error{
		plan.ErrValidation, plan.ErrReference, plan.ErrOverlap,
		plan.ErrNotFound, plan.ErrReferentialGuard, plan.ErrDuplicate,
	} {
		if errors.Is(err, class) {
			return true
		}
	}
	return false
}

// Message turns err into text for the confirmation surface.
func Message(err error, fallback string) string {
	var ve *plan.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, plan.ErrOverlap):
		return MsgOverlap
	case errors.As(err, &ve):
		return "Invalid " + ve.Error()
	case errors.Is(err, plan.ErrNotFound):
		return MsgGone
	case errors.Is(err, plan.ErrReference):
		return MsgBadActivity
	case IsDomain(err):
		return err.Error()
	default:
		return fallback
	}
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func insertSorted(xs []int, v int) []int {
	out := make([]int, 0, len(xs)+1)
	inserted := false
	for _, x := range xs {
		if !inserted && v < x {
			out = append(out, v)
			inserted = true
		}
		out = append(out, x)
	}
	if !inserted {
		out = append(out, v)
	}
	return out
}
