package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/placement"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/slot"
	"github.com/javiermolinar/dayplanner/internal/tui/commands"
	"github.com/javiermolinar/dayplanner/internal/tui/theme"
)

const statusTTL = 3 * time.Second

// Store is what the day view reads from and writes through. Both the local
// SQLite store and the HTTP client satisfy it.
type Store interface {
	placement.Scheduler
	commands.DayLoader
	commands.ActivityLoader
}

// Options configures the TUI.
type Options struct {
	Owner     int64
	Durations []int
	Theme     string
	Now       func() time.Time
}

// Focus is the pane receiving cursor keys.
type Focus int

const (
	FocusPalette Focus = iota
	FocusGrid
)

// ModalField is the confirmation field receiving keys.
type ModalField int

const (
	FieldDuration ModalField = iota
	FieldNotes
)

// Model is the main TUI model.
type Model struct {
	ctx    context.Context
	store  Store
	owner  int64
	now    func() time.Time
	theme  *theme.Theme
	styles Styles

	flow *placement.Flow

	date       string
	loading    bool
	reposition bool
	dayErr     error

	activities    []*plan.Activity
	paletteCursor int

	cursor int // grid slot
	scroll int // first visible slot
	focus  Focus

	modalField ModalField
	notes      textinput.Model

	status    string
	statusErr bool

	width  int
	height int
}

// New creates a model showing today.
func New(ctx context.Context, store Store, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	owner := opts.Owner
	if owner == 0 {
		owner = plan.DefaultOwner
	}
	th := theme.Load(opts.Theme)

	notes := textinput.New()
	notes.Placeholder = "optional"
	notes.CharLimit = 500
	notes.Width = 32
	notes.Prompt = ""

	return Model{
		ctx:        ctx,
		store:      store,
		owner:      owner,
		now:        now,
		theme:      th,
		styles:     NewStyles(th),
		flow:       placement.New(opts.Durations),
		date:       now().Format(dateutil.Layout),
		loading:    true,
		reposition: true,
		cursor:     grid.DefaultScrollSlot,
		scroll:     grid.DefaultScrollSlot,
		focus:      FocusPalette,
		notes:      notes,
	}
}

// Init loads today and the activity palette.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		commands.LoadDay(m.ctx, m.store, m.owner, m.date),
		commands.LoadActivities(m.ctx, m.store, m.owner),
	)
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, store Store, opts Options) error {
	p := tea.NewProgram(New(ctx, store, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Date returns the day being shown.
func (m Model) Date() string {
	return m.date
}

// Flow returns the placement state machine driving the view.
func (m Model) Flow() *placement.Flow {
	return m.flow
}

func (m Model) today() string {
	return m.now().Format(dateutil.Layout)
}

func (m Model) isToday() bool {
	return m.date == m.today()
}

func (m Model) isPast() bool {
	return m.date < m.today()
}

// gridRows is the number of slots that fit on screen.
func (m Model) gridRows() int {
	if m.height <= 0 {
		return slot.PerDay
	}
	// header, blank line, status, help
	return max(1, min(slot.PerDay, m.height-4))
}

func (m *Model) ensureVisible() {
	rows := m.gridRows()
	m.cursor = min(max(m.cursor, 0), slot.PerDay-1)
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+rows {
		m.scroll = m.cursor - rows + 1
	}
	m.scroll = min(max(m.scroll, 0), slot.PerDay-rows)
}

// positionDay moves the view to where a freshly opened day is interesting.
func (m *Model) positionDay(g *grid.Grid) {
	now := m.now()
	m.scroll = grid.ScrollTarget(g, m.isToday(), now)
	switch {
	case m.isToday():
		m.cursor = slot.CurrentIndex(now)
	case g.FirstOccupied() >= 0:
		m.cursor = g.FirstOccupied()
	default:
		m.cursor = m.scroll
	}
	m.ensureVisible()
}

func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.status = msg
	m.statusErr = isErr
	return commands.ClearStatusAfter(statusTTL)
}

func (m Model) loadDay() tea.Cmd {
	return commands.LoadDay(m.ctx, m.store, m.owner, m.date)
}
