// Package integrity periodically re-lays stored sessions on day grids and
// reports any date whose sessions can no longer be placed.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/log"
	"github.com/javiermolinar/dayplanner/internal/plan"
)

// Lister is the part of the session store the scanner reads.
type Lister interface {
	ListSessions(ctx context.Context, owner int64, r plan.Range) ([]*plan.Session, error)
}

// Scanner checks recent dates for overlapping or misaligned sessions.
type Scanner struct {
	store    Lister
	owner    int64
	lookback int
	now      func() time.Time
}

// NewScanner returns a Scanner covering the last lookback days, today included.
func NewScanner(store Lister, owner int64, lookback int) *Scanner {
	if lookback < 1 {
		lookback = 1
	}
	return &Scanner{store: store, owner: owner, lookback: lookback, now: time.Now}
}

// Range returns the dates the next scan covers.
func (s *Scanner) Range() plan.Range {
	today := s.now().Format(dateutil.Layout)
	return plan.Range{Start: dateutil.Shift(today, -(s.lookback - 1)), End: today}
}

// Scan returns every integrity problem found in Range, in date order.
func (s *Scanner) Scan(ctx context.Context) ([]*grid.IntegrityError, error) {
	r := s.Range()
	sessions, err := s.store.ListSessions(ctx, s.owner, r)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	var (
		problems []*grid.IntegrityError
		dates    []string
	)
	byDate := make(map[string][]*plan.Session)
	for _, sess := range sessions {
		if _, ok := byDate[sess.Date]; !ok {
			dates = append(dates, sess.Date)
		}
		byDate[sess.Date] = append(byDate[sess.Date], sess)
	}
	for _, d := range dates {
		problems = append(problems, grid.Check(d, byDate[d])...)
	}
	return problems, nil
}

// run is the cron job body.
func (s *Scanner) run(ctx context.Context) {
	r := s.Range()
	problems, err := s.Scan(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error("integrity scan failed", err, "start", r.Start, "end", r.End)
		}
		return
	}
	for _, p := range problems {
		log.Warn("integrity problem", "date", p.Date, "slot", p.Slot, "session", p.SessionID, "conflict", p.ConflictID)
	}
	log.Debug("integrity scan done", "start", r.Start, "end", r.End, "problems", len(problems))
}

// Job runs a Scanner on a cron schedule.
type Job struct {
	cron    *cron.Cron
	scanner *Scanner
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewJob schedules scanner with a standard five-field cron expression or a
// descriptor such as "@hourly" or "@every 30m".
func NewJob(schedule string, scanner *Scanner) (*Job, error) {
	ctx, cancel := context.WithCancel(context.Background())
	j := &Job{
		cron:    cron.New(cron.WithLocation(time.Local)),
		scanner: scanner,
		ctx:     ctx,
		cancel:  cancel,
	}
	if _, err := j.cron.AddFunc(schedule, func() { scanner.run(j.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid integrity schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start runs the schedule in the background.
func (j *Job) Start() {
	j.cron.Start()
}

// Stop cancels a running scan and waits for it to return.
func (j *Job) Stop() {
	j.cancel()
	<-j.cron.Stop().Done()
}
