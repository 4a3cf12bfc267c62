// Package export renders sessions as an iCalendar feed.
package export

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

const productID = "-//dayplanner//sessions//EN"

// uidSpace namespaces session UIDs so re-exports keep stable identifiers.
var uidSpace = uuid.MustParse("6f1c2a4e-3b7d-4c55-9a0e-2d8f61b0c9a4")

// Options controls calendar output.
type Options struct {
	Name     string         // X-WR-CALNAME, omitted when empty
	Location *time.Location // zone the session times are in, time.Local if nil
	Now      time.Time      // DTSTAMP, time.Now if zero
}

// Calendar builds a VCALENDAR with one VEVENT per session.
func Calendar(sessions []*plan.Session, opts Options) (*ical.Calendar, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, s := range sessions {
		start, end, err := Interval(s, loc)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", s.ID, err)
		}

		event := cal.AddEvent(UID(s.ID))
		event.SetDtStampTime(now)
		if !s.CreatedAt.IsZero() {
			event.SetCreatedTime(s.CreatedAt)
		}
		if !s.UpdatedAt.IsZero() {
			event.SetModifiedAt(s.UpdatedAt)
		}
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(summaryOf(s))
		if desc := descriptionOf(s); desc != "" {
			event.SetDescription(desc)
		}
		if s.CategoryName != "" {
			event.SetProperty(ical.ComponentPropertyCategories, s.CategoryName)
		}
	}
	return cal, nil
}

// Write serializes sessions as iCalendar text to w.
func Write(w io.Writer, sessions []*plan.Session, opts Options) error {
	cal, err := Calendar(sessions, opts)
	if err != nil {
		return err
	}
	return cal.SerializeTo(w)
}

// Interval converts a session's date and times to instants in loc.
// An end of 24:00 becomes midnight of the next day.
func Interval(s *plan.Session, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(dateutil.Layout, s.Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing date: %w", err)
	}
	startMin, err := slot.ParseMinutes(s.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing start time: %w", err)
	}
	endMin, err := slot.ParseMinutes(s.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing end time: %w", err)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, startMin, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), 0, endMin, 0, 0, loc)
	return start, end, nil
}

// UID returns the stable iCalendar UID of session id.
func UID(id int64) string {
	return uuid.NewSHA1(uidSpace, []byte(fmt.Sprintf("session-%d", id))).String() + "@dayplanner"
}

func summaryOf(s *plan.Session) string {
	if s.ActivityName != "" {
		return s.ActivityName
	}
	return fmt.Sprintf("Session %d", s.ID)
}

func descriptionOf(s *plan.Session) string {
	switch {
	case s.Notes != "" && s.ActivityDescription != "":
		return s.Notes + "\n\n" + s.ActivityDescription
	case s.Notes != "":
		return s.Notes
	default:
		return s.ActivityDescription
	}
}
