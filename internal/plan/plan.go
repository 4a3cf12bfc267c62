// Package plan defines the core domain types for dayplanner: categories,
// activities and the timed sessions placed on a day grid.
package plan

import (
	"strings"
	"time"

	"github.com/javiermolinar/dayplanner/internal/slot"
)

// DefaultOwner is the owner used when no other owner is configured.
const DefaultOwner int64 = 1

// Category groups activities under a display name and color.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"` // "#rrggbb"
	OwnerID   int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity is something a session can be spent on.
type Activity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CategoryID  int64     `json:"category_id"`
	OwnerID     int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Read-only, filled from the owning category.
	CategoryName  string `json:"category_name,omitempty"`
	CategoryColor string `json:"category_color,omitempty"`
}

// Session is a block of time spent on an activity.
// Times are "HH:MM" on the half hour; EndTime is exclusive and may be "24:00".
type Session struct {
	ID              int64     `json:"id"`
	ActivityID      int64     `json:"activity_id"`
	Date            string    `json:"date"` // "YYYY-MM-DD"
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
	OwnerID         int64     `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Read-only, filled from the activity and its category.
	ActivityName        string `json:"activity_name,omitempty"`
	ActivityDescription string `json:"activity_description,omitempty"`
	CategoryID          int64  `json:"category_id,omitempty"`
	CategoryName        string `json:"category_name,omitempty"`
	CategoryColor       string `json:"category_color,omitempty"`
}

// NewCategory creates a new Category with validation.
func NewCategory(name, color string) (*Category, error) {
	c := &Category{
		Name:    strings.TrimSpace(name),
		Color:   strings.TrimSpace(color),
		OwnerID: DefaultOwner,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewActivity creates a new Activity with validation.
// Whether categoryID exists is checked by the store.
func NewActivity(name, description string, categoryID int64) (*Activity, error) {
	a := &Activity{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CategoryID:  categoryID,
		OwnerID:     DefaultOwner,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// NewSession creates a session starting at start and lasting duration minutes.
// The end time is derived from the duration.
func NewSession(activityID int64, date, start string, duration int, notes string) (*Session, error) {
	end, err := slot.EndTime(start, duration)
	if err != nil {
		return nil, &ValidationError{Field: "duration_minutes", Message: err.Error()}
	}
	s := &Session{
		ActivityID:      activityID,
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		DurationMinutes: duration,
		Notes:           notes,
		OwnerID:         DefaultOwner,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// StartIndex returns the grid slot the session starts in.
func (s *Session) StartIndex() (int, error) {
	return slot.Index(s.StartTime)
}

// Span returns how many slots the session covers.
func (s *Session) Span() int {
	return slot.Span(s.DurationMinutes)
}

// Hours returns the session length in hours.
func (s *Session) Hours() float64 {
	return float64(s.DurationMinutes) / 60
}

// OverlapsWith returns true if both sessions are on the same day and their
// half-open intervals intersect.
func (s *Session) OverlapsWith(other *Session) bool {
	if other == nil || s.Date != other.Date {
		return false
	}
	return TimesOverlap(s.StartTime, s.EndTime, other.StartTime, other.EndTime)
}

// Label returns a short display string such as "Reading 09:00-10:00".
func (s *Session) Label() string {
	name := s.ActivityName
	if name == "" {
		name = "session"
	}
	return name + " " + s.StartTime + "-" + s.EndTime
}
