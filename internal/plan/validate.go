package plan

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

// Field limits.
const (
	MaxCategoryName = 100
	MaxActivityName = 200
	MaxDescription  = 1000
	MaxNotes        = 1000
)

var (
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	timePattern  = regexp.MustCompile(`^([01]\d|2[0-3]):(00|30)$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validate checks the category fields.
func (c *Category) Validate() error {
	if err := validateName("name", c.Name, MaxCategoryName); err != nil {
		return err
	}
	if !colorPattern.MatchString(c.Color) {
		return &ValidationError{Field: "color", Message: "must be a hex color like #3b82f6"}
	}
	return nil
}

// Validate checks the activity fields.
func (a *Activity) Validate() error {
	if err := validateName("name", a.Name, MaxActivityName); err != nil {
		return err
	}
	if utf8.RuneCountInString(a.Description) > MaxDescription {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", MaxDescription)}
	}
	if a.CategoryID <= 0 {
		return &ValidationError{Field: "category_id", Message: "is required"}
	}
	return nil
}

// Validate checks every session invariant that does not need other sessions:
// aligned times, start before end, same day, and a duration that is a
// positive multiple of 30 equal to end minus start.
func (s *Session) Validate() error {
	if s.ActivityID <= 0 {
		return &ValidationError{Field: "activity_id", Message: "is required"}
	}
	if err := ValidateDate(s.Date); err != nil {
		return err
	}
	if err := ValidateStartTime(s.StartTime); err != nil {
		return err
	}
	if err := ValidateEndTime(s.EndTime); err != nil {
		return err
	}
	if s.StartTime >= s.EndTime {
		return &ValidationError{Field: "end_time", Message: "start time must be before end time"}
	}
	if !slot.ValidDuration(s.DurationMinutes) {
		return &ValidationError{Field: "duration_minutes", Message: slot.ErrInvalidDuration.Error()}
	}
	start, _ := slot.ParseMinutes(s.StartTime)
	end, _ := slot.ParseMinutes(s.EndTime)
	if end-start != s.DurationMinutes {
		return &ValidationError{
			Field:   "duration_minutes",
			Message: fmt.Sprintf("must equal end minus start (%d), got %d", end-start, s.DurationMinutes),
		}
	}
	if utf8.RuneCountInString(s.Notes) > MaxNotes {
		return &ValidationError{Field: "notes", Message: fmt.Sprintf("must be at most %d characters", MaxNotes)}
	}
	return nil
}

// ValidateDate checks that d is a real calendar date in YYYY-MM-DD format.
func ValidateDate(d string) error {
	if !datePattern.MatchString(d) || !dateutil.Valid(d) {
		return &ValidationError{Field: "date", Message: "must be a real date in YYYY-MM-DD format"}
	}
	return nil
}

// ValidateStartTime checks t is HH:00 or HH:30 between 00:00 and 23:30.
func ValidateStartTime(t string) error {
	if !timePattern.MatchString(t) {
		return &ValidationError{Field: "start_time", Message: "must be HH:00 or HH:30"}
	}
	return nil
}

// ValidateEndTime is ValidateStartTime plus the exclusive end-of-day boundary "24:00".
func ValidateEndTime(t string) error {
	if t == slot.EndOfDay || timePattern.MatchString(t) {
		return nil
	}
	return &ValidationError{Field: "end_time", Message: "must be HH:00 or HH:30 (or 24:00)"}
}

func validateName(field, name string, limit int) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: field, Message: "cannot be empty"}
	}
	if utf8.RuneCountInString(name) > limit {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", limit)}
	}
	return nil
}
