package plan

import (
	"strings"

	"github.com/javiermolinar/dayplanner/internal/slot"
)

// errEmptyPatch is returned when a patch carries no fields.
var errEmptyPatch = &ValidationError{Message: "no fields to update"}

// CategoryPatch is a partial update of a Category. Nil fields are left alone.
type CategoryPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Color == nil
}

// ActivityPatch is a partial update of an Activity. An empty Description
// clears it.
type ActivityPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ActivityPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.CategoryID == nil
}

// SessionPatch is a partial update of a Session. An empty Notes clears them.
type SessionPatch struct {
	ActivityID      *int64  `json:"activity_id,omitempty"`
	Date            *string `json:"date,omitempty"`
	StartTime       *string `json:"start_time,omitempty"`
	EndTime         *string `json:"end_time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p SessionPatch) IsEmpty() bool {
	return p.ActivityID == nil && p.Date == nil && p.StartTime == nil &&
		p.EndTime == nil && p.DurationMinutes == nil && p.Notes == nil
}

// MovesInterval reports whether the patch can change the session's
// (date, start, end) and therefore needs an overlap check.
func (p SessionPatch) MovesInterval() bool {
	return p.Date != nil || p.StartTime != nil || p.EndTime != nil || p.DurationMinutes != nil
}

// ApplyCategory merges p into existing and validates the result.
func ApplyCategory(existing Category, p CategoryPatch) (Category, error) {
	if p.IsEmpty() {
		return existing, errEmptyPatch
	}
	if p.Name != nil {
		existing.Name = strings.TrimSpace(*p.Name)
	}
	if p.Color != nil {
		existing.Color = strings.TrimSpace(*p.Color)
	}
	if err := existing.Validate(); err != nil {
		return existing, err
	}
	return existing, nil
}

// ApplyActivity merges p into existing and validates the result.
func ApplyActivity(existing Activity, p ActivityPatch) (Activity, error) {
	if p.IsEmpty() {
		return existing, errEmptyPatch
	}
	if p.Name != nil {
		existing.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		existing.Description = strings.TrimSpace(*p.Description)
	}
	if p.CategoryID != nil && *p.CategoryID != existing.CategoryID {
		existing.CategoryID = *p.CategoryID
		existing.CategoryName = ""
		existing.CategoryColor = ""
	}
	if err := existing.Validate(); err != nil {
		return existing, err
	}
	return existing, nil
}

// ApplySession merges p into existing and validates the result.
//
// When the patch sets a duration but no end time, the end is recomputed from
// the merged start. When it sets no duration, the duration is recomputed
// from the merged start and end. When it sets both they must agree.
func ApplySession(existing Session, p SessionPatch) (Session, error) {
	if p.IsEmpty() {
		return existing, errEmptyPatch
	}

	merged := existing
	if p.ActivityID != nil && *p.ActivityID != existing.ActivityID {
		merged.ActivityID = *p.ActivityID
		merged.ActivityName = ""
		merged.ActivityDescription = ""
		merged.CategoryID = 0
		merged.CategoryName = ""
		merged.CategoryColor = ""
	}
	if p.Date != nil {
		merged.Date = *p.Date
	}
	if p.StartTime != nil {
		merged.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		merged.EndTime = *p.EndTime
	}
	if p.Notes != nil {
		merged.Notes = *p.Notes
	}

	switch {
	case p.DurationMinutes != nil && p.EndTime == nil:
		merged.DurationMinutes = *p.DurationMinutes
		if err := ValidateStartTime(merged.StartTime); err != nil {
			return existing, err
		}
		end, err := slot.EndTime(merged.StartTime, merged.DurationMinutes)
		if err != nil {
			return existing, &ValidationError{Field: "duration_minutes", Message: err.Error()}
		}
		merged.EndTime = end
	case p.DurationMinutes != nil:
		merged.DurationMinutes = *p.DurationMinutes
	default:
		start, errStart := slot.ParseMinutes(merged.StartTime)
		end, errEnd := slot.ParseMinutes(merged.EndTime)
		if errStart == nil && errEnd == nil {
			merged.DurationMinutes = end - start
		}
	}

	if err := merged.Validate(); err != nil {
		return existing, err
	}
	return merged, nil
}
