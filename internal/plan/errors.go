package plan

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every typed error below matches exactly one of these with
// errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrReference        = errors.New("invalid reference")
	ErrOverlap          = errors.New("session overlaps an existing session")
	ErrNotFound         = errors.New("not found")
	ErrReferentialGuard = errors.New("delete blocked by dependents")
	ErrDuplicate        = errors.New("already exists")
)

// ValidationError reports a malformed or out-of-range field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReferenceError reports a foreign key that does not resolve, such as an
// activity_id with no activity behind it.
type ReferenceError struct {
	Field string // "activity_id" or "category_id"
	ID    int64
}

func (e *ReferenceError) Error() string {
	kind := strings.TrimSuffix(e.Field, "_id")
	return fmt.Sprintf("invalid %s: %s %d does not exist", e.Field, kind, e.ID)
}

func (e *ReferenceError) Is(target error) bool { return target == ErrReference }

// OverlapError reports the session a candidate interval collides with.
type OverlapError struct {
	Conflict *Session
}

func (e *OverlapError) Error() string {
	if e.Conflict == nil {
		return ErrOverlap.Error()
	}
	c := e.Conflict
	if c.ActivityName != "" {
		return fmt.Sprintf("%s: conflicts with #%d %q (%s-%s)",
			ErrOverlap, c.ID, c.ActivityName, c.StartTime, c.EndTime)
	}
	return fmt.Sprintf("%s: conflicts with #%d (%s-%s)", ErrOverlap, c.ID, c.StartTime, c.EndTime)
}

func (e *OverlapError) Is(target error) bool { return target == ErrOverlap }

// NotFoundError reports a stale or unknown id.
type NotFoundError struct {
	Kind string // "category", "activity" or "session"
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ReferentialGuardError reports a delete refused because dependents exist.
type ReferentialGuardError struct {
	Kind      string // what was being deleted
	ID        int64
	Dependent string // singular name of the dependent kind
	Count     int
}

func (e *ReferentialGuardError) Error() string {
	return fmt.Sprintf("cannot delete %s %d: it has %d %s",
		e.Kind, e.ID, e.Count, plural(e.Dependent, e.Count))
}

func (e *ReferentialGuardError) Is(target error) bool { return target == ErrReferentialGuard }

// DuplicateError reports a unique field collision, such as a category name.
type DuplicateError struct {
	Kind  string
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Kind, e.Field, e.Value)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

func plural(noun string, n int) string {
	if n == 1 {
		return noun
	}
	if strings.HasSuffix(noun, "y") {
		return strings.TrimSuffix(noun, "y") + "ies"
	}
	return noun + "s"
}
