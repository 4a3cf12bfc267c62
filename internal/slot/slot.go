// Package slot maps wall-clock times onto the fixed 30-minute slots of a day.
//
// A day has 48 slots indexed 0-47. Slot i starts at i*30 minutes after
// midnight. End boundaries are exclusive, so the last slot ends at "24:00"
// (boundary index 48).
package slot

import (
	"errors"
	"fmt"
	"time"
)

const (
	// Minutes is the length of one slot.
	Minutes = 30
	// PerDay is the number of slots in a day.
	PerDay = 48
	// MinutesPerDay is 24 hours * 60 minutes.
	MinutesPerDay = 24 * 60
	// EndOfDay is the exclusive end boundary of the last slot.
	EndOfDay = "24:00"
)

// Errors returned for inputs outside the slot model.
var (
	ErrInvalidTime     = errors.New("time must be in HH:MM format")
	ErrUnaligned       = errors.New("time must be on a half hour (HH:00 or HH:30)")
	ErrOutOfRange      = errors.New("slot index out of range")
	ErrInvalidDuration = errors.New("duration must be a positive multiple of 30 minutes")
	ErrPastMidnight    = errors.New("session cannot extend past midnight")
)

// DefaultDurations are the duration choices offered when confirming a session.
var DefaultDurations = []int{30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330, 360}

// ParseMinutes converts "HH:MM" to minutes since midnight.
// "24:00" is accepted and returns MinutesPerDay.
func ParseMinutes(t string) (int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, ErrInvalidTime
	}
	for _, i := range []int{0, 1, 3, 4} {
		if t[i] < '0' || t[i] > '9' {
			return 0, ErrInvalidTime
		}
	}
	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	mins := int(t[3]-'0')*10 + int(t[4]-'0')
	if mins > 59 {
		return 0, ErrInvalidTime
	}
	if hours == 24 && mins == 0 {
		return MinutesPerDay, nil
	}
	if hours > 23 {
		return 0, ErrInvalidTime
	}
	return hours*60 + mins, nil
}

// FormatMinutes converts minutes since midnight to "HH:MM".
// MinutesPerDay formats as "24:00".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// aligned parses t and checks it sits on a slot boundary.
func aligned(t string) (int, error) {
	m, err := ParseMinutes(t)
	if err != nil {
		return 0, err
	}
	if m%Minutes != 0 {
		return 0, ErrUnaligned
	}
	return m, nil
}

// Index maps a slot-aligned start time to its slot index in [0, 47].
// Aligning arbitrary times is the caller's job; unaligned input is an error.
func Index(t string) (int, error) {
	m, err := aligned(t)
	if err != nil {
		return 0, err
	}
	if m >= MinutesPerDay {
		return 0, fmt.Errorf("%w: %s is not a start time", ErrOutOfRange, t)
	}
	return m / Minutes, nil
}

// EndIndex maps an exclusive end boundary to a boundary index in [1, 48].
func EndIndex(t string) (int, error) {
	m, err := aligned(t)
	if err != nil {
		return 0, err
	}
	if m == 0 {
		return 0, fmt.Errorf("%w: %s is not an end time", ErrOutOfRange, t)
	}
	return m / Minutes, nil
}

// TimeOf returns the start time of slot i.
func TimeOf(i int) (string, error) {
	if i < 0 || i >= PerDay {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	return FormatMinutes(i * Minutes), nil
}

// BoundaryOf returns the time of boundary i in [0, 48]; boundary 48 is "24:00".
func BoundaryOf(i int) (string, error) {
	if i < 0 || i > PerDay {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	return FormatMinutes(i * Minutes), nil
}

// Span returns the number of slots a duration covers.
// The duration must already be validated as a positive multiple of 30.
func Span(durationMinutes int) int {
	return durationMinutes / Minutes
}

// ValidDuration reports whether d is a positive multiple of the slot length.
func ValidDuration(d int) bool {
	return d > 0 && d%Minutes == 0
}

// MaxDuration returns the longest duration that keeps a session starting
// at start within the same day.
func MaxDuration(start string) (int, error) {
	m, err := aligned(start)
	if err != nil {
		return 0, err
	}
	if m >= MinutesPerDay {
		return 0, fmt.Errorf("%w: %s is not a start time", ErrOutOfRange, start)
	}
	return MinutesPerDay - m, nil
}

// EndTime adds durationMinutes to start. Results past "24:00" are rejected;
// callers are expected to offer only durations up to MaxDuration(start).
func EndTime(start string, durationMinutes int) (string, error) {
	if !ValidDuration(durationMinutes) {
		return "", ErrInvalidDuration
	}
	m, err := aligned(start)
	if err != nil {
		return "", err
	}
	end := m + durationMinutes
	if end > MinutesPerDay {
		return "", fmt.Errorf("%w: %s + %dm", ErrPastMidnight, start, durationMinutes)
	}
	return FormatMinutes(end), nil
}

// CurrentIndex snaps now down to the slot containing it.
// Only used to position the view; no invariant depends on it.
func CurrentIndex(now time.Time) int {
	return (now.Hour()*60 + now.Minute()) / Minutes
}

// DurationOptions filters candidates down to the durations that fit between
// start and midnight. A nil candidates slice uses DefaultDurations.
func DurationOptions(start string, candidates []int) []int {
	if candidates == nil {
		candidates = DefaultDurations
	}
	limit, err := MaxDuration(start)
	if err != nil {
		return nil
	}
	opts := make([]int, 0, len(candidates))
	for _, d := range candidates {
		if ValidDuration(d) && d <= limit {
			opts = append(opts, d)
		}
	}
	return opts
}

// Label returns the 12-hour display label of slot i, e.g. "2:30 PM".
func Label(i int) string {
	if i < 0 || i >= PerDay {
		return ""
	}
	mins := i * Minutes
	t := time.Date(2000, 1, 1, mins/60, mins%60, 0, 0, time.UTC)
	return t.Format("3:04 PM")
}

// DurationLabel formats a duration choice, e.g. "90 minutes (1.5h)".
func DurationLabel(d int) string {
	if d < 60 {
		return fmt.Sprintf("%d minutes", d)
	}
	return fmt.Sprintf("%d minutes (%gh)", d, float64(d)/60)
}
