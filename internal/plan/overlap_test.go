package plan

import (
	"errors"
	"testing"
)

func session(id int64, start, end string) *Session {
	return &Session{ID: id, ActivityID: 1, Date: "2024-01-01", StartTime: start, EndTime: end, OwnerID: DefaultOwner}
}

func TestTimesOverlap(t *testing.T) {
	tests := []struct {
		name                       string
		start1, end1, start2, end2 string
		want                       bool
	}{
		{name: "back to back", start1: "09:00", end1: "10:00", start2: "10:00", end2: "11:00", want: false},
		{name: "partial", start1: "09:00", end1: "10:00", start2: "09:30", end2: "10:30", want: true},
		{name: "containment", start1: "09:00", end1: "11:00", start2: "09:30", end2: "10:30", want: true},
		{name: "identical", start1: "09:00", end1: "10:00", start2: "09:00", end2: "10:00", want: true},
		{name: "disjoint", start1: "08:00", end1: "09:00", start2: "13:00", end2: "14:00", want: false},
		{name: "end of day", start1: "23:00", end1: "24:00", start2: "23:30", end2: "24:00", want: true},
		{name: "ends at midnight next starts earlier", start1: "22:00", end1: "23:00", start2: "23:00", end2: "24:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimesOverlap(tt.start1, tt.end1, tt.start2, tt.end2); got != tt.want {
				t.Errorf("TimesOverlap(%s-%s, %s-%s) = %v, want %v", tt.start1, tt.end1, tt.start2, tt.end2, got, tt.want)
			}
			// symmetric
			if got := TimesOverlap(tt.start2, tt.end2, tt.start1, tt.end1); got != tt.want {
				t.Errorf("TimesOverlap(%s-%s, %s-%s) = %v, want %v", tt.start2, tt.end2, tt.start1, tt.end1, got, tt.want)
			}
		})
	}
}

func TestHasOverlap_ExcludeSelf(t *testing.T) {
	existing := []*Session{session(1, "09:00", "10:00")}

	// Same interval as the stored session.
	candidate := session(0, "09:00", "10:00")
	if !HasOverlap(existing, candidate, 0) {
		t.Error("identical interval should overlap when nothing is excluded")
	}

	// Editing session 1's own duration must not flag itself.
	edited := session(1, "09:00", "09:30")
	if HasOverlap(existing, edited, 1) {
		t.Error("session should not overlap itself when excluded")
	}
}

func TestFindOverlap_SkipsOtherDatesAndOwners(t *testing.T) {
	other := session(2, "09:00", "10:00")
	other.Date = "2024-01-02"
	foreign := session(3, "09:00", "10:00")
	foreign.OwnerID = 42
	hit := session(4, "09:30", "11:00")

	existing := []*Session{nil, other, foreign, hit}
	got := FindOverlap(existing, session(0, "10:00", "10:30"), 0)
	if got == nil || got.ID != 4 {
		t.Fatalf("FindOverlap = %+v, want session 4", got)
	}

	if FindOverlap(existing[:3], session(0, "09:00", "10:00"), 0) != nil {
		t.Error("sessions on another date or owner should be ignored")
	}
	if FindOverlap(existing, nil, 0) != nil {
		t.Error("nil candidate should not overlap")
	}
}

func TestCheckOverlap(t *testing.T) {
	conflict := session(7, "09:00", "10:00")
	conflict.ActivityName = "Reading"

	err := CheckOverlap([]*Session{conflict}, session(0, "09:30", "10:30"), 0)
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("CheckOverlap error = %v, want ErrOverlap", err)
	}
	var oe *OverlapError
	if !errors.As(err, &oe) || oe.Conflict.ID != 7 {
		t.Fatalf("expected *OverlapError naming session 7, got %v", err)
	}
	want := `session overlaps an existing session: conflicts with #7 "Reading" (09:00-10:00)`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if err := CheckOverlap([]*Session{conflict}, session(0, "10:00", "11:00"), 0); err != nil {
		t.Errorf("back-to-back sessions should not conflict: %v", err)
	}
}

func TestSession_OverlapsWith(t *testing.T) {
	a := session(1, "09:00", "10:00")
	b := session(2, "09:30", "10:30")
	if !a.OverlapsWith(b) {
		t.Error("expected overlap")
	}
	b.Date = "2024-01-02"
	if a.OverlapsWith(b) {
		t.Error("different dates should not overlap")
	}
	if a.OverlapsWith(nil) {
		t.Error("nil should not overlap")
	}
}
