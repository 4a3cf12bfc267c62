package plan

import (
	"errors"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func baseSession() Session {
	return Session{
		ID:              1,
		ActivityID:      1,
		Date:            "2024-01-01",
		StartTime:       "09:00",
		EndTime:         "10:00",
		DurationMinutes: 60,
		Notes:           "draft",
		OwnerID:         DefaultOwner,
		ActivityName:    "Reading",
		CategoryName:    "Learning",
	}
}

func TestApplySession(t *testing.T) {
	tests := []struct {
		name      string
		patch     SessionPatch
		wantStart string
		wantEnd   string
		wantDur   int
		wantNotes string
	}{
		{
			name:      "shrink duration recomputes end",
			patch:     SessionPatch{DurationMinutes: ptr(30)},
			wantStart: "09:00", wantEnd: "09:30", wantDur: 30, wantNotes: "draft",
		},
		{
			name:      "move start keeps end and recomputes duration",
			patch:     SessionPatch{StartTime: ptr("08:00")},
			wantStart: "08:00", wantEnd: "10:00", wantDur: 120, wantNotes: "draft",
		},
		{
			name:      "start and duration moves the block",
			patch:     SessionPatch{StartTime: ptr("14:00"), DurationMinutes: ptr(90)},
			wantStart: "14:00", wantEnd: "15:30", wantDur: 90, wantNotes: "draft",
		},
		{
			name:      "explicit consistent end and duration",
			patch:     SessionPatch{EndTime: ptr("11:00"), DurationMinutes: ptr(120)},
			wantStart: "09:00", wantEnd: "11:00", wantDur: 120, wantNotes: "draft",
		},
		{
			name:      "end of day",
			patch:     SessionPatch{StartTime: ptr("23:30"), DurationMinutes: ptr(30)},
			wantStart: "23:30", wantEnd: "24:00", wantDur: 30, wantNotes: "draft",
		},
		{
			name:      "clear notes",
			patch:     SessionPatch{Notes: ptr("")},
			wantStart: "09:00", wantEnd: "10:00", wantDur: 60, wantNotes: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplySession(baseSession(), tt.patch)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.StartTime != tt.wantStart || got.EndTime != tt.wantEnd || got.DurationMinutes != tt.wantDur {
				t.Errorf("got %s-%s (%dm), want %s-%s (%dm)",
					got.StartTime, got.EndTime, got.DurationMinutes, tt.wantStart, tt.wantEnd, tt.wantDur)
			}
			if got.Notes != tt.wantNotes {
				t.Errorf("notes = %q, want %q", got.Notes, tt.wantNotes)
			}
			if got.ActivityName != "Reading" {
				t.Errorf("read-only fields should survive a patch that keeps the activity")
			}
		})
	}
}

func TestApplySession_Errors(t *testing.T) {
	tests := []struct {
		name      string
		patch     SessionPatch
		wantField string
	}{
		{name: "empty patch", patch: SessionPatch{}, wantField: ""},
		{name: "past midnight", patch: SessionPatch{StartTime: ptr("23:30"), DurationMinutes: ptr(60)}, wantField: "duration_minutes"},
		{name: "duration not a multiple", patch: SessionPatch{DurationMinutes: ptr(45)}, wantField: "duration_minutes"},
		{name: "inconsistent end and duration", patch: SessionPatch{EndTime: ptr("11:00"), DurationMinutes: ptr(30)}, wantField: "duration_minutes"},
		{name: "end before start", patch: SessionPatch{EndTime: ptr("08:30")}, wantField: "end_time"},
		{name: "unaligned start", patch: SessionPatch{StartTime: ptr("09:15")}, wantField: "start_time"},
		{name: "bad date", patch: SessionPatch{Date: ptr("2024-02-30")}, wantField: "date"},
		{name: "notes too long", patch: SessionPatch{Notes: ptr(string(make([]byte, MaxNotes+1)))}, wantField: "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := baseSession()
			got, err := ApplySession(existing, tt.patch)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field = %q, want %q", ve.Field, tt.wantField)
			}
			if got != existing {
				t.Errorf("failed patch should return the existing value unchanged")
			}
		})
	}
}

func TestApplySession_ChangeActivityClearsEnrichment(t *testing.T) {
	got, err := ApplySession(baseSession(), SessionPatch{ActivityID: ptr(int64(9))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ActivityID != 9 || got.ActivityName != "" || got.CategoryName != "" {
		t.Errorf("got %+v", got)
	}
}

func TestSessionPatch_MovesInterval(t *testing.T) {
	if (SessionPatch{Notes: ptr("x")}).MovesInterval() {
		t.Error("notes-only patch should not move the interval")
	}
	if !(SessionPatch{DurationMinutes: ptr(30)}).MovesInterval() {
		t.Error("duration patch moves the interval")
	}
}

func TestApplyCategory(t *testing.T) {
	existing := Category{ID: 1, Name: "Work", Color: "#3b82f6"}

	got, err := ApplyCategory(existing, CategoryPatch{Name: ptr("  Deep Work ")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Deep Work" || got.Color != "#3b82f6" {
		t.Errorf("got %+v", got)
	}

	if _, err := ApplyCategory(existing, CategoryPatch{Color: ptr("blue")}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad color error = %v", err)
	}
	if _, err := ApplyCategory(existing, CategoryPatch{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty patch error = %v", err)
	}
}

func TestApplyActivity(t *testing.T) {
	existing := Activity{ID: 1, Name: "Reading", Description: "books", CategoryID: 4, CategoryName: "Learning"}

	got, err := ApplyActivity(existing, ActivityPatch{Description: ptr(""), CategoryID: ptr(int64(5))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Description != "" || got.CategoryID != 5 || got.CategoryName != "" {
		t.Errorf("got %+v", got)
	}

	if _, err := ApplyActivity(existing, ActivityPatch{Name: ptr("   ")}); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name error = %v", err)
	}
}
