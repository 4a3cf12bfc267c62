package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/dayplanner/internal/plan"
)

func TestInterval(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantStart string
		wantEnd   string
	}{
		{"morning", "09:00", "10:30", "2025-01-15 09:00", "2025-01-15 10:30"},
		{"end of day", "23:30", "24:00", "2025-01-15 23:30", "2025-01-16 00:00"},
		{"midnight start", "00:00", "00:30", "2025-01-15 00:00", "2025-01-15 00:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &plan.Session{Date: "2025-01-15", StartTime: tt.start, EndTime: tt.end}
			start, end, err := Interval(s, time.UTC)
			if err != nil {
				t.Fatalf("Interval failed: %v", err)
			}
			if got := start.Format("2006-01-02 15:04"); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format("2006-01-02 15:04"); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestInterval_BadInput(t *testing.T) {
	for _, s := range []*plan.Session{
		{Date: "2025-13-01", StartTime: "09:00", EndTime: "10:00"},
		{Date: "2025-01-15", StartTime: "9am", EndTime: "10:00"},
		{Date: "2025-01-15", StartTime: "09:00", EndTime: "25:00"},
	} {
		if _, _, err := Interval(s, time.UTC); err == nil {
			t.Errorf("expected error for %+v", s)
		}
	}
}

func TestWrite(t *testing.T) {
	sessions := []*plan.Session{
		{ID: 1, Date: "2025-01-15", StartTime: "09:00", EndTime: "10:00", DurationMinutes: 60,
			ActivityName: "Reading", CategoryName: "Learning", Notes: "chapter 3"},
		{ID: 2, Date: "2025-01-15", StartTime: "23:30", EndTime: "24:00", DurationMinutes: 30},
	}

	var buf bytes.Buffer
	opts := Options{Name: "Week 3", Location: time.UTC, Now: time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)}
	if err := Write(&buf, sessions, opts); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"PRODID:" + productID,
		"X-WR-CALNAME:Week 3",
		"SUMMARY:Reading",
		"DESCRIPTION:chapter 3",
		"CATEGORIES:Learning",
		"DTSTART:20250115T090000Z",
		"DTEND:20250116T000000Z",
		"SUMMARY:Session 2",
		"UID:" + UID(1),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}
}

func TestUID_Stable(t *testing.T) {
	if UID(7) != UID(7) {
		t.Error("UID should be deterministic")
	}
	if UID(7) == UID(8) {
		t.Error("UIDs of different sessions should differ")
	}
	if !strings.HasSuffix(UID(7), "@dayplanner") {
		t.Errorf("unexpected UID %s", UID(7))
	}
}
