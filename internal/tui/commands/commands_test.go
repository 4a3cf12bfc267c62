package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/plan"
)

type fakeStore struct {
	sessions   []*plan.Session
	activities []*plan.Activity
	err        error
}

func (f *fakeStore) ListSessionsByDate(_ context.Context, _ int64, _ string) ([]*plan.Session, error) {
	return f.sessions, f.err
}

func (f *fakeStore) ListActivities(_ context.Context, _, _ int64) ([]*plan.Activity, error) {
	return f.activities, f.err
}

func TestLoadDay(t *testing.T) {
	store := &fakeStore{sessions: []*plan.Session{
		{ID: 1, ActivityID: 1, Date: "2025-01-15", StartTime: "09:00", EndTime: "10:00", DurationMinutes: 60},
	}}

	msg := LoadDay(context.Background(), store, 1, "2025-01-15")()
	loaded, ok := msg.(DayLoadedMsg)
	if !ok {
		t.Fatalf("msg = %T, want DayLoadedMsg", msg)
	}
	if loaded.Err != nil {
		t.Fatalf("Err = %v", loaded.Err)
	}
	if loaded.Date != "2025-01-15" || loaded.Grid == nil {
		t.Fatalf("loaded = %+v", loaded)
	}
	if s := loaded.Grid.SessionAt(18); s == nil || s.ID != 1 {
		t.Errorf("SessionAt(18) = %v, want session 1", s)
	}
}

func TestLoadDay_Integrity(t *testing.T) {
	store := &fakeStore{sessions: []*plan.Session{
		{ID: 1, ActivityID: 1, Date: "2025-01-15", StartTime: "09:00", EndTime: "10:00", DurationMinutes: 60},
		{ID: 2, ActivityID: 1, Date: "2025-01-15", StartTime: "09:30", EndTime: "10:30", DurationMinutes: 60},
	}}

	loaded := LoadDay(context.Background(), store, 1, "2025-01-15")().(DayLoadedMsg)
	if !errors.Is(loaded.Err, grid.ErrIntegrity) {
		t.Fatalf("Err = %v, want integrity error", loaded.Err)
	}
	if loaded.Grid != nil {
		t.Error("Grid should be nil on integrity failure")
	}
}

func TestLoadDay_StoreError(t *testing.T) {
	boom := errors.New("boom")
	loaded := LoadDay(context.Background(), &fakeStore{err: boom}, 1, "2025-01-15")().(DayLoadedMsg)
	if !errors.Is(loaded.Err, boom) {
		t.Fatalf("Err = %v, want boom", loaded.Err)
	}
}

func TestLoadActivities(t *testing.T) {
	store := &fakeStore{activities: []*plan.Activity{{ID: 1, Name: "Reading"}}}
	msg := LoadActivities(context.Background(), store, 1)()
	loaded, ok := msg.(ActivitiesLoadedMsg)
	if !ok || len(loaded.Activities) != 1 {
		t.Fatalf("msg = %#v", msg)
	}

	msg = LoadActivities(context.Background(), &fakeStore{err: errors.New("down")}, 1)()
	if _, ok := msg.(ErrMsg); !ok {
		t.Fatalf("msg = %T, want ErrMsg", msg)
	}
}
