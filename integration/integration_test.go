package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/javiermolinar/dayplanner/internal/api"
	"github.com/javiermolinar/dayplanner/internal/client"
	"github.com/javiermolinar/dayplanner/internal/db"
	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/placement"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

const day = "2024-01-01"

// env is one SQLite store served over HTTP with a client pointed at it.
type env struct {
	repo     *db.SQLite
	server   *httptest.Server
	client   *client.Client
	activity *plan.Activity
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	cat := &plan.Category{Name: "Learning", Color: "#f59e0b"}
	if err := repo.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	act := &plan.Activity{Name: "Reading", CategoryID: cat.ID}
	if err := repo.CreateActivity(ctx, act); err != nil {
		t.Fatalf("failed to create activity: %v", err)
	}

	srv := httptest.NewServer(api.NewServer(repo, api.Options{}).Handler())
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return &env{repo: repo, server: srv, client: c, activity: act}
}

// load fetches date through the client and hands its grid to flow.
func (e *env) load(t *testing.T, flow *placement.Flow, date string) *grid.Grid {
	t.Helper()
	sessions, err := e.client.ListSessionsByDate(context.Background(), plan.DefaultOwner, date)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	g, err := grid.Build(date, sessions)
	if err != nil {
		t.Fatalf("failed to build grid: %v", err)
	}
	flow.SetGrid(g)
	return g
}

// gridStates returns the slot states served by GET /api/sessions/grid.
func (e *env) gridStates(t *testing.T, date string) []string {
	t.Helper()
	resp, err := http.Get(e.server.URL + "/api/sessions/grid?date=" + date)
	if err != nil {
		t.Fatalf("failed to get grid: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("grid status = %d", resp.StatusCode)
	}
	var body api.GridResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode grid: %v", err)
	}
	states := make([]string, len(body.Slots))
	for i, s := range body.Slots {
		states[i] = s.State
	}
	return states
}

func wantStates(t *testing.T, got []string, occupied map[int]string) {
	t.Helper()
	if len(got) != slot.PerDay {
		t.Fatalf("grid has %d slots, want %d", len(got), slot.PerDay)
	}
	for i, state := range got {
		want, ok := occupied[i]
		if !ok {
			want = "free"
		}
		if state != want {
			t.Errorf("slot %d = %q, want %q", i, state, want)
		}
	}
}

// place drags the env activity onto slot i and saves it for duration minutes.
func (e *env) place(t *testing.T, flow *placement.Flow, i, duration int) (*plan.Session, error) {
	t.Helper()
	if err := flow.PickUp(e.activity); err != nil {
		t.Fatalf("PickUp: %v", err)
	}
	outcome, err := flow.Drop(i)
	if err != nil || outcome != placement.DroppedOnFree {
		t.Fatalf("Drop(%d) = %v, %v", i, outcome, err)
	}
	if err := flow.SetDuration(duration); err != nil {
		t.Fatalf("SetDuration(%d): %v", duration, err)
	}
	return flow.Submit(context.Background(), e.client)
}

func TestScenarios(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	flow := placement.New(nil)

	// Create a one hour session on an empty day.
	e.load(t, flow, day)
	first, err := e.place(t, flow, 18, 60)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == 0 || first.StartTime != "09:00" || first.EndTime != "10:00" {
		t.Fatalf("created = %+v", first)
	}
	wantStates(t, e.gridStates(t, day), map[int]string{18: "start", 19: "continuation"})
	g := e.load(t, flow, day)
	if cell, _ := g.At(18); cell.Span != 2 {
		t.Errorf("span = %d, want 2", cell.Span)
	}

	// An overlapping create is refused by the server.
	err = e.client.CreateSession(ctx, &plan.Session{
		ActivityID: e.activity.ID, Date: day, StartTime: "09:30", EndTime: "10:30", DurationMinutes: 60,
	})
	var overlap *plan.OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("overlapping create err = %v, want OverlapError", err)
	}
	if overlap.Conflict == nil || overlap.Conflict.ID != first.ID {
		t.Errorf("conflict = %+v, want session %d", overlap.Conflict, first.ID)
	}
	wantStates(t, e.gridStates(t, day), map[int]string{18: "start", 19: "continuation"})

	// Shortening it frees the second slot.
	e.load(t, flow, day)
	if err := flow.Click(18); err != nil {
		t.Fatalf("Click(18): %v", err)
	}
	if err := flow.SetDuration(30); err != nil {
		t.Fatalf("SetDuration(30): %v", err)
	}
	edited, err := flow.Submit(ctx, e.client)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.EndTime != "09:30" || edited.DurationMinutes != 30 {
		t.Errorf("edited = %+v", edited)
	}
	wantStates(t, e.gridStates(t, day), map[int]string{18: "start"})

	// The last slot of the day only offers thirty minutes.
	if got, err := slot.MaxDuration("23:30"); err != nil || got != 30 {
		t.Errorf("MaxDuration(23:30) = %d, %v, want 30", got, err)
	}
	e.load(t, flow, day)
	if err := flow.PickUp(e.activity); err != nil {
		t.Fatalf("PickUp: %v", err)
	}
	if outcome, err := flow.Drop(47); err != nil || outcome != placement.DroppedOnFree {
		t.Fatalf("Drop(47) = %v, %v", outcome, err)
	}
	if opts := flow.Surface().Options; len(opts) != 1 || opts[0] != 30 {
		t.Errorf("options at 23:30 = %v, want [30]", opts)
	}
	if err := flow.SetDuration(60); !errors.Is(err, placement.ErrDurationNotAllowed) {
		t.Errorf("SetDuration(60) at 23:30 err = %v", err)
	}
	late, err := flow.Submit(ctx, e.client)
	if err != nil {
		t.Fatalf("late create: %v", err)
	}
	if late.EndTime != "24:00" {
		t.Errorf("late end = %q, want 24:00", late.EndTime)
	}
}

func TestDeleteActivityGuard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	unused := &plan.Activity{Name: "Podcasts", CategoryID: e.activity.CategoryID}
	if err := e.repo.CreateActivity(ctx, unused); err != nil {
		t.Fatalf("failed to create activity: %v", err)
	}
	if code := deleteActivity(t, e, unused.ID); code != http.StatusNoContent {
		t.Errorf("deleting an unused activity: status %d, want 204", code)
	}

	for _, start := range []string{"09:00", "11:00"} {
		s, err := plan.NewSession(e.activity.ID, day, start, 60, "")
		if err != nil {
			t.Fatal(err)
		}
		if err := e.client.CreateSession(ctx, s); err != nil {
			t.Fatalf("create %s: %v", start, err)
		}
	}

	if code := deleteActivity(t, e, e.activity.ID); code != http.StatusConflict {
		t.Errorf("deleting a used activity: status %d, want 409", code)
	}
	err := e.repo.DeleteActivity(ctx, e.activity.ID)
	var guard *plan.ReferentialGuardError
	if !errors.As(err, &guard) {
		t.Fatalf("DeleteActivity err = %v, want ReferentialGuardError", err)
	}
	if guard.Count != 2 {
		t.Errorf("guard count = %d, want 2", guard.Count)
	}
}

func deleteActivity(t *testing.T, e *env, id int64) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, e.server.URL+"/api/activities/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestStaleGridRejectedByStore(t *testing.T) {
	e := newEnv(t)
	a := placement.New(nil)
	b := placement.New(nil)
	e.load(t, a, day)
	e.load(t, b, day)

	if _, err := e.place(t, a, 28, 60); err != nil {
		t.Fatalf("first create: %v", err)
	}

	// b still sees an empty day, so only the store catches the overlap.
	_, err := e.place(t, b, 29, 60)
	if !errors.Is(err, plan.ErrOverlap) {
		t.Fatalf("err = %v, want overlap", err)
	}
	sf := b.Surface()
	if sf == nil || sf.Err != placement.MsgOverlap || sf.Retryable {
		t.Errorf("surface = %+v", sf)
	}
}

func TestEditVanishedSession(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	flow := placement.New(nil)
	e.load(t, flow, day)

	s, err := e.place(t, flow, 20, 60)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	e.load(t, flow, day)
	if err := flow.Click(20); err != nil {
		t.Fatalf("Click: %v", err)
	}

	if err := e.client.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = flow.Submit(ctx, e.client)
	if !errors.Is(err, plan.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if sf := flow.Surface(); sf == nil || !sf.NeedsRefresh || sf.Err != placement.MsgGone {
		t.Errorf("surface = %+v", sf)
	}
}

func TestSummaryOverHTTP(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sessions := []struct {
		date, start string
		duration    int
	}{
		{"2024-01-01", "09:00", 60},
		{"2024-01-01", "14:00", 30},
		{"2024-01-02", "09:00", 90},
	}
	for _, tt := range sessions {
		s, err := plan.NewSession(e.activity.ID, tt.date, tt.start, tt.duration, "")
		if err != nil {
			t.Fatal(err)
		}
		if err := e.client.CreateSession(ctx, s); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	sum, err := e.client.Summary(ctx, plan.Range{Start: "2024-01-01", End: "2024-01-07"})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalSessions != 3 || sum.TotalMinutes != 180 || sum.DaysWithSessions != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.MostUsedActivity == nil || sum.MostUsedActivity.ActivityName != "Reading" {
		t.Errorf("most used = %+v", sum.MostUsedActivity)
	}

	daily, err := e.client.DailyStats(ctx, plan.DefaultOwner, plan.Range{Start: "2024-01-02", End: "2024-01-02"})
	if err != nil {
		t.Fatalf("DailyStats: %v", err)
	}
	if len(daily) != 1 || daily[0].TotalMinutes != 90 {
		t.Errorf("daily = %+v", daily)
	}
}
