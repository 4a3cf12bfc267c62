package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/dayplanner/internal/db"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/summary"
)

var fixedNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.Local)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	srv := httptest.NewServer(NewServer(repo, Options{Now: func() time.Time { return fixedNow }}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status = %d, want %d; body: %s",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

// seedActivity creates a category and an activity and returns the activity ID.
func seedActivity(t *testing.T, srv *httptest.Server) int64 {
	t.Helper()
	resp := do(t, srv, http.MethodPost, "/api/categories", `{"name":"Learning","color":"#f59e0b"}`)
	expectStatus(t, resp, http.StatusCreated)
	c := decodeBody[plan.Category](t, resp)

	resp = do(t, srv, http.MethodPost, "/api/activities", fmt.Sprintf(`{"name":"Reading","category_id":%d}`, c.ID))
	expectStatus(t, resp, http.StatusCreated)
	return decodeBody[plan.Activity](t, resp).ID
}

func createSession(t *testing.T, srv *httptest.Server, activityID int64, date, start string, duration int) *http.Response {
	t.Helper()
	body := fmt.Sprintf(`{"activity_id":%d,"date":%q,"start_time":%q,"duration_minutes":%d}`, activityID, date, start, duration)
	return do(t, srv, http.MethodPost, "/api/sessions", body)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/health", "")
	expectStatus(t, resp, http.StatusOK)
	body := decodeBody[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected a request ID header")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodOptions, "/api/sessions", "")
	expectStatus(t, resp, http.StatusNoContent)
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)

	resp := createSession(t, srv, activityID, "2025-01-15", "09:00", 90)
	expectStatus(t, resp, http.StatusCreated)
	s := decodeBody[plan.Session](t, resp)

	if s.ID == 0 || s.EndTime != "10:30" {
		t.Errorf("unexpected session: %+v", s)
	}
	if s.ActivityName != "Reading" || s.CategoryName != "Learning" {
		t.Errorf("expected enriched session, got %+v", s)
	}
}

func TestCreateSession_Errors(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)
	expectStatus(t, createSession(t, srv, activityID, "2025-01-15", "09:00", 60), http.StatusCreated)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"overlap", fmt.Sprintf(`{"activity_id":%d,"date":"2025-01-15","start_time":"09:30","duration_minutes":60}`, activityID), http.StatusConflict, CodeOverlap},
		{"unknown activity", `{"activity_id":999,"date":"2025-01-15","start_time":"12:00","duration_minutes":60}`, http.StatusBadRequest, CodeReference},
		{"unaligned start", fmt.Sprintf(`{"activity_id":%d,"date":"2025-01-15","start_time":"12:15","end_time":"13:15","duration_minutes":60}`, activityID), http.StatusBadRequest, CodeValidation},
		{"past midnight", fmt.Sprintf(`{"activity_id":%d,"date":"2025-01-15","start_time":"23:30","duration_minutes":60}`, activityID), http.StatusBadRequest, CodeValidation},
		{"bad date", fmt.Sprintf(`{"activity_id":%d,"date":"2025-02-30","start_time":"12:00","duration_minutes":60}`, activityID), http.StatusBadRequest, CodeValidation},
		{"malformed json", `{"activity_id":`, http.StatusBadRequest, CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, http.MethodPost, "/api/sessions", tt.body)
			expectStatus(t, resp, tt.wantStatus)
			body := decodeBody[ErrorResponse](t, resp)
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (error: %s)", body.Code, tt.wantCode, body.Error)
			}
		})
	}
}

func TestCreateSession_OverlapDetails(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)
	first := decodeBody[plan.Session](t, createSession(t, srv, activityID, "2025-01-15", "09:00", 60))

	resp := createSession(t, srv, activityID, "2025-01-15", "09:00", 30)
	expectStatus(t, resp, http.StatusConflict)

	var body struct {
		Code    string         `json:"code"`
		Details OverlapDetails `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body.Details.Conflict == nil || body.Details.Conflict.ID != first.ID {
		t.Errorf("conflict = %+v, want session %d", body.Details.Conflict, first.ID)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)
	s := decodeBody[plan.Session](t, createSession(t, srv, activityID, "2025-01-15", "09:00", 60))
	path := fmt.Sprintf("/api/sessions/%d", s.ID)

	resp := do(t, srv, http.MethodGet, path, "")
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, srv, http.MethodPut, path, `{"duration_minutes":120,"notes":"deep focus"}`)
	expectStatus(t, resp, http.StatusOK)
	updated := decodeBody[plan.Session](t, resp)
	if updated.EndTime != "11:00" || updated.Notes != "deep focus" {
		t.Errorf("unexpected update: %+v", updated)
	}

	resp = do(t, srv, http.MethodPut, path, `{}`)
	expectStatus(t, resp, http.StatusBadRequest)
	if body := decodeBody[ErrorResponse](t, resp); !strings.Contains(body.Error, "no fields to update") {
		t.Errorf("error = %q", body.Error)
	}

	resp = do(t, srv, http.MethodDelete, path, "")
	expectStatus(t, resp, http.StatusNoContent)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp = do(t, srv, method, path, "")
		expectStatus(t, resp, http.StatusNotFound)
	}
	resp = do(t, srv, http.MethodPut, path, `{"notes":"x"}`)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestUpdateSession_Overlap(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)
	first := decodeBody[plan.Session](t, createSession(t, srv, activityID, "2025-01-15", "09:00", 60))
	expectStatus(t, createSession(t, srv, activityID, "2025-01-15", "10:00", 60), http.StatusCreated)

	resp := do(t, srv, http.MethodPut, fmt.Sprintf("/api/sessions/%d", first.ID), `{"duration_minutes":90}`)
	expectStatus(t, resp, http.StatusConflict)
}

func TestListSessions(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)
	expectStatus(t, createSession(t, srv, activityID, "2025-01-15", "14:00", 60), http.StatusCreated)
	expectStatus(t, createSession(t, srv, activityID, "2025-01-15", "09:00", 60), http.StatusCreated)
	expectStatus(t, createSession(t, srv, activityID, "2025-01-16", "09:00", 60), http.StatusCreated)

	resp := do(t, srv, http.MethodGet, "/api/sessions?date=2025-01-15", "")
	expectStatus(t, resp, http.StatusOK)
	byDate := decodeBody[[]plan.Session](t, resp)
	if len(byDate) != 2 || byDate[0].StartTime != "09:00" {
		t.Errorf("unexpected sessions by date: %+v", byDate)
	}

	resp = do(t, srv, http.MethodGet, "/api/sessions?startDate=2025-01-15&endDate=2025-01-16", "")
	expectStatus(t, resp, http.StatusOK)
	if ranged := decodeBody[[]plan.Session](t, resp); len(ranged) != 3 {
		t.Errorf("expected 3 sessions in range, got %d", len(ranged))
	}

	resp = do(t, srv, http.MethodGet, "/api/sessions?date=2025-03-01", "")
	expectStatus(t, resp, http.StatusOK)
	if raw, _ := io.ReadAll(resp.Body); strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("empty day should be [], got %s", raw)
	}

	resp = do(t, srv, http.MethodGet, "/api/sessions?startDate=2025-01-16&endDate=2025-01-15", "")
	expectStatus(t, resp, http.StatusBadRequest)
	resp = do(t, srv, http.MethodGet, "/api/sessions?startDate=2025-01-16", "")
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestGrid(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)
	s := decodeBody[plan.Session](t, createSession(t, srv, activityID, "2025-01-14", "09:00", 90))

	resp := do(t, srv, http.MethodGet, "/api/sessions/grid?date=2025-01-14", "")
	expectStatus(t, resp, http.StatusOK)
	g := decodeBody[GridResponse](t, resp)

	if len(g.Slots) != 48 {
		t.Fatalf("expected 48 slots, got %d", len(g.Slots))
	}
	if g.Slots[18].State != "start" || g.Slots[18].SessionID != s.ID || g.Slots[18].Span != 3 {
		t.Errorf("slot 18 = %+v", g.Slots[18])
	}
	for _, i := range []int{19, 20} {
		if g.Slots[i].State != "continuation" {
			t.Errorf("slot %d = %s, want continuation", i, g.Slots[i].State)
		}
	}
	if g.Slots[21].State != "free" {
		t.Errorf("slot 21 = %s, want free", g.Slots[21].State)
	}
	if g.ScrollTo != 14 {
		t.Errorf("ScrollTo = %d, want 14", g.ScrollTo)
	}

	// Today with no sessions scrolls relative to now (10:00 is slot 20).
	resp = do(t, srv, http.MethodGet, "/api/sessions/grid", "")
	expectStatus(t, resp, http.StatusOK)
	if today := decodeBody[GridResponse](t, resp); today.Date != "2025-01-15" || today.ScrollTo != 18 {
		t.Errorf("today grid = %s scroll %d, want 2025-01-15 scroll 18", today.Date, today.ScrollTo)
	}
}

func TestExport(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)
	expectStatus(t, createSession(t, srv, activityID, "2025-01-15", "09:00", 60), http.StatusCreated)

	resp := do(t, srv, http.MethodGet, "/api/sessions/export.ics?startDate=2025-01-01&endDate=2025-01-31", "")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(raw, []byte("SUMMARY:Reading")) {
		t.Errorf("export missing event:\n%s", raw)
	}
}

func TestCategories(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)

	resp := do(t, srv, http.MethodGet, "/api/categories", "")
	expectStatus(t, resp, http.StatusOK)
	categories := decodeBody[[]plan.Category](t, resp)
	if len(categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(categories))
	}
	path := fmt.Sprintf("/api/categories/%d", categories[0].ID)

	resp = do(t, srv, http.MethodPost, "/api/categories", `{"name":"Learning","color":"#000000"}`)
	expectStatus(t, resp, http.StatusConflict)
	if body := decodeBody[ErrorResponse](t, resp); body.Code != CodeDuplicate {
		t.Errorf("code = %q, want duplicate", body.Code)
	}

	resp = do(t, srv, http.MethodPost, "/api/categories", `{"name":"Bad","color":"red"}`)
	expectStatus(t, resp, http.StatusBadRequest)

	resp = do(t, srv, http.MethodPut, path, `{"color":"#111111"}`)
	expectStatus(t, resp, http.StatusOK)
	if c := decodeBody[plan.Category](t, resp); c.Color != "#111111" {
		t.Errorf("color = %s", c.Color)
	}

	resp = do(t, srv, http.MethodDelete, path, "")
	expectStatus(t, resp, http.StatusConflict)
	guard := decodeBody[struct {
		Code    string       `json:"code"`
		Details GuardDetails `json:"details"`
	}](t, resp)
	if guard.Code != CodeReferentialGuard || guard.Details.Count != 1 {
		t.Errorf("unexpected guard response: %+v", guard)
	}

	expectStatus(t, do(t, srv, http.MethodDelete, fmt.Sprintf("/api/activities/%d", activityID), ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, http.MethodDelete, path, ""), http.StatusNoContent)
	expectStatus(t, do(t, srv, http.MethodGet, path, ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/categories/abc", ""), http.StatusBadRequest)
}

func TestActivities(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)

	resp := do(t, srv, http.MethodPost, "/api/activities", `{"name":"Orphan","category_id":999}`)
	expectStatus(t, resp, http.StatusBadRequest)
	if body := decodeBody[ErrorResponse](t, resp); body.Code != CodeReference {
		t.Errorf("code = %q, want reference", body.Code)
	}

	resp = do(t, srv, http.MethodGet, "/api/activities?category_id=x", "")
	expectStatus(t, resp, http.StatusBadRequest)

	path := fmt.Sprintf("/api/activities/%d", activityID)
	resp = do(t, srv, http.MethodPut, path, `{"description":"novels"}`)
	expectStatus(t, resp, http.StatusOK)
	if a := decodeBody[plan.Activity](t, resp); a.Description != "novels" || a.CategoryName != "Learning" {
		t.Errorf("unexpected activity: %+v", a)
	}

	expectStatus(t, createSession(t, srv, activityID, "2025-01-15", "09:00", 60), http.StatusCreated)
	resp = do(t, srv, http.MethodDelete, path, "")
	expectStatus(t, resp, http.StatusConflict)
}

func TestAnalytics(t *testing.T) {
	srv := newTestServer(t)
	activityID := seedActivity(t, srv)
	expectStatus(t, createSession(t, srv, activityID, "2025-01-15", "09:00", 60), http.StatusCreated)
	expectStatus(t, createSession(t, srv, activityID, "2025-01-16", "09:00", 120), http.StatusCreated)

	resp := do(t, srv, http.MethodGet, "/api/analytics/activity-hours?startDate=2025-01-01&endDate=2025-01-31", "")
	expectStatus(t, resp, http.StatusOK)
	hours := decodeBody[[]plan.ActivityHours](t, resp)
	if len(hours) != 1 || hours[0].TotalHours != 3 || hours[0].SessionCount != 2 {
		t.Errorf("unexpected activity hours: %+v", hours)
	}

	resp = do(t, srv, http.MethodGet, "/api/analytics/category-hours", "")
	expectStatus(t, resp, http.StatusOK)
	if ch := decodeBody[[]plan.CategoryHours](t, resp); len(ch) != 1 || ch[0].CategoryName != "Learning" {
		t.Errorf("unexpected category hours: %+v", ch)
	}

	resp = do(t, srv, http.MethodGet, "/api/analytics/daily-stats", "")
	expectStatus(t, resp, http.StatusOK)
	if daily := decodeBody[[]plan.DailyStats](t, resp); len(daily) != 2 {
		t.Errorf("expected 2 days, got %d", len(daily))
	}

	resp = do(t, srv, http.MethodGet, "/api/analytics/summary", "")
	expectStatus(t, resp, http.StatusOK)
	sum := decodeBody[summary.Summary](t, resp)
	if sum.TotalSessions != 2 || sum.TotalHours != 3 || sum.AvgHoursPerDay != 1.5 || sum.DaysWithSessions != 2 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.MostUsedActivity == nil || sum.MostUsedActivity.ActivityName != "Reading" {
		t.Errorf("MostUsedActivity = %+v", sum.MostUsedActivity)
	}
}

func TestSummary_EmptyHasNullMostUsed(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodGet, "/api/analytics/summary", "")
	expectStatus(t, resp, http.StatusOK)
	raw, _ := io.ReadAll(resp.Body)
	for _, want := range []string{`"most_used_activity":null`, `"most_used_category":null`, `"total_sessions":0`} {
		if !bytes.Contains(raw, []byte(want)) {
			t.Errorf("summary missing %s: %s", want, raw)
		}
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{&plan.ValidationError{Field: "date"}, 400, CodeValidation},
		{&plan.ReferenceError{Field: "activity_id", ID: 1}, 400, CodeReference},
		{&plan.OverlapError{}, 409, CodeOverlap},
		{&plan.NotFoundError{Kind: "session", ID: 1}, 404, CodeNotFound},
		{&plan.ReferentialGuardError{Kind: "activity"}, 409, CodeReferentialGuard},
		{&plan.DuplicateError{Kind: "category"}, 409, CodeDuplicate},
		{fmt.Errorf("wrapped: %w", &plan.NotFoundError{Kind: "activity"}), 404, CodeNotFound},
		{io.ErrUnexpectedEOF, 500, CodeInternal},
	}
	for _, tt := range tests {
		status, code := Status(tt.err)
		if status != tt.wantStatus || code != tt.wantCode {
			t.Errorf("Status(%v) = %d %s, want %d %s", tt.err, status, code, tt.wantStatus, tt.wantCode)
		}
	}
}
