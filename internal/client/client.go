// Package client talks to the scheduling API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/javiermolinar/dayplanner/internal/api"
	"github.com/javiermolinar/dayplanner/internal/placement"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/summary"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// ErrRetryable marks failures worth retrying unchanged: network errors,
// timeouts and 5xx responses.
var ErrRetryable = errors.New("temporary failure, try again")

// Client is an API client. It satisfies placement.Scheduler and
// plan.AnalyticsStore.
type Client struct {
	baseURL string
	http    *http.Client
}

var (
	_ placement.Scheduler = (*Client)(nil)
	_ plan.AnalyticsStore = (*Client)(nil)
)

// New creates a client for the API at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: u.String(),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// StatusError is a non-2xx response the client could not map to a domain
// error.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRetryable && e.Status >= 500
}

// transportError wraps a failure to reach the server.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "api unreachable: " + e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }

func (e *transportError) Is(target error) bool { return target == ErrRetryable }

// isTimeout reports whether err is the client or context deadline expiring,
// which can also happen while the body is still being read.
func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return &transportError{err: err}
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError turns an error response back into the typed error the server
// started from.
func decodeError(resp *http.Response) error {
	var body struct {
		Error   string          `json:"error"`
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, &body); err != nil {
		return &StatusError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	switch body.Code {
	case api.CodeValidation:
		var d api.FieldDetails
		_ = json.Unmarshal(body.Details, &d)
		return &plan.ValidationError{Field: d.Field, Message: strings.TrimPrefix(body.Error, d.Field+": ")}
	case api.CodeReference:
		var d api.FieldDetails
		if json.Unmarshal(body.Details, &d) == nil && d.Field != "" {
			return &plan.ReferenceError{Field: d.Field, ID: d.ID}
		}
	case api.CodeOverlap:
		var d api.OverlapDetails
		_ = json.Unmarshal(body.Details, &d)
		return &plan.OverlapError{Conflict: d.Conflict}
	case api.CodeNotFound:
		var d api.NotFoundDetails
		if json.Unmarshal(body.Details, &d) == nil && d.Kind != "" {
			return &plan.NotFoundError{Kind: d.Kind, ID: d.ID}
		}
	case api.CodeReferentialGuard:
		var d api.GuardDetails
		if json.Unmarshal(body.Details, &d) == nil && d.Kind != "" {
			return &plan.ReferentialGuardError{Kind: d.Kind, ID: d.ID, Dependent: d.Dependent, Count: d.Count}
		}
	case api.CodeDuplicate:
		var d api.DuplicateDetails
		if json.Unmarshal(body.Details, &d) == nil && d.Kind != "" {
			return &plan.DuplicateError{Kind: d.Kind, Field: d.Field, Value: d.Value}
		}
	}
	return &StatusError{Status: resp.StatusCode, Code: body.Code, Message: body.Error}
}

func sessionPath(id int64) string {
	return "/api/sessions/" + strconv.FormatInt(id, 10)
}

func rangeQuery(r plan.Range) url.Values {
	q := url.Values{}
	if r.Bounded() {
		q.Set("startDate", r.Start)
		q.Set("endDate", r.End)
	}
	return q
}

// Health pings the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// CreateSession posts s and replaces it with the stored session.
func (c *Client) CreateSession(ctx context.Context, s *plan.Session) error {
	req := api.CreateSessionRequest{
		ActivityID:      s.ActivityID,
		Date:            s.Date,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationMinutes: s.DurationMinutes,
		Notes:           s.Notes,
	}
	var stored plan.Session
	if err := c.do(ctx, http.MethodPost, "/api/sessions", nil, req, &stored); err != nil {
		return err
	}
	*s = stored
	return nil
}

// GetSession fetches one session.
func (c *Client) GetSession(ctx context.Context, id int64) (*plan.Session, error) {
	var s plan.Session
	if err := c.do(ctx, http.MethodGet, sessionPath(id), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSession sends p as a partial update.
func (c *Client) UpdateSession(ctx context.Context, id int64, p plan.SessionPatch) (*plan.Session, error) {
	var s plan.Session
	if err := c.do(ctx, http.MethodPut, sessionPath(id), nil, p, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession deletes one session.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, sessionPath(id), nil, nil, nil)
}

// ListSessionsByDate lists the sessions on date. The server decides the
// owner, so owner is ignored.
func (c *Client) ListSessionsByDate(ctx context.Context, _ int64, date string) ([]*plan.Session, error) {
	var sessions []*plan.Session
	err := c.do(ctx, http.MethodGet, "/api/sessions", url.Values{"date": {date}}, nil, &sessions)
	return sessions, err
}

// ListSessions lists sessions in r, or all of them if r is unbounded.
func (c *Client) ListSessions(ctx context.Context, _ int64, r plan.Range) ([]*plan.Session, error) {
	var sessions []*plan.Session
	err := c.do(ctx, http.MethodGet, "/api/sessions", rangeQuery(r), nil, &sessions)
	return sessions, err
}

// ListCategories lists categories by name.
func (c *Client) ListCategories(ctx context.Context, _ int64) ([]*plan.Category, error) {
	var categories []*plan.Category
	err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &categories)
	return categories, err
}

// ListActivities lists activities, optionally of one category.
func (c *Client) ListActivities(ctx context.Context, _ int64, categoryID int64) ([]*plan.Activity, error) {
	q := url.Values{}
	if categoryID != 0 {
		q.Set("category_id", strconv.FormatInt(categoryID, 10))
	}
	var activities []*plan.Activity
	err := c.do(ctx, http.MethodGet, "/api/activities", q, nil, &activities)
	return activities, err
}

// ActivityHours fetches time per activity in r.
func (c *Client) ActivityHours(ctx context.Context, _ int64, r plan.Range) ([]plan.ActivityHours, error) {
	var out []plan.ActivityHours
	err := c.do(ctx, http.MethodGet, "/api/analytics/activity-hours", rangeQuery(r), nil, &out)
	return out, err
}

// CategoryHours fetches time per category in r.
func (c *Client) CategoryHours(ctx context.Context, _ int64, r plan.Range) ([]plan.CategoryHours, error) {
	var out []plan.CategoryHours
	err := c.do(ctx, http.MethodGet, "/api/analytics/category-hours", rangeQuery(r), nil, &out)
	return out, err
}

// DailyStats fetches time per day in r.
func (c *Client) DailyStats(ctx context.Context, _ int64, r plan.Range) ([]plan.DailyStats, error) {
	var out []plan.DailyStats
	err := c.do(ctx, http.MethodGet, "/api/analytics/daily-stats", rangeQuery(r), nil, &out)
	return out, err
}

// Summary fetches the analytics summary for r.
func (c *Client) Summary(ctx context.Context, r plan.Range) (*summary.Summary, error) {
	var s summary.Summary
	if err := c.do(ctx, http.MethodGet, "/api/analytics/summary", rangeQuery(r), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
