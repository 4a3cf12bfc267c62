package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/export"
	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/plan"
	"github.com/javiermolinar/dayplanner/internal/slot"
)

// CreateSessionRequest is the body of POST /api/sessions. Either EndTime or
// DurationMinutes may be omitted and is derived from the other.
type CreateSessionRequest struct {
	ActivityID      int64  `json:"activity_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// Session converts the request to a session for owner. Fields are not
// validated beyond what is needed to derive the missing one.
func (req CreateSessionRequest) Session(owner int64) (*plan.Session, error) {
	s := &plan.Session{
		ActivityID:      req.ActivityID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		OwnerID:         owner,
	}
	switch {
	case s.EndTime == "" && s.DurationMinutes > 0:
		if err := plan.ValidateStartTime(s.StartTime); err != nil {
			return nil, err
		}
		end, err := slot.EndTime(s.StartTime, s.DurationMinutes)
		if err != nil {
			return nil, &plan.ValidationError{Field: "duration_minutes", Message: err.Error()}
		}
		s.EndTime = end
	case s.DurationMinutes == 0 && s.EndTime != "":
		start, errStart := slot.ParseMinutes(s.StartTime)
		end, errEnd := slot.ParseMinutes(s.EndTime)
		if errStart == nil && errEnd == nil {
			s.DurationMinutes = end - start
		}
	}
	return s, nil
}

// GridSlot is one row of GET /api/sessions/grid.
type GridSlot struct {
	Index     int    `json:"index"`
	Time      string `json:"time"`
	Label     string `json:"label"`
	State     string `json:"state"`
	SessionID int64  `json:"session_id,omitempty"`
	Span      int    `json:"span,omitempty"`
}

// GridResponse is the occupancy map of one date.
type GridResponse struct {
	Date     string          `json:"date"`
	ScrollTo int             `json:"scroll_to"`
	Slots    []GridSlot      `json:"slots"`
	Sessions []*plan.Session `json:"sessions"`
}

// NewGridResponse renders g. now picks the scroll target when g is today.
func NewGridResponse(g *grid.Grid, now time.Time) GridResponse {
	isToday := g.Date() == now.Format(dateutil.Layout)
	resp := GridResponse{
		Date:     g.Date(),
		ScrollTo: grid.ScrollTarget(g, isToday, now),
		Slots:    make([]GridSlot, 0, slot.PerDay),
		Sessions: nonNil(g.Sessions()),
	}
	for i := 0; i < slot.PerDay; i++ {
		cell, _ := g.At(i)
		t, _ := slot.TimeOf(i)
		gs := GridSlot{Index: i, Time: t, Label: slot.Label(i), State: cell.Kind.String(), Span: cell.Span}
		if cell.Session != nil {
			gs.SessionID = cell.Session.ID
		}
		resp.Slots = append(resp.Slots, gs)
	}
	return resp
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		sessions []*plan.Session
		err      error
	)
	if date := q.Get("date"); date != "" {
		sessions, err = s.store.ListSessionsByDate(r.Context(), s.owner, date)
	} else {
		var rng plan.Range
		rng, err = dateRange(q)
		if err == nil {
			sessions, err = s.store.ListSessions(r.Context(), s.owner, rng)
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(sessions))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := req.Session(s.owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.CreateSession(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch plan.SessionPatch
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.store.UpdateSession(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeleteSession(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	date := r.URL.Query().Get("date")
	if date == "" {
		date = now.Format(dateutil.Layout)
	}
	sessions, err := s.store.ListSessionsByDate(r.Context(), s.owner, date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := grid.Build(date, sessions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewGridResponse(g, now))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sessions, err := s.store.ListSessions(r.Context(), s.owner, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, sessions, export.Options{Name: "dayplanner", Now: s.now()}); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dayplanner.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
