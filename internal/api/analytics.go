package api

import (
	"net/http"

	"github.com/javiermolinar/dayplanner/internal/summary"
)

func (s *Server) handleActivityHours(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hours, err := s.store.ActivityHours(r.Context(), s.owner, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(hours))
}

func (s *Server) handleCategoryHours(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hours, err := s.store.CategoryHours(r.Context(), s.owner, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(hours))
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stats, err := s.store.DailyStats(r.Context(), s.owner, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(stats))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := dateRange(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := summary.Load(r.Context(), s.store, s.owner, rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
