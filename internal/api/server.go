// Package api serves the scheduling REST API over a plan.Repository.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/dayplanner/internal/log"
	"github.com/javiermolinar/dayplanner/internal/plan"
)

// Defaults for Options.
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultAllowOrigin    = "*"
	shutdownTimeout       = 5 * time.Second
	maxBodyBytes          = 1 << 20
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Options configures a Server.
type Options struct {
	Owner          int64         // owner of every request, plan.DefaultOwner if 0
	RequestTimeout time.Duration // per-request context deadline
	AllowOrigin    string        // Access-Control-Allow-Origin
	Now            func() time.Time
}

// Server routes API requests to the store.
type Server struct {
	store   plan.Repository
	owner   int64
	timeout time.Duration
	origin  string
	now     func() time.Time
	mux     *http.ServeMux
}

// NewServer creates a Server and registers its routes.
func NewServer(store plan.Repository, opts Options) *Server {
	s := &Server{
		store:   store,
		owner:   opts.Owner,
		timeout: opts.RequestTimeout,
		origin:  opts.AllowOrigin,
		now:     opts.Now,
		mux:     http.NewServeMux(),
	}
	if s.owner == 0 {
		s.owner = plan.DefaultOwner
	}
	if s.timeout <= 0 {
		s.timeout = DefaultRequestTimeout
	}
	if s.origin == "" {
		s.origin = DefaultAllowOrigin
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/grid", s.handleGrid)
	s.mux.HandleFunc("GET /api/sessions/export.ics", s.handleExport)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("PUT /api/sessions/{id}", s.handleUpdateSession)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)

	s.mux.HandleFunc("GET /api/categories", s.handleListCategories)
	s.mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	s.mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	s.mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	s.mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	s.mux.HandleFunc("GET /api/activities", s.handleListActivities)
	s.mux.HandleFunc("POST /api/activities", s.handleCreateActivity)
	s.mux.HandleFunc("GET /api/activities/{id}", s.handleGetActivity)
	s.mux.HandleFunc("PUT /api/activities/{id}", s.handleUpdateActivity)
	s.mux.HandleFunc("DELETE /api/activities/{id}", s.handleDeleteActivity)

	s.mux.HandleFunc("GET /api/analytics/activity-hours", s.handleActivityHours)
	s.mux.HandleFunc("GET /api/analytics/category-hours", s.handleCategoryHours)
	s.mux.HandleFunc("GET /api/analytics/daily-stats", s.handleDailyStats)
	s.mux.HandleFunc("GET /api/analytics/summary", s.handleSummary)
}

// Handler returns the routes wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return s.requestID(s.logRequests(s.cors(s.withTimeout(s.mux))))
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "listen", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type ctxKey struct{}

// RequestID returns the ID assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", RequestID(r.Context()),
		)
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		h.Set("Access-Control-Expose-Headers", RequestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Ping(r.Context()); err != nil {
		log.Error("health check failed", err, "request_id", RequestID(r.Context()))
		resp["status"] = "unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
