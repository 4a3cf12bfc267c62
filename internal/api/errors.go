package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/javiermolinar/dayplanner/internal/grid"
	"github.com/javiermolinar/dayplanner/internal/log"
	"github.com/javiermolinar/dayplanner/internal/plan"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation       = "validation"
	CodeReference        = "reference"
	CodeOverlap          = "overlap"
	CodeNotFound         = "not_found"
	CodeReferentialGuard = "referential_guard"
	CodeDuplicate        = "duplicate"
	CodeIntegrity        = "integrity"
	CodeInternal         = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// FieldDetails names the offending field of a validation or reference error.
type FieldDetails struct {
	Field string `json:"field,omitempty"`
	ID    int64  `json:"id,omitempty"`
}

// OverlapDetails carries the stored session a write collided with.
type OverlapDetails struct {
	Conflict *plan.Session `json:"conflict"`
}

// GuardDetails reports what blocked a delete.
type GuardDetails struct {
	Kind      string `json:"kind"`
	ID        int64  `json:"id"`
	Dependent string `json:"dependent"`
	Count     int    `json:"count"`
}

// DuplicateDetails names the colliding unique value.
type DuplicateDetails struct {
	Kind  string `json:"kind"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// NotFoundDetails names what was looked up.
type NotFoundDetails struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

// Status maps err to an HTTP status and error code.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, plan.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, plan.ErrReference):
		return http.StatusBadRequest, CodeReference
	case errors.Is(err, plan.ErrOverlap):
		return http.StatusConflict, CodeOverlap
	case errors.Is(err, plan.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, plan.ErrReferentialGuard):
		return http.StatusConflict, CodeReferentialGuard
	case errors.Is(err, plan.ErrDuplicate):
		return http.StatusConflict, CodeDuplicate
	case errors.Is(err, grid.ErrIntegrity):
		return http.StatusInternalServerError, CodeIntegrity
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func details(err error) any {
	var (
		ve *plan.ValidationError
		re *plan.ReferenceError
		oe *plan.OverlapError
		ne *plan.NotFoundError
		ge *plan.ReferentialGuardError
		de *plan.DuplicateError
	)
	switch {
	case errors.As(err, &ve):
		if ve.Field == "" {
			return nil
		}
		return FieldDetails{Field: ve.Field}
	case errors.As(err, &re):
		return FieldDetails{Field: re.Field, ID: re.ID}
	case errors.As(err, &oe):
		return OverlapDetails{Conflict: oe.Conflict}
	case errors.As(err, &ne):
		return NotFoundDetails{Kind: ne.Kind, ID: ne.ID}
	case errors.As(err, &ge):
		return GuardDetails{Kind: ge.Kind, ID: ge.ID, Dependent: ge.Dependent, Count: ge.Count}
	case errors.As(err, &de):
		return DuplicateDetails{Kind: de.Kind, Field: de.Field, Value: de.Value}
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)
	resp := ErrorResponse{Error: err.Error(), Code: code, Details: details(err)}
	if code == CodeInternal {
		log.Error("request failed", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
		)
		resp.Error = "internal server error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write JSON response", err)
	}
}
