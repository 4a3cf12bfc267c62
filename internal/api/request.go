package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/javiermolinar/dayplanner/internal/dateutil"
	"github.com/javiermolinar/dayplanner/internal/plan"
)

// decode reads a JSON body into v. Malformed bodies are validation errors.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &plan.ValidationError{Field: "body", Message: "request body is required"}
		}
		return &plan.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &plan.ValidationError{Field: "id", Message: fmt.Sprintf("invalid id %q", raw)}
	}
	return id, nil
}

// dateRange reads startDate and endDate. Both or neither must be given.
func dateRange(q url.Values) (plan.Range, error) {
	start, end := q.Get("startDate"), q.Get("endDate")
	if start == "" && end == "" {
		return plan.Range{}, nil
	}
	if start == "" || end == "" {
		return plan.Range{}, &plan.ValidationError{Field: "startDate", Message: "startDate and endDate must be given together"}
	}
	if !dateutil.Valid(start) {
		return plan.Range{}, &plan.ValidationError{Field: "startDate", Message: dateutil.ErrInvalidDateFormat.Error()}
	}
	if !dateutil.Valid(end) {
		return plan.Range{}, &plan.ValidationError{Field: "endDate", Message: dateutil.ErrInvalidDateFormat.Error()}
	}
	if end < start {
		return plan.Range{}, &plan.ValidationError{Field: "endDate", Message: dateutil.ErrEndDateBeforeStart.Error()}
	}
	return plan.Range{Start: start, End: end}, nil
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
