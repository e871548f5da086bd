// Package web holds the JSON helpers shared by every HTTP handler.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/google/uuid"

	"github.com/georgemunganga/cafepos/internal/platform/apperr"
)

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// Message is the error body returned to clients.
type Message struct {
	Message string `json:"message"`
}

// Error maps err to a status code and writes {"message": ...}.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		httplog.LogEntrySetField(r.Context(), "error", slog.StringValue(err.Error()))
		msg = "internal server error"
	}
	Respond(w, status, Message{Message: msg})
}

// StatusFor returns the HTTP status matching the error kind.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Invalidf("invalid request body: %v", err)
	}
	return nil
}

// ParseID parses a UUID taken from a path or body field.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Invalidf("invalid %s: %q", field, raw)
	}
	return id, nil
}

// QueryInt reads a positive integer query parameter, falling back to def.
func QueryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperr.Invalidf("invalid %s: %q", key, raw)
	}
	return n, nil
}

// ParseTime accepts a calendar date (YYYY-MM-DD, UTC midnight) or RFC3339.
func ParseTime(field, raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.Invalidf("invalid %s: use YYYY-MM-DD or RFC3339", field)
	}
	return t, nil
}

// Range is a half-open time window [From, To).
type Range struct {
	From time.Time
	To   time.Time
}

// QueryRange reads from/to query parameters. A bare date in "to" covers the whole
// day. Missing bounds default to the last `days` days ending now.
func QueryRange(r *http.Request, days int, now time.Time) (Range, error) {
	rg := Range{From: now.AddDate(0, 0, -days), To: now}
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		t, err := ParseTime("from", raw)
		if err != nil {
			return rg, err
		}
		rg.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := ParseTime("to", raw)
		if err != nil {
			return rg, err
		}
		if len(raw) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1)
		}
		rg.To = t
	}
	if !rg.From.Before(rg.To) {
		return rg, apperr.Invalidf("from must be before to")
	}
	return rg, nil
}
