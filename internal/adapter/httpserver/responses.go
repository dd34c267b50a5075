package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/firstroundai/interviewd/internal/domain"
)

type errorInfo struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorInfo `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("encode response", slog.Any("error", err))
		}
	}
}

// writeError maps domain sentinels to the HTTP error envelope. Conflicts
// (disqualification, duplicate completion, invitation mismatch) surface as
// 403 because they are user-facing hard stops, not retryable races.
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status, code = http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusForbidden, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, domain.ErrUpstream):
		status, code = http.StatusBadGateway, "UPSTREAM_ERROR"
	}
	if status >= 500 {
		slog.Error("request failed", slog.Any("error", err))
	}
	writeJSON(w, status, errorEnvelope{Error: errorInfo{Code: code, Message: err.Error()}})
}

func writeValidationError(w http.ResponseWriter, details map[string]any) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorInfo{
		Code:    "INVALID_ARGUMENT",
		Message: "request validation failed",
		Details: details,
	}})
}
