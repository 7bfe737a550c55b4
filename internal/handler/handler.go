package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"badgeclock/internal/domain"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// Helper functions

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeServiceError maps a service error onto a status code
func writeServiceError(w http.ResponseWriter, action string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s: %v", action, err)
	}
	writeError(w, action, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownBadge), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAmbiguousIdentity), errors.Is(err, domain.ErrDuplicateBadge):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyBadge), errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseDay validates a YYYY-MM-DD query value; empty is allowed
func parseDay(value string) (string, bool) {
	if value == "" {
		return "", true
	}
	if _, err := time.Parse(domain.DayLayout, value); err != nil {
		return "", false
	}
	return value, true
}
