package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"badgeclock/internal/domain"
	"badgeclock/internal/service"
)

// AttendanceHandler handles scans, history, presence and enrollment
type AttendanceHandler struct {
	svc *service.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// GetStatus returns the operator status line
func (h *AttendanceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Status(), http.StatusOK)
}

// RecentScans returns the recent-scan log, newest first
func (h *AttendanceHandler) RecentScans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.RecentScans(), http.StatusOK)
}

// ScanRequest is a badge scan submitted over HTTP
type ScanRequest struct {
	CardUID string `json:"card_uid"`
}

// RecordScan processes a badge scan submitted over HTTP
func (h *AttendanceHandler) RecordScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.RecordScan(r.Context(), req.CardUID)
	if err != nil {
		writeServiceError(w, "Scan rejected", err)
		return
	}

	status := http.StatusCreated
	if result.Record == nil {
		status = http.StatusOK // captured for enrollment
	}
	writeJSON(w, result, status)
}

// ListAttendance returns the attendance history, newest first
func (h *AttendanceHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	day, ok := parseDay(query.Get("date"))
	if !ok {
		writeError(w, "Invalid date", "expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries, err := h.svc.ListAttendance(r.Context(), service.AttendanceQuery{
		Day:        day,
		EmployeeID: query.Get("employee_id"),
		Search:     query.Get("q"),
	})
	if err != nil {
		writeServiceError(w, "Failed to list attendance", err)
		return
	}

	writeJSON(w, entries, http.StatusOK)
}

// ManualRequest is an operator-entered attendance record
type ManualRequest struct {
	EmployeeID string `json:"employee_id"`
	Action     string `json:"action"`
	// Timestamp is ISO-8601, or a local "2006-01-02T15:04" as sent by
	// datetime-local inputs. Empty means now.
	Timestamp string `json:"timestamp,omitempty"`
}

// RecordManual appends an operator-entered record
func (h *AttendanceHandler) RecordManual(w http.ResponseWriter, r *http.Request) {
	var req ManualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	action, err := domain.ParseAction(req.Action)
	if err != nil {
		writeServiceError(w, "Invalid action", err)
		return
	}

	ts, err := h.parseTimestamp(req.Timestamp)
	if err != nil {
		writeError(w, "Invalid timestamp", err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.svc.RecordManual(r.Context(), service.ManualEntry{
		EmployeeID: req.EmployeeID,
		Action:     action,
		Timestamp:  ts,
	})
	if err != nil {
		writeServiceError(w, "Failed to record attendance", err)
		return
	}

	writeJSON(w, rec, http.StatusCreated)
}

func (h *AttendanceHandler) parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := domain.ParseTimestamp(value); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation("2006-01-02T15:04", value, h.svc.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
	}
	return ts, nil
}

// GetPresence returns who is present and absent on a day, today by default
func (h *AttendanceHandler) GetPresence(w http.ResponseWriter, r *http.Request) {
	day, ok := parseDay(r.URL.Query().Get("date"))
	if !ok {
		writeError(w, "Invalid date", "expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	presence, err := h.svc.Presence(r.Context(), day)
	if err != nil {
		writeServiceError(w, "Failed to compute presence", err)
		return
	}

	writeJSON(w, presence, http.StatusOK)
}

// GetReports returns worked hours per employee over a day range
func (h *AttendanceHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, ok := parseDay(query.Get("from"))
	if !ok {
		writeError(w, "Invalid from date", "expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, ok := parseDay(query.Get("to"))
	if !ok {
		writeError(w, "Invalid to date", "expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	report, err := h.svc.Reports(r.Context(), from, to, query.Get("employee_id"))
	if err != nil {
		writeServiceError(w, "Failed to build report", err)
		return
	}

	writeJSON(w, report, http.StatusOK)
}

// GetEnrollment returns the card capture state
func (h *AttendanceHandler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Enrollment(), http.StatusOK)
}

// StartEnrollment arms card capture
func (h *AttendanceHandler) StartEnrollment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.StartEnrollment(), http.StatusOK)
}

// CancelEnrollment disarms card capture
func (h *AttendanceHandler) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.CancelEnrollment(), http.StatusOK)
}
