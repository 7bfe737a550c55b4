package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"badgeclock/internal/codec"
	"badgeclock/internal/domain"
	"badgeclock/internal/service"
)

// EmployeeHandler handles employee directory requests
type EmployeeHandler struct {
	svc *service.DirectoryService
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(svc *service.DirectoryService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// ListEmployees returns the directory, by name or with ?sort=recent&limit=N
func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := service.EmployeeQuery{Sort: query.Get("sort")}
	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, "Invalid limit", "expected a non-negative integer", http.StatusBadRequest)
			return
		}
		q.Limit = n
	}

	employees, err := h.svc.QueryEmployees(r.Context(), q)
	if err != nil {
		writeServiceError(w, "Failed to list employees", err)
		return
	}

	writeJSON(w, employees, http.StatusOK)
}

// GetEmployee returns a single employee
func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.svc.GetEmployee(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "Failed to get employee", err)
		return
	}

	writeJSON(w, emp, http.StatusOK)
}

// CreateEmployee creates a new employee
func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var emp domain.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.CreateEmployee(r.Context(), &emp); err != nil {
		writeServiceError(w, "Failed to create employee", err)
		return
	}

	writeJSON(w, emp, http.StatusCreated)
}

// UpdateEmployee replaces an existing employee
func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var emp domain.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateEmployee(r.Context(), r.PathValue("id"), &emp); err != nil {
		writeServiceError(w, "Failed to update employee", err)
		return
	}

	writeJSON(w, emp, http.StatusOK)
}

// DeleteEmployee deletes an employee and their attendance records
func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEmployee(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, "Failed to delete employee", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportRoster upserts a roster; YAML unless the body is sent as JSON
func (h *EmployeeHandler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := codec.ForContentType(r.Header.Get("Content-Type")).Parse(r.Body)
	if err != nil {
		writeError(w, "Invalid roster", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.ImportRoster(r.Context(), roster)
	if err != nil {
		writeServiceError(w, "Failed to import roster", err)
		return
	}

	writeJSON(w, result, http.StatusOK)
}

// ExportRoster writes the directory as a roster file
func (h *EmployeeHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, "Invalid format", err.Error(), http.StatusBadRequest)
		return
	}

	employees, err := h.svc.ListEmployees(r.Context())
	if err != nil {
		writeServiceError(w, "Failed to list employees", err)
		return
	}

	contentType := "application/x-yaml"
	if c.Format() == "json" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=roster.%s", c.Format()))

	if err := c.Export(employees, w); err != nil {
		log.Printf("Failed to export roster: %v", err)
		// Can't write error response as we already set headers
		return
	}
}
