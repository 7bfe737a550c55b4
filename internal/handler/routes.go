package handler

import "net/http"

// NewRouter registers every API route
func NewRouter(attendance *AttendanceHandler, employees *EmployeeHandler, events http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", Health)

	// Operator screen
	mux.HandleFunc("GET /api/status", attendance.GetStatus)
	mux.HandleFunc("GET /api/scans/recent", attendance.RecentScans)
	mux.HandleFunc("POST /api/scans", attendance.RecordScan)

	// Employee directory
	mux.HandleFunc("GET /api/employees", employees.ListEmployees)
	mux.HandleFunc("POST /api/employees", employees.CreateEmployee)
	mux.HandleFunc("POST /api/employees/import", employees.ImportRoster)
	mux.HandleFunc("GET /api/employees/export", employees.ExportRoster)
	mux.HandleFunc("GET /api/employees/{id}", employees.GetEmployee)
	mux.HandleFunc("PUT /api/employees/{id}", employees.UpdateEmployee)
	mux.HandleFunc("DELETE /api/employees/{id}", employees.DeleteEmployee)

	// Attendance history and presence
	mux.HandleFunc("GET /api/attendance", attendance.ListAttendance)
	mux.HandleFunc("POST /api/attendance/manual", attendance.RecordManual)
	mux.HandleFunc("GET /api/presence", attendance.GetPresence)
	mux.HandleFunc("GET /api/reports", attendance.GetReports)

	// Card enrollment
	mux.HandleFunc("GET /api/enrollment", attendance.GetEnrollment)
	mux.HandleFunc("POST /api/enrollment", attendance.StartEnrollment)
	mux.HandleFunc("DELETE /api/enrollment", attendance.CancelEnrollment)

	// SSE events endpoint
	if events != nil {
		mux.Handle("GET /events", events)
	}

	return mux
}
