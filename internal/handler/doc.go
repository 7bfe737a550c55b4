// Package handler implements the HTTP/JSON API of badgeclock.
//
// AttendanceHandler serves the operator screen (status line, recent scans,
// HTTP scans), the attendance history, manual entries, the presence summary
// and card enrollment. EmployeeHandler serves the directory and roster
// import/export.
//
// Errors are returned as JSON with {error, details} and a status code
// derived from the domain sentinel errors: unknown badge and missing
// records are 404, ambiguous or duplicate badges 409, invalid input 400,
// store failures 502.
package handler
