// Package service implements the business logic of badgeclock.
//
// AttendanceService consumes badge scans (it is the scanner.Handler of the
// reader connection), serializes them per employee, runs the attendance
// engine against the directory and current-day snapshots, and keeps the
// operator status line. It also accepts manual entries, serves the
// attendance history and the presence summary, and owns card enrollment.
//
// DirectoryService manages employees. Badge uniqueness is enforced here,
// at create and edit time; the store itself accepts duplicates.
//
// # Event System
//
// Both services publish events via EventBus for real-time updates to
// connected clients via Server-Sent Events (SSE).
package service
