// Package domain defines the core types of the badgeclock attendance service.
//
// This package holds the employee directory entities, the append-only
// attendance records, and the check-in/check-out inference rule that turns a
// badge scan into the next record of an employee's day.
//
// # Core Types
//
// Employee is a directory entry identified by an opaque badge identifier
// (the UID burned into an RFID card).
//
// AttendanceRecord is an immutable event carrying an Action (check-in or
// check-out) and a timestamp. Records are grouped into calendar days by the
// date prefix of their timestamp.
//
// # Inference
//
// Infer resolves a badge against a directory snapshot and picks the action
// that keeps the employee's records for the day strictly alternating,
// starting with check-in. Each calendar day starts over, so a scan after
// midnight is always a check-in.
//
// # Design Principles
//
// - No database or transport dependencies
// - Snapshots are plain slices passed in by the caller
// - Sentinel errors for every scan outcome that is not a record
package domain
