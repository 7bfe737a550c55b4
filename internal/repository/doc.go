// Package repository defines the data access interfaces for badgeclock.
//
// The Repository interface covers the employee directory and the
// append-only attendance log. Two implementations exist:
//
// - sqlite: a local database file, the default
// - firestore: a Cloud Firestore project, for deployments that share the
//   store with other dashboards
//
// # Append-only records
//
// Attendance records are never updated. They are removed only when their
// employee is deleted. Listings return records in insertion order so the
// inference tie-break stays deterministic.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
