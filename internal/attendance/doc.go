// Package attendance turns badge scans into attendance records.
//
// Engine applies the domain inference rule to the snapshots it is given,
// appends the resulting record through an Appender, and keeps a bounded
// most-recent-first log of every scan it saw, whatever the outcome.
//
// The engine does no locking of its own. Callers that can deliver two scans
// for the same employee at once must serialize them (see KeyedMutex);
// otherwise both scans may read the same latest record and append the same
// action.
package attendance
