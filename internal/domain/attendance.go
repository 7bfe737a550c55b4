package domain

import (
	"fmt"
	"time"
)

// Action tags an attendance record as an arrival or a departure
type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

// Complement returns the action that must follow a
func (a Action) Complement() Action {
	if a == ActionCheckIn {
		return ActionCheckOut
	}
	return ActionCheckIn
}

// Valid reports whether a is one of the two known actions
func (a Action) Valid() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

// Verb returns the past-tense phrase used in operator messages
func (a Action) Verb() string {
	if a == ActionCheckOut {
		return "checked out"
	}
	return "checked in"
}

// ParseAction validates an action coming from outside the process
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
	return a, nil
}

// TimestampLayout is the ISO-8601 form records are stored in.
// Fixed millisecond precision keeps stored strings lexically ordered.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DayLayout is the calendar-day prefix of TimestampLayout
const DayLayout = "2006-01-02"

// DayKey returns the calendar day of t in t's own location
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// FormatTimestamp renders t in the stored ISO-8601 form
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp accepts the stored form and plain RFC 3339
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// AttendanceRecord is an append-only arrival or departure event
type AttendanceRecord struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Action     Action    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	IsManual   bool      `json:"is_manual,omitempty"`
}

// Day returns the calendar day the record belongs to
func (r *AttendanceRecord) Day() string {
	return DayKey(r.Timestamp)
}

// AttendanceFilter narrows attendance listings. Empty fields match everything.
// From and To bound an inclusive range of day keys and combine with Day.
type AttendanceFilter struct {
	Day        string
	From       string
	To         string
	EmployeeID string
}

// InDayRange reports whether day lies in the inclusive range [from, to].
// An empty bound is open. Day keys order lexically.
func InDayRange(day, from, to string) bool {
	if from != "" && day < from {
		return false
	}
	if to != "" && day > to {
		return false
	}
	return true
}

// Matches reports whether r passes the filter
func (f AttendanceFilter) Matches(r *AttendanceRecord) bool {
	day := r.Day()
	if f.Day != "" && day != f.Day {
		return false
	}
	if !InDayRange(day, f.From, f.To) {
		return false
	}
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	return true
}
