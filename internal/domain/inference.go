package domain

import "time"

// Decision is the outcome of inferring a scan against a snapshot
type Decision struct {
	Employee Employee          `json:"employee"`
	Action   Action            `json:"action"`
	Previous *AttendanceRecord `json:"previous,omitempty"` // latest record of the day, nil on first scan
}

// ResolveBadge finds the single employee holding badgeID.
// Duplicate holders are a directory integrity fault and are never
// resolved by picking one of them.
func ResolveBadge(badgeID string, employees []Employee) (Employee, error) {
	badgeID = NormalizeBadge(badgeID)
	if badgeID == "" {
		return Employee{}, ErrEmptyBadge
	}

	var (
		match   Employee
		matches int
	)
	for i := range employees {
		if employees[i].HoldsBadge(badgeID) {
			match = employees[i]
			matches++
		}
	}

	switch matches {
	case 0:
		return Employee{}, ErrUnknownBadge
	case 1:
		return match, nil
	default:
		return Employee{}, ErrAmbiguousIdentity
	}
}

// LatestRecord returns the employee's last record on day, or nil.
// Records are expected in insertion order; on equal timestamps the later
// one in the slice wins.
func LatestRecord(employeeID, day string, records []AttendanceRecord) *AttendanceRecord {
	var latest *AttendanceRecord
	for i := range records {
		r := &records[i]
		if r.EmployeeID != employeeID || r.Day() != day {
			continue
		}
		if latest == nil || !r.Timestamp.Before(latest.Timestamp) {
			latest = r
		}
	}
	return latest
}

// NextAction returns the action that keeps the day alternating
func NextAction(latest *AttendanceRecord) Action {
	if latest == nil {
		return ActionCheckIn
	}
	return latest.Action.Complement()
}

// Infer decides what a scan of badgeID at now means.
//
// Only records on the calendar day of now count: the first scan of a day is
// always a check-in, even when the previous day ended with a check-in.
// Scans are never debounced, so a double tap produces a check-in followed by
// a check-out.
func Infer(badgeID string, now time.Time, employees []Employee, records []AttendanceRecord) (Decision, error) {
	emp, err := ResolveBadge(badgeID, employees)
	if err != nil {
		return Decision{}, err
	}

	latest := LatestRecord(emp.ID, DayKey(now), records)

	d := Decision{
		Employee: emp,
		Action:   NextAction(latest),
	}
	if latest != nil {
		prev := *latest
		d.Previous = &prev
	}
	return d, nil
}
