package firestore

import (
	"fmt"
	"time"

	"badgeclock/internal/domain"
)

// employeeDoc is the stored shape of an employee, field names as the web
// dashboard writes them
type employeeDoc struct {
	FullName   string `firestore:"fullName"`
	Department string `firestore:"department"`
	Gender     string `firestore:"gender,omitempty"`
	CIN        string `firestore:"cin,omitempty"`
	CardUID    string `firestore:"cardUID"`
	DateAdded  string `firestore:"dateAdded"`
}

func employeeDocFrom(emp *domain.Employee) employeeDoc {
	ed := employeeDoc{
		FullName:   emp.FullName,
		Department: emp.Department,
		Gender:     emp.Gender,
		CIN:        emp.CIN,
		CardUID:    emp.CardUID,
	}
	if !emp.DateAdded.IsZero() {
		ed.DateAdded = domain.FormatTimestamp(emp.DateAdded)
	}
	return ed
}

// toDomain never fails on a bad dateAdded; the dashboard does not validate it
func (d employeeDoc) toDomain(id string) domain.Employee {
	emp := domain.Employee{
		ID:         id,
		FullName:   d.FullName,
		Department: d.Department,
		Gender:     d.Gender,
		CIN:        d.CIN,
		CardUID:    d.CardUID,
	}
	if added, err := domain.ParseTimestamp(d.DateAdded); err == nil {
		emp.DateAdded = added
	}
	return emp
}

// attendanceDoc is the stored shape of an attendance record
type attendanceDoc struct {
	EmployeeID string    `firestore:"employeeId"`
	Action     string    `firestore:"action"`
	Timestamp  string    `firestore:"timestamp"`
	IsManual   bool      `firestore:"isManual,omitempty"`
	AppendedAt time.Time `firestore:"appendedAt,serverTimestamp"`
}

func attendanceDocFrom(rec *domain.AttendanceRecord) attendanceDoc {
	return attendanceDoc{
		EmployeeID: rec.EmployeeID,
		Action:     string(rec.Action),
		Timestamp:  domain.FormatTimestamp(rec.Timestamp),
		IsManual:   rec.IsManual,
	}
}

func (d attendanceDoc) toDomain(id string) (domain.AttendanceRecord, error) {
	ts, err := domain.ParseTimestamp(d.Timestamp)
	if err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("parse timestamp of %s: %w", id, err)
	}
	return domain.AttendanceRecord{
		ID:         id,
		EmployeeID: d.EmployeeID,
		Action:     domain.Action(d.Action),
		Timestamp:  ts,
		IsManual:   d.IsManual,
	}, nil
}

// dayRange returns the lexical bounds [day, next day) of a calendar day
func dayRange(day string) (string, string, error) {
	t, err := time.Parse(domain.DayLayout, day)
	if err != nil {
		return "", "", fmt.Errorf("%w: bad day %q", domain.ErrInvalidInput, day)
	}
	return day, t.AddDate(0, 0, 1).Format(domain.DayLayout), nil
}

// timestampBounds narrows the day constraints of a filter to lexical
// timestamp bounds [lo, hi). An empty bound is open.
func timestampBounds(filter domain.AttendanceFilter) (string, string, error) {
	from, to := filter.From, filter.To
	if filter.Day != "" {
		if from == "" || filter.Day > from {
			from = filter.Day
		}
		if to == "" || filter.Day < to {
			to = filter.Day
		}
	}

	var lo, hi string
	if from != "" {
		if _, err := time.Parse(domain.DayLayout, from); err != nil {
			return "", "", fmt.Errorf("%w: bad day %q", domain.ErrInvalidInput, from)
		}
		lo = from
	}
	if to != "" {
		_, next, err := dayRange(to)
		if err != nil {
			return "", "", err
		}
		hi = next
	}
	return lo, hi, nil
}
