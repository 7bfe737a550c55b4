package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"badgeclock/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt stores booleans the way SQLite expects them
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a column to employees or attendance:
// 1. Add the field to the row struct below
// 2. APPEND it to scanArgs() and to the matching columns constant
// 3. Map it in toDomain() and in the insert args
// 4. Add a migration in sqlite.go migrate() using addColumnIfNotExists()
//
// CRITICAL: column order must match between the columns constant and
// scanArgs().

// ============================================================================
// Employee Row Scanner
// ============================================================================

const employeeColumns = `id, full_name, department, gender, cin, card_uid, date_added`

type employeeRow struct {
	ID         string
	FullName   string
	Department string
	Gender     sql.NullString
	CIN        sql.NullString
	CardUID    string
	DateAdded  string
}

// scanArgs MUST match employeeColumns order exactly
func (r *employeeRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,         // 1
		&r.FullName,   // 2
		&r.Department, // 3
		&r.Gender,     // 4
		&r.CIN,        // 5
		&r.CardUID,    // 6
		&r.DateAdded,  // 7
	}
}

func (r *employeeRow) toDomain() (*domain.Employee, error) {
	emp := &domain.Employee{
		ID:         r.ID,
		FullName:   r.FullName,
		Department: r.Department,
		Gender:     nullToString(r.Gender),
		CIN:        nullToString(r.CIN),
		CardUID:    r.CardUID,
	}
	if r.DateAdded != "" {
		added, err := domain.ParseTimestamp(r.DateAdded)
		if err != nil {
			return nil, fmt.Errorf("parse date_added of %s: %w", r.ID, err)
		}
		emp.DateAdded = added
	}
	return emp, nil
}

func employeeInsertArgs(emp *domain.Employee) []interface{} {
	return []interface{}{
		emp.ID,
		emp.FullName,
		emp.Department,
		stringToNull(emp.Gender),
		stringToNull(emp.CIN),
		emp.CardUID,
		domain.FormatTimestamp(emp.DateAdded),
	}
}

// ============================================================================
// Attendance Row Scanner
// ============================================================================

const attendanceColumns = `id, employee_id, action, timestamp, is_manual`

type attendanceRow struct {
	ID         string
	EmployeeID string
	Action     string
	Timestamp  string
	IsManual   sql.NullInt64
}

// scanArgs MUST match attendanceColumns order exactly
func (r *attendanceRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,         // 1
		&r.EmployeeID, // 2
		&r.Action,     // 3
		&r.Timestamp,  // 4
		&r.IsManual,   // 5
	}
}

func (r *attendanceRow) toDomain() (*domain.AttendanceRecord, error) {
	ts, err := domain.ParseTimestamp(r.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp of %s: %w", r.ID, err)
	}
	return &domain.AttendanceRecord{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Action:     domain.Action(r.Action),
		Timestamp:  ts,
		IsManual:   r.IsManual.Valid && r.IsManual.Int64 != 0,
	}, nil
}

// attendanceWhere builds the WHERE clause for a filter
func attendanceWhere(filter domain.AttendanceFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Day != "" {
		conds = append(conds, "day = ?")
		args = append(args, filter.Day)
	}
	if filter.From != "" {
		conds = append(conds, "day >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conds = append(conds, "day <= ?")
		args = append(args, filter.To)
	}
	if filter.EmployeeID != "" {
		conds = append(conds, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// nowStamp is the updated_at value written on every change
func nowStamp() string {
	return domain.FormatTimestamp(time.Now().UTC())
}
