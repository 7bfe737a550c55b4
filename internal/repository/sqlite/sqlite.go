package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"badgeclock/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if dbPath != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps in-memory databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT '',
		gender TEXT,
		cin TEXT,
		card_uid TEXT NOT NULL,
		date_added TEXT NOT NULL,
		updated_at TEXT
	);

	CREATE TABLE IF NOT EXISTS attendance (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		employee_id TEXT NOT NULL,
		action TEXT NOT NULL CHECK (action IN ('check-in', 'check-out')),
		timestamp TEXT NOT NULL,
		day TEXT NOT NULL,
		is_manual INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (employee_id) REFERENCES employees(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_employees_card ON employees(card_uid);
	CREATE INDEX IF NOT EXISTS idx_attendance_day ON attendance(day);
	CREATE INDEX IF NOT EXISTS idx_attendance_employee ON attendance(employee_id);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return err
	}

	// Columns added after the first release
	return r.addColumnIfNotExists("attendance", "is_manual", "INTEGER NOT NULL DEFAULT 0")
}

// addColumnIfNotExists adds a column to a table when an older schema lacks it
func (r *Repository) addColumnIfNotExists(table, column, definition string) error {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}

	found := false
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		if strings.EqualFold(name, column) {
			found = true
		}
	}
	rows.Close()

	if found {
		return nil
	}
	_, err = r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

// ============================================================================
// Employees
// ============================================================================

// ListEmployees returns the whole directory ordered by name
func (r *Repository) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY full_name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		var row employeeRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		emp, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}
	return employees, nil
}

// GetEmployee retrieves a single employee by ID
func (r *Repository) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	var row employeeRow
	err := r.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id).
		Scan(row.scanArgs()...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}
	return row.toDomain()
}

// CreateEmployee inserts a new employee
func (r *Repository) CreateEmployee(ctx context.Context, emp *domain.Employee) error {
	args := append(employeeInsertArgs(emp), nowStamp())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert employee: %w", err)
	}
	return nil
}

// UpdateEmployee overwrites the editable fields of an employee
func (r *Repository) UpdateEmployee(ctx context.Context, emp *domain.Employee) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE employees SET
			full_name = ?,
			department = ?,
			gender = ?,
			cin = ?,
			card_uid = ?,
			updated_at = ?
		WHERE id = ?
	`, emp.FullName, emp.Department, stringToNull(emp.Gender), stringToNull(emp.CIN), emp.CardUID, nowStamp(), emp.ID)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("employee %s %w", emp.ID, domain.ErrNotFound)
	}
	return nil
}

// DeleteEmployee removes an employee together with its attendance records
func (r *Repository) DeleteEmployee(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Explicit so the cascade does not depend on the foreign_keys pragma
	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance WHERE employee_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete attendance of %s: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("employee %s %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ============================================================================
// Attendance
// ============================================================================

// AppendAttendance inserts a new attendance record
func (r *Repository) AppendAttendance(ctx context.Context, rec *domain.AttendanceRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (id, employee_id, action, timestamp, day, is_manual)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.EmployeeID, string(rec.Action), domain.FormatTimestamp(rec.Timestamp), rec.Day(), boolToInt(rec.IsManual))
	if err != nil {
		return fmt.Errorf("failed to insert attendance: %w", err)
	}
	return nil
}

// ListAttendance returns matching records in insertion order
func (r *Repository) ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	where, args := attendanceWhere(filter)
	rows, err := r.db.QueryContext(ctx, `SELECT `+attendanceColumns+` FROM attendance`+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	records := []domain.AttendanceRecord{}
	for rows.Next() {
		var row attendanceRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		rec, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
