// Package firestore implements repository.Repository on Cloud Firestore.
//
// Employees live in one collection keyed by employee ID, attendance records
// in another keyed by record ID. Timestamps are stored as the ISO-8601
// strings of domain.TimestampLayout so a calendar day is a lexical range.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"badgeclock/internal/domain"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Config selects the Firebase project and collections
type Config struct {
	ProjectID            string
	CredentialsFile      string
	EmployeesCollection  string
	AttendanceCollection string
}

func (c *Config) applyDefaults() {
	if c.EmployeesCollection == "" {
		c.EmployeesCollection = "employees"
	}
	if c.AttendanceCollection == "" {
		c.AttendanceCollection = "attendance"
	}
}

// Repository implements repository.Repository using Firestore
type Repository struct {
	client     *firestore.Client
	employees  string
	attendance string
}

// New connects to the Firestore database of the configured Firebase project
func New(ctx context.Context, cfg Config) (*Repository, error) {
	cfg.applyDefaults()

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open firestore: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client, e.g. one pointed at the emulator
func NewWithClient(client *firestore.Client, cfg Config) *Repository {
	cfg.applyDefaults()
	return &Repository{
		client:     client,
		employees:  cfg.EmployeesCollection,
		attendance: cfg.AttendanceCollection,
	}
}

// ============================================================================
// Employees
// ============================================================================

// ListEmployees returns the whole directory ordered by name
func (r *Repository) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	iter := r.client.Collection(r.employees).Documents(ctx)
	defer iter.Stop()

	employees := []domain.Employee{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query employees: %w", err)
		}

		var ed employeeDoc
		if err := doc.DataTo(&ed); err != nil {
			return nil, fmt.Errorf("failed to decode employee %s: %w", doc.Ref.ID, err)
		}
		employees = append(employees, ed.toDomain(doc.Ref.ID))
	}

	sort.SliceStable(employees, func(i, j int) bool {
		if employees[i].FullName != employees[j].FullName {
			return employees[i].FullName < employees[j].FullName
		}
		return employees[i].ID < employees[j].ID
	})
	return employees, nil
}

// GetEmployee retrieves a single employee by ID
func (r *Repository) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	doc, err := r.client.Collection(r.employees).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	var ed employeeDoc
	if err := doc.DataTo(&ed); err != nil {
		return nil, fmt.Errorf("failed to decode employee %s: %w", id, err)
	}
	emp := ed.toDomain(id)
	return &emp, nil
}

// CreateEmployee inserts a new employee
func (r *Repository) CreateEmployee(ctx context.Context, emp *domain.Employee) error {
	if _, err := r.client.Collection(r.employees).Doc(emp.ID).Create(ctx, employeeDocFrom(emp)); err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// UpdateEmployee overwrites the editable fields of an employee
func (r *Repository) UpdateEmployee(ctx context.Context, emp *domain.Employee) error {
	ed := employeeDocFrom(emp)
	_, err := r.client.Collection(r.employees).Doc(emp.ID).Update(ctx, []firestore.Update{
		{Path: "fullName", Value: ed.FullName},
		{Path: "department", Value: ed.Department},
		{Path: "gender", Value: ed.Gender},
		{Path: "cin", Value: ed.CIN},
		{Path: "cardUID", Value: ed.CardUID},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("employee %s %w", emp.ID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return nil
}

// DeleteEmployee removes the employee's attendance records, then the employee.
// Firestore has no cascade, and the two steps are not atomic.
func (r *Repository) DeleteEmployee(ctx context.Context, id string) error {
	ref := r.client.Collection(r.employees).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("employee %s %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to get employee: %w", err)
	}

	iter := r.client.Collection(r.attendance).Where("employeeId", "==", id).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to query attendance of %s: %w", id, err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete attendance %s: %w", doc.Ref.ID, err)
		}
	}

	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

// ============================================================================
// Attendance
// ============================================================================

// AppendAttendance creates a new attendance document
func (r *Repository) AppendAttendance(ctx context.Context, rec *domain.AttendanceRecord) error {
	if _, err := r.client.Collection(r.attendance).Doc(rec.ID).Create(ctx, attendanceDocFrom(rec)); err != nil {
		return fmt.Errorf("failed to append attendance: %w", err)
	}
	return nil
}

// ListAttendance returns matching records ordered by server append time
func (r *Repository) ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	lo, hi, err := timestampBounds(filter)
	if err != nil {
		return nil, err
	}

	q := r.client.Collection(r.attendance).Query
	switch {
	case lo != "" || hi != "":
		if lo != "" {
			q = q.Where("timestamp", ">=", lo)
		}
		if hi != "" {
			q = q.Where("timestamp", "<", hi)
		}
	case filter.EmployeeID != "":
		q = q.Where("employeeId", "==", filter.EmployeeID)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []attendanceDoc
	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query attendance: %w", err)
		}
		var ad attendanceDoc
		if err := doc.DataTo(&ad); err != nil {
			return nil, fmt.Errorf("failed to decode attendance %s: %w", doc.Ref.ID, err)
		}
		docs = append(docs, ad)
		ids = append(ids, doc.Ref.ID)
	}

	return collectRecords(ids, docs, filter)
}

// Close closes the Firestore client
func (r *Repository) Close() error {
	return r.client.Close()
}

// collectRecords converts, filters and orders fetched documents
func collectRecords(ids []string, docs []attendanceDoc, filter domain.AttendanceFilter) ([]domain.AttendanceRecord, error) {
	if len(ids) != len(docs) {
		return nil, errors.New("document ids and bodies out of step")
	}

	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return docs[order[a]].AppendedAt.Before(docs[order[b]].AppendedAt)
	})

	records := []domain.AttendanceRecord{}
	for _, i := range order {
		rec, err := docs[i].toDomain(ids[i])
		if err != nil {
			return nil, err
		}
		if !filter.Matches(&rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
