package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"badgeclock/internal/domain"
	"badgeclock/internal/repository"
	"badgeclock/internal/snapshot"

	"github.com/google/uuid"
)

// Snapshots bundles the read-through caches shared by the services
type Snapshots struct {
	Directory *snapshot.Cache[[]domain.Employee]
	Today     *snapshot.DayRecords
}

// NewSnapshots creates the directory and current-day caches over repo
func NewSnapshots(repo repository.Repository, directoryTTL, recordsTTL time.Duration) *Snapshots {
	return &Snapshots{
		Directory: snapshot.New[[]domain.Employee](repo.ListEmployees, directoryTTL),
		Today: snapshot.NewDayRecords(func(ctx context.Context, day string) ([]domain.AttendanceRecord, error) {
			return repo.ListAttendance(ctx, domain.AttendanceFilter{Day: day})
		}, recordsTTL),
	}
}

// DirectoryService provides business logic for the employee directory
type DirectoryService struct {
	repo      repository.Repository
	snapshots *Snapshots
	eventBus  *EventBus
	now       func() time.Time
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(repo repository.Repository, snapshots *Snapshots, eventBus *EventBus) *DirectoryService {
	return &DirectoryService{
		repo:      repo,
		snapshots: snapshots,
		eventBus:  eventBus,
		now:       time.Now,
	}
}

// ListEmployees returns the whole directory ordered by name
func (s *DirectoryService) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.ListEmployees(ctx)
}

// Directory listing orders
const (
	SortByName   = "name"
	SortByRecent = "recent"
)

// EmployeeQuery shapes a directory listing
type EmployeeQuery struct {
	// Sort is SortByName (default) or SortByRecent, newest additions first
	Sort string
	// Limit caps the result; zero means everything
	Limit int
}

// QueryEmployees returns the directory in the requested order
func (s *DirectoryService) QueryEmployees(ctx context.Context, q EmployeeQuery) ([]domain.Employee, error) {
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", domain.ErrInvalidInput, q.Limit)
	}
	switch q.Sort {
	case "", SortByName, SortByRecent:
	default:
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidInput, q.Sort)
	}

	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	if q.Sort == SortByRecent {
		domain.SortByDateAdded(employees)
	}
	if q.Limit > 0 && len(employees) > q.Limit {
		employees = employees[:q.Limit]
	}
	return employees, nil
}

// GetEmployee retrieves a single employee by ID
func (s *DirectoryService) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	emp, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %s %w", id, domain.ErrNotFound)
	}
	return emp, nil
}

// CreateEmployee adds an employee, refusing a badge held by someone else
func (s *DirectoryService) CreateEmployee(ctx context.Context, emp *domain.Employee) error {
	emp.Normalize()
	if err := emp.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return err
	}
	if domain.BadgeTaken(existing, emp.CardUID, "") {
		return fmt.Errorf("card %s: %w", emp.CardUID, domain.ErrDuplicateBadge)
	}

	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	if emp.DateAdded.IsZero() {
		emp.DateAdded = s.now()
	}

	if err := s.repo.CreateEmployee(ctx, emp); err != nil {
		return err
	}
	s.snapshots.Directory.Invalidate()

	s.eventBus.Publish(Event{
		Type:    EventEmployeeCreated,
		Payload: emp,
	})

	return nil
}

// UpdateEmployee replaces the editable fields of employee id
func (s *DirectoryService) UpdateEmployee(ctx context.Context, id string, emp *domain.Employee) error {
	current, err := s.GetEmployee(ctx, id)
	if err != nil {
		return err
	}

	emp.ID = id
	emp.DateAdded = current.DateAdded
	emp.Normalize()
	if err := emp.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return err
	}
	if domain.BadgeTaken(existing, emp.CardUID, id) {
		return fmt.Errorf("card %s: %w", emp.CardUID, domain.ErrDuplicateBadge)
	}

	if err := s.repo.UpdateEmployee(ctx, emp); err != nil {
		return err
	}
	s.snapshots.Directory.Invalidate()

	s.eventBus.Publish(Event{
		Type:    EventEmployeeUpdated,
		Payload: emp,
	})

	return nil
}

// DeleteEmployee removes an employee and all of their attendance records
func (s *DirectoryService) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	s.snapshots.Directory.Invalidate()
	s.snapshots.Today.Invalidate()

	s.eventBus.Publish(Event{
		Type:    EventEmployeeDeleted,
		Payload: map[string]string{"employee_id": id},
	})

	return nil
}

// ImportResult represents the result of a roster import
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportRoster upserts employees by badge identifier.
//
// An entry with the ID of an existing employee updates that employee.
// Otherwise an entry whose badge is already held updates the holder, and
// anything else is created. Invalid entries and badge conflicts are
// skipped and reported.
func (s *DirectoryService) ImportRoster(ctx context.Context, roster []domain.Employee) (*ImportResult, error) {
	existing, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	skip := func(i int, emp domain.Employee, reason error) {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("entry %d (%s): %v", i+1, emp.FullName, reason))
	}

	for i := range roster {
		emp := roster[i]
		emp.Normalize()
		if err := emp.Validate(); err != nil {
			skip(i, emp, err)
			continue
		}

		target := s.upsertTarget(existing, &emp)
		if target == nil {
			if emp.ID == "" {
				emp.ID = uuid.NewString()
			}
			if emp.DateAdded.IsZero() {
				emp.DateAdded = s.now()
			}
			if err := s.repo.CreateEmployee(ctx, &emp); err != nil {
				return result, fmt.Errorf("import %s: %w", emp.FullName, err)
			}
			existing = append(existing, emp)
			result.Created++
			continue
		}

		if domain.BadgeTaken(existing, emp.CardUID, target.ID) {
			skip(i, emp, domain.ErrDuplicateBadge)
			continue
		}

		emp.ID = target.ID
		emp.DateAdded = target.DateAdded
		if *target == emp {
			continue
		}
		if err := s.repo.UpdateEmployee(ctx, &emp); err != nil {
			return result, fmt.Errorf("import %s: %w", emp.FullName, err)
		}
		*target = emp
		result.Updated++
	}

	if result.Created > 0 || result.Updated > 0 {
		s.snapshots.Directory.Invalidate()
	}
	log.Printf("Roster import: %d created, %d updated, %d skipped", result.Created, result.Updated, result.Skipped)

	s.eventBus.Publish(Event{
		Type:    EventRosterImported,
		Payload: result,
	})

	return result, nil
}

// upsertTarget finds the existing employee a roster entry refers to
func (s *DirectoryService) upsertTarget(existing []domain.Employee, emp *domain.Employee) *domain.Employee {
	if emp.ID != "" {
		if target := domain.FindEmployee(existing, emp.ID); target != nil {
			return target
		}
	}
	for i := range existing {
		if existing[i].HoldsBadge(emp.CardUID) {
			return &existing[i]
		}
	}
	return nil
}
