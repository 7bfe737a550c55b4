package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"badgeclock/internal/attendance"
	"badgeclock/internal/domain"
	"badgeclock/internal/repository"
	"badgeclock/internal/scanner"
)

// AttendanceService turns scans and manual entries into attendance records.
// It implements scanner.Handler.
type AttendanceService struct {
	repo       repository.Repository
	engine     *attendance.Engine
	snapshots  *Snapshots
	locks      *attendance.KeyedMutex
	status     *StatusBoard
	enrollment *enrollmentDesk
	eventBus   *EventBus
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(repo repository.Repository, engine *attendance.Engine, snapshots *Snapshots, eventBus *EventBus) *AttendanceService {
	return &AttendanceService{
		repo:       repo,
		engine:     engine,
		snapshots:  snapshots,
		locks:      attendance.NewKeyedMutex(),
		status:     NewStatusBoard(),
		enrollment: &enrollmentDesk{},
		eventBus:   eventBus,
	}
}

// ScanResult describes what a scan did
type ScanResult struct {
	Record     *domain.AttendanceRecord `json:"record,omitempty"`
	Employee   *domain.Employee         `json:"employee,omitempty"`
	Enrollment *Enrollment              `json:"enrollment,omitempty"`
	Status     Status                   `json:"status"`
}

// HandleScan records a scan from the reader. Errors end here: they are
// reported through the status line, the recent-scan log and the event feed.
func (s *AttendanceService) HandleScan(ctx context.Context, scan scanner.Scan) {
	if _, err := s.RecordScan(ctx, scan.BadgeID); err != nil {
		log.Printf("Scan %q: %v", scan.BadgeID, err)
	}
}

// HandleState translates a reader transition into the status line
func (s *AttendanceService) HandleState(state scanner.State, err error) {
	if err != nil {
		log.Printf("Badge reader %s: %v", state, err)
	}
	s.publishStatus(s.status.SetConnection(state))
}

// RecordScan processes one badge scan.
//
// While card enrollment is armed the scan is captured instead of recorded.
// Otherwise scans of the same employee are serialized so each one sees the
// record appended by the previous one.
func (s *AttendanceService) RecordScan(ctx context.Context, badgeID string) (*ScanResult, error) {
	badgeID = domain.NormalizeBadge(badgeID)
	if badgeID == "" {
		return nil, domain.ErrEmptyBadge
	}

	employees, err := s.snapshots.Directory.Get(ctx)
	if err != nil {
		s.rejectUnloaded(badgeID, nil, s.engine.Now(), "failed to load employees")
		return nil, fmt.Errorf("%w: load employees: %v", domain.ErrPersistence, err)
	}

	if enrollment, captured := s.enrollment.capture(badgeID, employees, s.engine.Now()); captured {
		status := s.status.SetMessage(enrollment.Message, "")
		s.publishStatus(status)
		s.eventBus.Publish(Event{Type: EventEnrollmentUpdated, Payload: enrollment})
		return &ScanResult{Enrollment: &enrollment, Status: status}, nil
	}

	unlock := s.locks.Lock(lockKey(badgeID, employees))
	defer unlock()

	// Read the clock once, under the lock: the same reading picks the
	// snapshot day and stamps the record, and stamps follow lock order.
	now := s.engine.Now()
	day := domain.DayKey(now)
	today, err := s.snapshots.Today.Get(ctx, day)
	if err != nil {
		s.rejectUnloaded(badgeID, employees, now, "failed to load today's attendance")
		return nil, fmt.Errorf("%w: load attendance of %s: %v", domain.ErrPersistence, day, err)
	}

	rec, err := s.engine.InferAndRecordAt(ctx, now, badgeID, employees, today)
	if err != nil {
		status := s.status.SetMessage(rejectionMessage(badgeID, employees, err), domain.OutcomeOf(err))
		s.publishStatus(status)
		s.publishRejected(badgeID, status)
		return nil, err
	}

	s.snapshots.Today.Append(*rec)

	emp := domain.FindEmployee(employees, rec.EmployeeID)
	status := s.status.SetMessage(fmt.Sprintf("employee %s %s", emp.FullName, rec.Action.Verb()), domain.OutcomeRecorded)
	s.publishStatus(status)
	s.eventBus.Publish(Event{
		Type:    EventAttendanceRecorded,
		Payload: AttendanceEntry{AttendanceRecord: *rec, EmployeeName: emp.FullName, Department: emp.Department},
	})

	return &ScanResult{Record: rec, Employee: emp, Status: status}, nil
}

// rejectUnloaded reports a scan that failed before inference because a
// snapshot could not be loaded. employees may be nil.
func (s *AttendanceService) rejectUnloaded(badgeID string, employees []domain.Employee, now time.Time, message string) {
	entry := domain.ScanEntry{
		BadgeID:   badgeID,
		Outcome:   domain.OutcomePersistenceFailure,
		ScannedAt: now,
	}
	if emp, err := domain.ResolveBadge(badgeID, employees); err == nil {
		entry.EmployeeID = emp.ID
		entry.EmployeeName = emp.FullName
		entry.Department = emp.Department
	}
	s.engine.Recent().Add(entry)

	status := s.status.SetMessage(message, domain.OutcomePersistenceFailure)
	s.publishStatus(status)
	s.publishRejected(badgeID, status)
}

func (s *AttendanceService) publishRejected(badgeID string, status Status) {
	s.eventBus.Publish(Event{
		Type: EventScanRejected,
		Payload: map[string]string{
			"card_uid": badgeID,
			"outcome":  string(status.Outcome),
			"message":  status.Message,
		},
	})
}

// lockKey serializes on the employee when the badge resolves to exactly one
func lockKey(badgeID string, employees []domain.Employee) string {
	if emp, err := domain.ResolveBadge(badgeID, employees); err == nil {
		return emp.ID
	}
	return "badge:" + badgeID
}

func rejectionMessage(badgeID string, employees []domain.Employee, err error) string {
	if errors.Is(err, domain.ErrPersistence) {
		if emp, resolveErr := domain.ResolveBadge(badgeID, employees); resolveErr == nil {
			return fmt.Sprintf("failed to save attendance for %s", emp.FullName)
		}
	}
	switch {
	case errors.Is(err, domain.ErrUnknownBadge):
		return domain.ErrUnknownBadge.Error()
	case errors.Is(err, domain.ErrAmbiguousIdentity):
		return domain.ErrAmbiguousIdentity.Error()
	}
	return err.Error()
}

// ManualEntry is an operator-entered attendance record
type ManualEntry struct {
	EmployeeID string        `json:"employee_id"`
	Action     domain.Action `json:"action"`
	// Timestamp defaults to now when zero
	Timestamp time.Time `json:"timestamp"`
}

// RecordManual appends an operator-entered record without inference
func (s *AttendanceService) RecordManual(ctx context.Context, entry ManualEntry) (*domain.AttendanceRecord, error) {
	if !entry.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAction, entry.Action)
	}
	if entry.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employee_id required", domain.ErrInvalidInput)
	}

	emp, err := s.repo.GetEmployee(ctx, entry.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %s %w", entry.EmployeeID, domain.ErrNotFound)
	}

	unlock := s.locks.Lock(emp.ID)
	defer unlock()

	now := s.engine.Now()
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = now
	}
	// the calendar day follows the service time zone, not the caller's
	ts = ts.In(now.Location())

	rec := &domain.AttendanceRecord{
		ID:         s.engine.NewID(),
		EmployeeID: emp.ID,
		Action:     entry.Action,
		Timestamp:  ts,
		IsManual:   true,
	}
	if err := s.repo.AppendAttendance(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	s.snapshots.Today.Append(*rec)

	log.Printf("Manual %s recorded for %s at %s", rec.Action, emp.FullName, domain.FormatTimestamp(rec.Timestamp))
	s.eventBus.Publish(Event{
		Type:    EventAttendanceRecorded,
		Payload: AttendanceEntry{AttendanceRecord: *rec, EmployeeName: emp.FullName, Department: emp.Department},
	})

	return rec, nil
}

// AttendanceQuery filters the attendance history
type AttendanceQuery struct {
	Day        string
	EmployeeID string
	// Search matches employee names case-insensitively
	Search string
}

// AttendanceEntry is a record joined with its employee
type AttendanceEntry struct {
	domain.AttendanceRecord
	EmployeeName string `json:"employee_name"`
	Department   string `json:"department"`
}

// ListAttendance returns matching records, newest first
func (s *AttendanceService) ListAttendance(ctx context.Context, q AttendanceQuery) ([]AttendanceEntry, error) {
	records, err := s.repo.ListAttendance(ctx, domain.AttendanceFilter{Day: q.Day, EmployeeID: q.EmployeeID})
	if err != nil {
		return nil, err
	}
	employees, err := s.snapshots.Directory.Get(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Employee, len(employees))
	for i := range employees {
		byID[employees[i].ID] = &employees[i]
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	entries := make([]AttendanceEntry, 0, len(records))
	for _, rec := range records {
		entry := AttendanceEntry{AttendanceRecord: rec}
		if emp, ok := byID[rec.EmployeeID]; ok {
			entry.EmployeeName = emp.FullName
			entry.Department = emp.Department
		}
		if search != "" && !strings.Contains(strings.ToLower(entry.EmployeeName), search) {
			continue
		}
		entries = append(entries, entry)
	}

	// records arrive in insertion order; keep it for equal timestamps
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

// Presence summarizes who showed up on day, today when empty
func (s *AttendanceService) Presence(ctx context.Context, day string) (*domain.Presence, error) {
	today := domain.DayKey(s.engine.Now())
	if day == "" {
		day = today
	}

	employees, err := s.snapshots.Directory.Get(ctx)
	if err != nil {
		return nil, err
	}

	var records []domain.AttendanceRecord
	if day == today {
		records, err = s.snapshots.Today.Get(ctx, day)
	} else {
		records, err = s.repo.ListAttendance(ctx, domain.AttendanceFilter{Day: day})
	}
	if err != nil {
		return nil, err
	}

	return domain.BuildPresence(day, employees, records), nil
}

// EmployeeReport is one employee's line in a work report
type EmployeeReport struct {
	Employee   domain.Employee `json:"employee"`
	DaysWorked int             `json:"days_worked"`
	WorkHours  float64         `json:"work_hours"`
	Records    int             `json:"records"`
}

// Report totals worked hours per employee over an inclusive day range
type Report struct {
	From       string           `json:"from,omitempty"`
	To         string           `json:"to,omitempty"`
	TotalHours float64          `json:"total_hours"`
	Employees  []EmployeeReport `json:"employees"`
}

// Reports computes worked hours for every employee, or only employeeID
// when set, over [from, to]. Empty bounds are open. Employees without
// records in the range appear with zero totals.
func (s *AttendanceService) Reports(ctx context.Context, from, to, employeeID string) (*Report, error) {
	for _, day := range []string{from, to} {
		if day == "" {
			continue
		}
		if _, err := time.Parse(domain.DayLayout, day); err != nil {
			return nil, fmt.Errorf("%w: bad day %q", domain.ErrInvalidInput, day)
		}
	}
	if from != "" && to != "" && from > to {
		return nil, fmt.Errorf("%w: range starts %s after it ends %s", domain.ErrInvalidInput, from, to)
	}

	employees, err := s.snapshots.Directory.Get(ctx)
	if err != nil {
		return nil, err
	}
	if employeeID != "" {
		emp := domain.FindEmployee(employees, employeeID)
		if emp == nil {
			return nil, fmt.Errorf("employee %s %w", employeeID, domain.ErrNotFound)
		}
		employees = []domain.Employee{*emp}
	}

	records, err := s.repo.ListAttendance(ctx, domain.AttendanceFilter{From: from, To: to, EmployeeID: employeeID})
	if err != nil {
		return nil, err
	}

	work := make(map[string]domain.EmployeeWork)
	for _, w := range domain.WorkSummary(records, from, to) {
		work[w.EmployeeID] = w
	}

	report := &Report{From: from, To: to, Employees: make([]EmployeeReport, 0, len(employees))}
	var total time.Duration
	for _, emp := range employees {
		w := work[emp.ID]
		total += w.Worked
		report.Employees = append(report.Employees, EmployeeReport{
			Employee:   emp,
			DaysWorked: w.DaysWorked,
			WorkHours:  w.WorkHours,
			Records:    w.Records,
		})
	}
	report.TotalHours = domain.Hours(total)
	return report, nil
}

// Location returns the time zone that decides calendar days
func (s *AttendanceService) Location() *time.Location {
	return s.engine.Now().Location()
}

// Status returns the operator status line
func (s *AttendanceService) Status() Status {
	return s.status.Get()
}

// RecentScans returns the recent-scan log, newest first
func (s *AttendanceService) RecentScans() []domain.ScanEntry {
	return s.engine.Recent().List()
}

// StartEnrollment arms card capture: the next scan fills a new badge
func (s *AttendanceService) StartEnrollment() Enrollment {
	enrollment := s.enrollment.start(s.engine.Now())
	s.publishStatus(s.status.SetMessage(enrollment.Message, ""))
	s.eventBus.Publish(Event{Type: EventEnrollmentUpdated, Payload: enrollment})
	return enrollment
}

// CancelEnrollment disarms card capture and drops any captured badge
func (s *AttendanceService) CancelEnrollment() Enrollment {
	enrollment := s.enrollment.cancel(s.engine.Now())
	s.eventBus.Publish(Event{Type: EventEnrollmentUpdated, Payload: enrollment})
	return enrollment
}

// Enrollment returns the card capture state
func (s *AttendanceService) Enrollment() Enrollment {
	return s.enrollment.get()
}

func (s *AttendanceService) publishStatus(status Status) {
	s.eventBus.Publish(Event{Type: EventStatusChanged, Payload: status})
}
