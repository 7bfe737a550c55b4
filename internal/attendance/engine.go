package attendance

import (
	"context"
	"fmt"
	"log"
	"time"

	"badgeclock/internal/domain"

	"github.com/google/uuid"
)

// Appender persists attendance records
type Appender interface {
	AppendAttendance(ctx context.Context, rec *domain.AttendanceRecord) error
}

// Engine infers and records the action of each scan
type Engine struct {
	store  Appender
	recent *RecentScans
	now    func() time.Time
	newID  func() string
}

// Option customizes an Engine
type Option func(*Engine)

// WithClock replaces the wall clock, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLocation renders scan times in loc, which also decides the calendar day
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		now := e.now
		e.now = func() time.Time { return now().In(loc) }
	}
}

// WithIDGenerator replaces uuid record IDs
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// NewEngine creates an engine appending to store and logging into recent
func NewEngine(store Appender, recent *RecentScans, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		recent: recent,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's current time
func (e *Engine) Now() time.Time {
	return e.now()
}

// NewID returns a fresh record ID
func (e *Engine) NewID() string {
	return e.newID()
}

// Recent returns the scan log the engine writes to
func (e *Engine) Recent() *RecentScans {
	return e.recent
}

// InferAndRecord records a scan happening now. See InferAndRecordAt.
func (e *Engine) InferAndRecord(ctx context.Context, badgeID string, employees []domain.Employee, today []domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	return e.InferAndRecordAt(ctx, e.now(), badgeID, employees, today)
}

// InferAndRecordAt resolves badgeID against employees, picks the next action
// from today's records and appends a new record stamped at now.
//
// Callers that picked the today snapshot from a clock reading must pass that
// same reading, so the snapshot and the inference agree on the calendar day.
// Records outside the day of now are ignored. A store failure is returned
// wrapped in domain.ErrPersistence and is not retried. The recent-scan log
// is updated for every outcome.
func (e *Engine) InferAndRecordAt(ctx context.Context, now time.Time, badgeID string, employees []domain.Employee, today []domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	badgeID = domain.NormalizeBadge(badgeID)

	entry := domain.ScanEntry{
		BadgeID:   badgeID,
		ScannedAt: now,
	}

	decision, err := domain.Infer(badgeID, now, employees, today)
	if err != nil {
		entry.Outcome = domain.OutcomeOf(err)
		e.recent.Add(entry)
		return nil, err
	}

	entry.EmployeeID = decision.Employee.ID
	entry.EmployeeName = decision.Employee.FullName
	entry.Department = decision.Employee.Department
	entry.Action = decision.Action

	rec := &domain.AttendanceRecord{
		ID:         e.newID(),
		EmployeeID: decision.Employee.ID,
		Action:     decision.Action,
		Timestamp:  now,
	}

	if err := e.store.AppendAttendance(ctx, rec); err != nil {
		entry.Outcome = domain.OutcomePersistenceFailure
		e.recent.Add(entry)
		log.Printf("Failed to append %s for employee %s: %v", rec.Action, rec.EmployeeID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	entry.Outcome = domain.OutcomeRecorded
	e.recent.Add(entry)
	return rec, nil
}
