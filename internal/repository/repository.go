package repository

import (
	"context"

	"badgeclock/internal/domain"
)

// EmployeeStore is the employee directory
type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	// GetEmployee returns nil, nil when the employee does not exist
	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	CreateEmployee(ctx context.Context, emp *domain.Employee) error
	UpdateEmployee(ctx context.Context, emp *domain.Employee) error
	// DeleteEmployee removes the employee and every attendance record it owns
	DeleteEmployee(ctx context.Context, id string) error
}

// AttendanceStore is the append-only attendance log
type AttendanceStore interface {
	AppendAttendance(ctx context.Context, rec *domain.AttendanceRecord) error
	// ListAttendance returns matching records in insertion order
	ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.AttendanceRecord, error)
}

// Repository defines the interface for attendance data access
type Repository interface {
	EmployeeStore
	AttendanceStore

	// Close releases resources
	Close() error
}
