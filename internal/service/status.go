package service

import (
	"sync"
	"time"

	"badgeclock/internal/domain"
	"badgeclock/internal/scanner"
)

// Status is the operator status line
type Status struct {
	// Connection is the reader transport state, empty until the first transition
	Connection scanner.State `json:"connection"`
	// Message is the last thing worth telling the operator, either a
	// transport transition or a scan outcome
	Message   string             `json:"message"`
	Outcome   domain.ScanOutcome `json:"outcome,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// StatusBoard holds the current Status
type StatusBoard struct {
	mu     sync.RWMutex
	status Status
	now    func() time.Time
}

// NewStatusBoard creates an empty status board
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{now: time.Now}
}

// SetConnection records a transport transition
func (b *StatusBoard) SetConnection(state scanner.State) Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status.Connection = state
	b.status.Message = string(state)
	b.status.Outcome = ""
	b.status.UpdatedAt = b.now()
	return b.status
}

// SetMessage records a scan outcome or enrollment message
func (b *StatusBoard) SetMessage(message string, outcome domain.ScanOutcome) Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status.Message = message
	b.status.Outcome = outcome
	b.status.UpdatedAt = b.now()
	return b.status
}

// Get returns the current status
func (b *StatusBoard) Get() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}
