package service

import (
	"fmt"
	"sync"
	"time"

	"badgeclock/internal/domain"
)

// Enrollment messages shown to the operator
const (
	msgEnrollmentWaiting = "waiting for a card"
	msgCardTaken         = "this card is already assigned to another employee"
)

// Enrollment is the state of card capture for a new or edited employee
type Enrollment struct {
	// Active means the next scan is captured instead of recorded
	Active bool `json:"active"`
	// CardUID is the last captured, unassigned badge
	CardUID   string    `json:"card_uid,omitempty"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// enrollmentDesk arms and resolves card capture
type enrollmentDesk struct {
	mu    sync.Mutex
	state Enrollment
}

func (d *enrollmentDesk) start(now time.Time) Enrollment {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = Enrollment{Active: true, Message: msgEnrollmentWaiting, UpdatedAt: now}
	return d.state
}

func (d *enrollmentDesk) cancel(now time.Time) Enrollment {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = Enrollment{UpdatedAt: now}
	return d.state
}

func (d *enrollmentDesk) get() Enrollment {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// capture offers badgeID to an armed desk. It reports false when the desk
// is not armed and the scan should be recorded as attendance instead.
// A badge already held by an employee keeps the desk armed.
func (d *enrollmentDesk) capture(badgeID string, employees []domain.Employee, now time.Time) (Enrollment, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.state.Active {
		return d.state, false
	}

	d.state.UpdatedAt = now
	if domain.BadgeTaken(employees, badgeID, "") {
		d.state.Message = msgCardTaken
		return d.state, true
	}

	d.state.Active = false
	d.state.CardUID = badgeID
	d.state.Message = fmt.Sprintf("card scanned: %s", badgeID)
	return d.state, true
}
