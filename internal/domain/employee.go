package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Employee is a directory entry that can be resolved from a badge scan
type Employee struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Department string    `json:"department"`
	Gender     string    `json:"gender,omitempty"`
	CIN        string    `json:"cin,omitempty"` // national ID, optional
	CardUID    string    `json:"card_uid"`
	DateAdded  time.Time `json:"date_added"`
}

// NormalizeBadge trims the transport noise around a badge identifier.
// Readers sometimes terminate the UID with a newline.
func NormalizeBadge(badgeID string) string {
	return strings.TrimSpace(badgeID)
}

// HoldsBadge reports whether the employee's card matches badgeID
func (e *Employee) HoldsBadge(badgeID string) bool {
	own := NormalizeBadge(e.CardUID)
	return own != "" && own == NormalizeBadge(badgeID)
}

// Normalize trims user-entered fields in place
func (e *Employee) Normalize() {
	e.FullName = strings.TrimSpace(e.FullName)
	e.Department = strings.TrimSpace(e.Department)
	e.Gender = strings.TrimSpace(e.Gender)
	e.CIN = strings.TrimSpace(e.CIN)
	e.CardUID = NormalizeBadge(e.CardUID)
}

// Validate checks the fields every directory entry must carry
func (e *Employee) Validate() error {
	if e.FullName == "" {
		return fmt.Errorf("%w: full_name required", ErrInvalidInput)
	}
	if e.CardUID == "" {
		return fmt.Errorf("%w: card_uid required", ErrInvalidInput)
	}
	return nil
}

// BadgeTaken reports whether badgeID is held by an employee other than exceptID
func BadgeTaken(employees []Employee, badgeID, exceptID string) bool {
	for i := range employees {
		if employees[i].ID == exceptID {
			continue
		}
		if employees[i].HoldsBadge(badgeID) {
			return true
		}
	}
	return false
}

// FindEmployee returns the employee with the given ID, or nil
func FindEmployee(employees []Employee, id string) *Employee {
	for i := range employees {
		if employees[i].ID == id {
			return &employees[i]
		}
	}
	return nil
}

// SortByDateAdded orders employees newest first, by name on equal dates
func SortByDateAdded(employees []Employee) {
	sort.SliceStable(employees, func(i, j int) bool {
		a, b := employees[i].DateAdded, employees[j].DateAdded
		if !a.Equal(b) {
			return a.After(b)
		}
		return employees[i].FullName < employees[j].FullName
	})
}
