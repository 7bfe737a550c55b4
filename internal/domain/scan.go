package domain

import (
	"errors"
	"time"
)

// ScanOutcome classifies what happened to a scan
type ScanOutcome string

const (
	OutcomeRecorded           ScanOutcome = "recorded"
	OutcomeUnknownBadge       ScanOutcome = "unknown_badge"
	OutcomeAmbiguousIdentity  ScanOutcome = "ambiguous_identity"
	OutcomePersistenceFailure ScanOutcome = "persistence_failure"
	OutcomeInvalid            ScanOutcome = "invalid"
)

// OutcomeOf maps a scan error onto its outcome
func OutcomeOf(err error) ScanOutcome {
	switch {
	case err == nil:
		return OutcomeRecorded
	case errors.Is(err, ErrUnknownBadge):
		return OutcomeUnknownBadge
	case errors.Is(err, ErrAmbiguousIdentity):
		return OutcomeAmbiguousIdentity
	case errors.Is(err, ErrPersistence):
		return OutcomePersistenceFailure
	default:
		return OutcomeInvalid
	}
}

// ScanEntry is one line of the recent-scan log
type ScanEntry struct {
	BadgeID      string      `json:"card_uid"`
	EmployeeID   string      `json:"employee_id,omitempty"`
	EmployeeName string      `json:"employee_name,omitempty"`
	Department   string      `json:"department,omitempty"`
	Action       Action      `json:"action,omitempty"`
	Outcome      ScanOutcome `json:"outcome"`
	ScannedAt    time.Time   `json:"scanned_at"`
}
