package domain

import "errors"

// Scan outcomes that do not produce a record
var (
	// ErrEmptyBadge is returned for a scan without a badge identifier
	ErrEmptyBadge = errors.New("empty badge identifier")
	// ErrUnknownBadge is returned when no employee holds the scanned badge
	ErrUnknownBadge = errors.New("no employee found for this card")
	// ErrAmbiguousIdentity is returned when more than one employee holds the scanned badge
	ErrAmbiguousIdentity = errors.New("several employees share this card")
	// ErrPersistence wraps failures of the attendance store
	ErrPersistence = errors.New("attendance store failure")
)

// Directory and record validation errors
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateBadge = errors.New("card is already assigned to another employee")
	ErrInvalidAction  = errors.New("invalid attendance action")
	ErrInvalidInput   = errors.New("invalid input")
)
