package port

import "errors"

var (
	// ErrNotFound is returned by mutations addressed to a record that does not exist
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientBalance is returned when a debit exceeds the remaining balance
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrStatusConflict is returned when a conditional status update finds the record in another state
	ErrStatusConflict = errors.New("record status does not allow this change")
)
