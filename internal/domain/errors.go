package domain

import "errors"

var (
	// ErrInventoryNotFound: no inventory record exists for the flight/date.
	ErrInventoryNotFound = errors.New("inventory not found")
	// ErrInsufficientCapacity: fewer seats left than requested. Business
	// rejection, never retried.
	ErrInsufficientCapacity = errors.New("insufficient seats")
	// ErrVersionConflict: a concurrent writer committed first. Transient,
	// retried inside the reservation engine.
	ErrVersionConflict = errors.New("inventory version conflict")
	// ErrLockExhausted: the CAS retry budget ran out for one flight.
	ErrLockExhausted = errors.New("inventory lock retries exhausted")

	ErrBookingNotFound = errors.New("booking not found")
)
