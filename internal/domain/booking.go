package domain

import "time"

type BookingStatus string

const (
	BookingStatusProcessing BookingStatus = "PROCESSING"
	BookingStatusSuccess    BookingStatus = "SUCCESS"
	BookingStatusFailed     BookingStatus = "FAILED"
)

// Booking is written twice over its lifetime: once by the saga at creation
// (PROCESSING) and once by settlement with a terminal status.
type Booking struct {
	BookingID   string
	UserID      string
	FlightIDs   []string
	Date        string
	Source      string
	Destination string
	Status      BookingStatus
	CostCents   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
