package domain

// Inventory tracks the seats remaining for one flight on one date. Version
// increases on every successful write and is the compare-and-swap token for
// concurrent reservations.
type Inventory struct {
	FlightID  string
	Date      string
	SeatsLeft int
	Version   int64
}
