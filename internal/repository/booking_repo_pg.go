package repository

import (
	"context"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Put(ctx context.Context, booking *domain.Booking) error
	Get(ctx context.Context, bookingID string) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// Put upserts by booking id. The saga inserts the PROCESSING row, settlement
// later overwrites the status; no other writer exists.
func (r *PGBookingRepository) Put(ctx context.Context, booking *domain.Booking) error {
	return r.db.QueryRow(ctx, `INSERT INTO bookings (booking_id, user_id, flight_ids, date, source, destination, status, cost_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (booking_id) DO UPDATE SET status = EXCLUDED.status, updated_at = now()
		RETURNING created_at, updated_at`,
		booking.BookingID, booking.UserID, joinFlightIDs(booking.FlightIDs), booking.Date,
		booking.Source, booking.Destination, booking.Status, booking.CostCents).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT booking_id, user_id, flight_ids, date, source, destination, status, cost_cents, created_at, updated_at FROM bookings WHERE booking_id=$1`, bookingID)
	var b domain.Booking
	var flightIDs string
	if err := row.Scan(&b.BookingID, &b.UserID, &flightIDs, &b.Date, &b.Source, &b.Destination, &b.Status, &b.CostCents, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.FlightIDs = splitFlightIDs(flightIDs)
	return &b, nil
}

// The flight list is stored comma-joined; the split/join pair lives at the
// adapter boundary only.
func joinFlightIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func splitFlightIDs(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

var _ BookingRepository = (*PGBookingRepository)(nil)
