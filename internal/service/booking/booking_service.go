package booking

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/reservation"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultSeatPriceCents = 10_000

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) *BookingResult
	GetStatus(ctx context.Context, bookingID string) (domain.BookingStatus, error)
	GetDetails(ctx context.Context, bookingID string) (*domain.Booking, error)
	ProcessSettlement(ctx context.Context, event kafka.SettlementEvent)
}

type PaymentClient interface {
	Charge(ctx context.Context, amountCents int64) (string, error)
}

type LedgerClient interface {
	AddSpend(ctx context.Context, userID string, amountCents int64) error
}

// Scheduler hands a settlement event off to run detached from the request.
type Scheduler interface {
	Schedule(ctx context.Context, event kafka.SettlementEvent) error
}

type CreateBookingInput struct {
	UserID      string   `json:"user_id"`
	FlightIDs   []string `json:"flight_ids"`
	Date        string   `json:"date"`
	Source      string   `json:"source"`
	Destination string   `json:"destination"`
	Passengers  int      `json:"passengers"`
}

// BookingResult is the only thing CreateBooking hands back: either a
// PROCESSING booking to poll, or a FAILED rejection with zero cost. Failures
// never escape as errors.
type BookingResult struct {
	BookingID string
	Status    domain.BookingStatus
	Message   string
	CostCents int64
}

type BookingService struct {
	bookings  repository.BookingRepository
	engine    reservation.ReservationUseCase
	payments  PaymentClient
	ledger    LedgerClient
	scheduler Scheduler
	seatPrice int64
}

type BookingServiceOption func(*BookingService)

// WithScheduler routes settlement through a durable transport. Without it the
// saga falls back to a detached goroutine.
func WithScheduler(s Scheduler) BookingServiceOption {
	return func(svc *BookingService) {
		svc.scheduler = s
	}
}

func WithSeatPrice(cents int64) BookingServiceOption {
	return func(svc *BookingService) {
		if cents > 0 {
			svc.seatPrice = cents
		}
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	engine reservation.ReservationUseCase,
	payments PaymentClient,
	ledger LedgerClient,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:  bookings,
		engine:    engine,
		payments:  payments,
		ledger:    ledger,
		seatPrice: defaultSeatPriceCents,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) *BookingResult {
	if input.Passengers <= 0 {
		return failure("passenger count must be positive")
	}
	if input.UserID == "" {
		return failure("user id is required")
	}

	// Advisory pre-check: a doomed reservation is rejected here without
	// touching inventory or persisting anything.
	if !s.engine.CheckAvailability(ctx, input.FlightIDs, input.Date, input.Passengers) {
		return failure("insufficient seats available")
	}

	if err := s.engine.Reserve(ctx, input.FlightIDs, input.Date, input.Passengers); err != nil {
		// Compensate over the full requested list, including flights never
		// decremented. This mirrors upstream behavior and can inflate
		// capacity; see DESIGN.md before changing it.
		s.engine.Release(ctx, input.FlightIDs, input.Date, input.Passengers)
		log.Warn().Err(err).Strs("flight_ids", input.FlightIDs).Msg("reservation failed")
		return failure("reservation failed: " + err.Error())
	}

	cost := s.totalCost(len(input.FlightIDs), input.Passengers)
	booking := &domain.Booking{
		BookingID:   uuid.NewString(),
		UserID:      input.UserID,
		FlightIDs:   input.FlightIDs,
		Date:        input.Date,
		Source:      input.Source,
		Destination: input.Destination,
		Status:      domain.BookingStatusProcessing,
		CostCents:   cost,
	}

	if err := s.bookings.Put(ctx, booking); err != nil {
		s.engine.Release(ctx, input.FlightIDs, input.Date, input.Passengers)
		log.Error().Err(err).Str("booking_id", booking.BookingID).Msg("persisting booking failed")
		return failure("error processing booking: " + err.Error())
	}

	s.schedule(ctx, kafka.SettlementEvent{
		BookingID:  booking.BookingID,
		UserID:     input.UserID,
		FlightIDs:  input.FlightIDs,
		Date:       input.Date,
		Passengers: input.Passengers,
		CostCents:  cost,
	})

	return &BookingResult{
		BookingID: booking.BookingID,
		Status:    domain.BookingStatusProcessing,
		Message:   "booking initiated, poll status with the booking id",
		CostCents: cost,
	}
}

// GetStatus maps every store failure to not-found: polling must never be
// noisier than "no answer yet".
func (s *BookingService) GetStatus(ctx context.Context, bookingID string) (domain.BookingStatus, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return "", domain.ErrBookingNotFound
	}
	return booking.Status, nil
}

func (s *BookingService) GetDetails(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

// ProcessSettlement resolves a PROCESSING booking to a terminal status and
// releases the reservation no matter the outcome. It never returns an error:
// settlement runs detached and failures only shape the terminal status. The
// transport delivers at least once, so a redelivered event for an already
// terminal booking is a no-op: no charge, no status write, no release.
func (s *BookingService) ProcessSettlement(ctx context.Context, event kafka.SettlementEvent) {
	booking, err := s.bookings.Get(ctx, event.BookingID)
	if err != nil {
		metrics.StuckSettlements.WithLabelValues("lookup").Inc()
		log.Error().Err(err).Str("booking_id", event.BookingID).Msg("booking missing at settlement, left PROCESSING")
		return
	}
	if booking.Status != domain.BookingStatusProcessing {
		log.Info().Str("booking_id", event.BookingID).Str("status", string(booking.Status)).
			Msg("booking already settled, skipping redelivered event")
		return
	}

	status := domain.BookingStatusFailed

	verdict, err := s.payments.Charge(ctx, event.CostCents)
	if err != nil {
		log.Warn().Err(err).Str("booking_id", event.BookingID).Msg("payment collaborator unavailable")
	} else if verdict == domain.PaymentVerdictSuccess {
		status = domain.BookingStatusSuccess
	}

	s.writeTerminalStatus(ctx, booking, status)

	if status == domain.BookingStatusSuccess && s.ledger != nil {
		// Fire-and-forget within fire-and-forget: a ledger failure does not
		// alter the booking's outcome.
		if err := s.ledger.AddSpend(ctx, event.UserID, event.CostCents); err != nil {
			log.Warn().Err(err).Str("booking_id", event.BookingID).Msg("ledger update failed")
		}
	}

	s.engine.Release(ctx, event.FlightIDs, event.Date, event.Passengers)
	metrics.Settlements.WithLabelValues(string(status)).Inc()

	log.Info().Str("booking_id", event.BookingID).Str("status", string(status)).
		Int64("cost_cents", event.CostCents).Msg("settlement resolved")
}

// writeTerminalStatus is best-effort: a failed write leaves the booking
// PROCESSING forever, which is surfaced through the stuck metric instead of
// crashing the settlement task. Terminal statuses are final, so a booking
// that already left PROCESSING is never rewritten.
func (s *BookingService) writeTerminalStatus(ctx context.Context, booking *domain.Booking, status domain.BookingStatus) {
	if booking.Status != domain.BookingStatusProcessing {
		return
	}

	booking.Status = status
	if err := s.bookings.Put(ctx, booking); err != nil {
		metrics.StuckSettlements.WithLabelValues("status_write").Inc()
		log.Error().Err(err).Str("booking_id", booking.BookingID).Msg("terminal status write failed, booking stuck PROCESSING")
	}
}

func (s *BookingService) schedule(ctx context.Context, event kafka.SettlementEvent) {
	if s.scheduler == nil {
		go s.ProcessSettlement(context.WithoutCancel(ctx), event)
		return
	}
	if err := s.scheduler.Schedule(ctx, event); err != nil {
		// The booking row is already written; a lost event means it stays
		// PROCESSING. Accepted gap, surfaced for operators.
		metrics.StuckSettlements.WithLabelValues("publish").Inc()
		log.Error().Err(err).Str("booking_id", event.BookingID).Msg("scheduling settlement failed, booking stuck PROCESSING")
	}
}

func (s *BookingService) totalCost(flights, passengers int) int64 {
	// Placeholder pricing until the search service owns fares: flat rate per
	// flight per passenger.
	return int64(flights) * int64(passengers) * s.seatPrice
}

func failure(message string) *BookingResult {
	return &BookingResult{Status: domain.BookingStatusFailed, Message: message}
}

var _ BookingUseCase = (*BookingService)(nil)
