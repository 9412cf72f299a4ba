package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 100 * time.Millisecond
)

type ReservationUseCase interface {
	CheckAvailability(ctx context.Context, flightIDs []string, date string, passengers int) bool
	Reserve(ctx context.Context, flightIDs []string, date string, passengers int) error
	Release(ctx context.Context, flightIDs []string, date string, passengers int)
}

// Engine decrements and restores seat counts with optimistic concurrency: a
// bounded compare-and-swap retry loop per flight, no locks held across calls.
type Engine struct {
	inventory  repository.InventoryRepository
	maxRetries int
	retryDelay time.Duration
}

type EngineOption func(*Engine)

// WithRetryPolicy bounds the CAS loop: at most maxRetries attempts per
// flight, waiting delay between attempts.
func WithRetryPolicy(maxRetries int, delay time.Duration) EngineOption {
	return func(e *Engine) {
		e.maxRetries = maxRetries
		e.retryDelay = delay
	}
}

func NewEngine(inventory repository.InventoryRepository, opts ...EngineOption) *Engine {
	engine := &Engine{
		inventory:  inventory,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// CheckAvailability is advisory only: results are not reused by Reserve,
// which re-reads under its own version check. Fails closed on any read error.
func (e *Engine) CheckAvailability(ctx context.Context, flightIDs []string, date string, passengers int) bool {
	for _, flightID := range flightIDs {
		inv, err := e.inventory.Get(ctx, flightID, date)
		if err != nil {
			return false
		}
		if inv.SeatsLeft < passengers {
			return false
		}
	}
	return true
}

// Reserve decrements each flight in order. Flights are independent CAS loops,
// not a transaction: a failure on flight k leaves flights 1..k-1 decremented
// and aborts the rest; the caller compensates.
func (e *Engine) Reserve(ctx context.Context, flightIDs []string, date string, passengers int) error {
	for _, flightID := range flightIDs {
		if err := e.reserveOne(ctx, flightID, date, passengers); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) reserveOne(ctx context.Context, flightID, date string, passengers int) error {
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		inv, err := e.inventory.Get(ctx, flightID, date)
		if err != nil {
			return fmt.Errorf("flight %s: %w", flightID, err)
		}
		if inv.SeatsLeft < passengers {
			return fmt.Errorf("flight %s: %w", flightID, domain.ErrInsufficientCapacity)
		}

		next := *inv
		next.SeatsLeft -= passengers
		next.Version++

		err = e.inventory.ConditionalPut(ctx, &next, inv.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			return fmt.Errorf("flight %s: %w", flightID, err)
		}

		metrics.InventoryConflicts.Inc()
		if attempt < e.maxRetries-1 {
			if err := wait(ctx, e.retryDelay); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("flight %s: %w", flightID, domain.ErrLockExhausted)
}

// Release restores seats best-effort. Missing inventory counts as already
// released; exhausted retries are logged and absorbed so compensation never
// blocks or fails the saga. It runs over whatever flight list the caller
// hands it, which for a failed Reserve is the full requested list, including
// flights that were never decremented.
func (e *Engine) Release(ctx context.Context, flightIDs []string, date string, passengers int) {
	for _, flightID := range flightIDs {
		e.releaseOne(ctx, flightID, date, passengers)
	}
}

func (e *Engine) releaseOne(ctx context.Context, flightID, date string, passengers int) {
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		inv, err := e.inventory.Get(ctx, flightID, date)
		if errors.Is(err, domain.ErrInventoryNotFound) {
			return
		}
		if err != nil {
			metrics.ReleaseFailures.Inc()
			log.Warn().Err(err).Str("flight_id", flightID).Str("date", date).Msg("release read failed")
			return
		}

		next := *inv
		next.SeatsLeft += passengers
		next.Version++

		err = e.inventory.ConditionalPut(ctx, &next, inv.Version)
		if err == nil {
			return
		}
		if !errors.Is(err, domain.ErrVersionConflict) {
			metrics.ReleaseFailures.Inc()
			log.Warn().Err(err).Str("flight_id", flightID).Str("date", date).Msg("release write failed")
			return
		}

		metrics.InventoryConflicts.Inc()
		if attempt < e.maxRetries-1 {
			if err := wait(ctx, e.retryDelay); err != nil {
				return
			}
		}
	}

	metrics.ReleaseFailures.Inc()
	log.Warn().Str("flight_id", flightID).Str("date", date).Int("passengers", passengers).
		Msg("release exhausted retries, seats not restored")
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ ReservationUseCase = (*Engine)(nil)
