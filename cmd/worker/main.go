package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/clients"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/reservation"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "flightbooking-worker").Logger()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	inventoryRepo := repository.NewInventoryRepository(cfg.Redis)
	bookingRepo := repository.NewBookingRepository(pool)

	engine := reservation.NewEngine(inventoryRepo,
		reservation.WithRetryPolicy(cfg.Booking.MaxRetries, cfg.Booking.RetryDelay()))

	paymentClient := clients.NewPaymentClient(cfg.Payment)
	ledgerClient := clients.NewLedgerClient(cfg.Ledger)

	bookingService := booking.NewBookingService(bookingRepo, engine, paymentClient, ledgerClient,
		booking.WithSeatPrice(cfg.Booking.SeatPriceCents))

	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	// One consumer group member per slot. Each member settles its messages
	// in order and commits an offset only once the settlement finished, so
	// a crash redelivers in-flight bookings instead of dropping them.
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < concurrency; i++ {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.SettlementTopic)
		defer consumer.Close()

		group.Go(func() error {
			err := consumer.Consume(groupCtx, func(ctx context.Context, event kafka.SettlementEvent) error {
				bookingService.ProcessSettlement(ctx, event)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	log.Info().Int("consumers", concurrency).Str("topic", cfg.Kafka.SettlementTopic).Msg("starting settlement worker")

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("settlement worker error")
	}
	log.Info().Msg("worker shut down")
}
