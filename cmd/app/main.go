package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/clients"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/Domenick1991/flightbooking/internal/service/reservation"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.With().Str("service", "flightbooking-api").Logger()

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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	inventoryRepo := repository.NewInventoryRepository(cfg.Redis)
	bookingRepo := repository.NewBookingRepository(pool)

	engine := reservation.NewEngine(inventoryRepo,
		reservation.WithRetryPolicy(cfg.Booking.MaxRetries, cfg.Booking.RetryDelay()))

	paymentClient := clients.NewPaymentClient(cfg.Payment)
	ledgerClient := clients.NewLedgerClient(cfg.Ledger)

	bookingService := booking.NewBookingService(
		bookingRepo,
		engine,
		paymentClient,
		ledgerClient,
		booking.WithScheduler(kafka.NewSettlementScheduler(producer, cfg.Kafka.SettlementTopic)),
		booking.WithSeatPrice(cfg.Booking.SeatPriceCents),
	)

	router := bootstrap.NewRouter(
		api.NewBookingHandler(bookingService),
		api.NewInventoryHandler(inventoryRepo),
	)

	log.Info().Str("address", cfg.HTTP.Address).Msg("starting api server")
	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
