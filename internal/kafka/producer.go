package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// SettlementEvent carries everything the worker needs to settle a booking:
// the payment amount, the ledger target and the reservation to release.
type SettlementEvent struct {
	BookingID  string   `json:"booking_id"`
	UserID     string   `json:"user_id"`
	FlightIDs  []string `json:"flight_ids"`
	Date       string   `json:"date"`
	Passengers int      `json:"passengers"`
	CostCents  int64    `json:"cost_cents"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	log.Debug().Str("topic", topic).Str("key", key).Msg("published settlement event")
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// SettlementScheduler hands settlement work to the durable topic instead of a
// bare goroutine, so the worker pool gets back-pressure and crash recovery
// through consumer-group offsets.
type SettlementScheduler struct {
	producer *Producer
	topic    string
}

func NewSettlementScheduler(producer *Producer, topic string) *SettlementScheduler {
	return &SettlementScheduler{producer: producer, topic: topic}
}

func (s *SettlementScheduler) Schedule(ctx context.Context, event SettlementEvent) error {
	return s.producer.Publish(ctx, s.topic, event.BookingID, event)
}
