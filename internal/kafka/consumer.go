package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume fetches settlement events and dispatches them until ctx is
// canceled. The offset is committed only after the handler returns, so a
// crash mid-settlement redelivers the event instead of dropping it; the
// handler must tolerate redelivery. Malformed messages and handler errors
// are logged and committed past.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, SettlementEvent) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		var event SettlementEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error().Err(err).Str("key", string(msg.Key)).Msg("skipping malformed settlement event")
		} else if err := handler(ctx, event); err != nil {
			log.Error().Err(err).Str("booking_id", event.BookingID).Msg("settlement handler error")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}
