package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lensbook/booking-api/internal/logger"
)

// StartConsumer connects to RabbitMQ and consumes booking events forever,
// writing each one as a structured log line. A reconnect loop with
// exponential backoff keeps the consumer alive across broker restarts;
// undecodable messages are rejected without requeue to avoid tight loops.
func StartConsumer(url string, log *logger.Logger) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("booking consumer: dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log); err != nil {
			log.Warn().Err(err).Msg("booking consumer: consume loop ended, reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log *logger.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("booking consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(bookingEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(bookingEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var ev Event
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Error().Err(err).Msg("booking consumer: bad message")
			_ = d.Nack(false, false)
			continue
		}
		log.Info().
			Str("kind", ev.Kind).
			Str("occurred_at", ev.OccurredAt).
			Uint64("booking_id", ev.Booking.ID).
			Uint64("user_id", ev.Booking.UserID).
			Str("type", ev.Booking.Type).
			Str("date", ev.Booking.Date).
			Str("status", ev.Booking.Status).
			Msg("booking event")
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
