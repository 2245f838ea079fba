package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lensbook/booking-api/internal/logger"
)

// Publisher emits booking events to RabbitMQ. Publishing is best-effort:
// errors are logged and returned, and callers ignore them so a broker
// outage never fails the request that triggered the event.
type Publisher struct {
	url string
	log *logger.Logger
}

func NewPublisher(url string, log *logger.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Publish sends one event to the booking.events queue. The queue is
// declared durable and messages persistent so events survive a broker
// restart.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error().Err(err).Str("kind", ev.Kind).Msg("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error().Err(err).Msg("rabbitmq channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(bookingEventsQueue, true, false, false, false, nil); err != nil {
		p.log.Error().Err(err).Msg("rabbitmq queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", bookingEventsQueue, false, false, pub); err != nil {
		p.log.Error().Err(err).Str("kind", ev.Kind).Msg("rabbitmq publish failed")
		return err
	}
	return nil
}
