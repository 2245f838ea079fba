// Package queue defines the booking lifecycle events exchanged over
// RabbitMQ, plus the publisher and consumer that move them.
package queue

import (
	"time"

	"github.com/lensbook/booking-api/internal/model"
)

// Queue name all booking lifecycle events flow through.
const bookingEventsQueue = "booking.events"

// Event kinds.
const (
	KindBookingCreated   = "booking.created"
	KindBookingCancelled = "booking.cancelled"
)

// BookingPayload carries enough of a booking for downstream consumers to
// log or notify without querying the primary database.
type BookingPayload struct {
	ID       uint64 `json:"id"`
	UserID   uint64 `json:"user_id"`
	Type     string `json:"type"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration int    `json:"duration"`
	Location string `json:"location"`
	Status   string `json:"status"`
}

// Event is the envelope published to the booking.events queue.
type Event struct {
	Kind       string         `json:"kind"`
	OccurredAt string         `json:"occurred_at"` // RFC 3339, UTC
	Booking    BookingPayload `json:"booking"`
}

// NewBookingEvent builds an event of the given kind from a booking record.
func NewBookingEvent(kind string, b model.Booking) Event {
	return Event{
		Kind:       kind,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Booking: BookingPayload{
			ID:       b.ID,
			UserID:   b.UserID,
			Type:     string(b.Type),
			Date:     b.Date,
			Time:     b.Time,
			Duration: b.DurationMin,
			Location: b.Location,
			Status:   string(b.Status),
		},
	}
}
