package model

import "time"

// BookingType classifies a photography session.
type BookingType string

const (
	TypePortrait   BookingType = "portrait"
	TypeWedding    BookingType = "wedding"
	TypeEvent      BookingType = "event"
	TypeCommercial BookingType = "commercial"
	TypeOther      BookingType = "other"
)

// Valid reports whether t is a known booking type.
func (t BookingType) Valid() bool {
	switch t {
	case TypePortrait, TypeWedding, TypeEvent, TypeCommercial, TypeOther:
		return true
	}
	return false
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking in state s may move to next.
// Allowed moves: pending -> confirmed|cancelled, confirmed ->
// completed|cancelled. Completed and cancelled are terminal. A no-op
// transition (same state) is always allowed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// Booking mirrors the 'bookings' table. Every booking belongs to exactly
// one user; repository lookups always filter on UserID together with ID.
type Booking struct {
	ID          uint64        `json:"id"`
	UserID      uint64        `json:"user_id"`
	Type        BookingType   `json:"type"`
	Date        string        `json:"date"` // calendar date, 2006-01-02
	Time        string        `json:"time"` // time of day, 15:04
	DurationMin int           `json:"duration"`
	Location    string        `json:"location"`
	Notes       string        `json:"notes,omitempty"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
