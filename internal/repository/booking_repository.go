package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lensbook/booking-api/internal/model"
)

// BookingRepo provides CRUD for bookings. All single-record lookups filter
// on id AND user_id in the same statement: a lookup that ignores ownership
// would be an authorization bypass.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = "id, user_id, type, date, time, duration_min, location, notes, status, created_at, updated_at"

// Create inserts the booking and reads the row back so generated ID,
// defaults and timestamps are populated on b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO bookings (user_id, type, date, time, duration_min, location, notes, status) VALUES (?,?,?,?,?,?,?,?)",
		b.UserID, b.Type, b.Date, b.Time, b.DurationMin, b.Location, nullable(b.Notes), b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.getOwned(ctx, uint64(id), b.UserID)
	if err != nil {
		return err
	}
	*b = created
	return nil
}

// GetOwned fetches a booking only when it belongs to userID. A row owned
// by someone else is indistinguishable from a missing row.
func (r *BookingRepo) GetOwned(ctx context.Context, id, userID uint64) (model.Booking, error) {
	return r.getOwned(ctx, id, userID)
}

// ListByUser returns the user's bookings, newest-created first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateOwned writes the mutable fields of b. The UPDATE keeps the
// ownership filter and additionally guards on the status the caller based
// its transition decision on, so two concurrent updates cannot both slip
// past the transition rules. RowsAffected cannot separate a failed guard
// from a no-op write (MySQL reports zero for both), so the
// ownership-scoped re-read settles existence, and a re-read status that
// differs from the requested one means the guard lost the race.
func (r *BookingRepo) UpdateOwned(ctx context.Context, b *model.Booking, from model.BookingStatus) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE bookings SET type=?, date=?, time=?, duration_min=?, location=?, notes=?, status=? WHERE id=? AND user_id=? AND status=?",
		b.Type, b.Date, b.Time, b.DurationMin, b.Location, nullable(b.Notes), b.Status, b.ID, b.UserID, from)
	if err != nil {
		return err
	}
	updated, err := r.getOwned(ctx, b.ID, b.UserID)
	if err != nil {
		return err
	}
	if updated.Status != b.Status {
		return ErrStatusConflict
	}
	*b = updated
	return nil
}

// DeleteOwned removes the booking when owned by userID, otherwise
// ErrNotFound.
func (r *BookingRepo) DeleteOwned(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM bookings WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookingRepo) getOwned(ctx context.Context, id, userID uint64) (model.Booking, error) {
	b, err := scanBooking(r.DB.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=? AND user_id=? LIMIT 1",
		id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var b model.Booking
	var notes sql.NullString
	err := s.Scan(&b.ID, &b.UserID, &b.Type, &b.Date, &b.Time, &b.DurationMin,
		&b.Location, &notes, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, err
	}
	b.Notes = notes.String
	return b, nil
}
