package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lensbook/booking-api/internal/logger"
	"github.com/lensbook/booking-api/internal/middleware"
	"github.com/lensbook/booking-api/internal/model"
	"github.com/lensbook/booking-api/internal/queue"
	"github.com/lensbook/booking-api/internal/repository"
	"github.com/lensbook/booking-api/internal/validation"
)

// BookingHandler implements the booking CRUD endpoints. All routes sit
// behind JWTAuth, and every repository call carries the caller's identity
// so cross-account access is impossible at the query level.
type BookingHandler struct {
	Bookings  *repository.BookingRepo
	Publisher *queue.Publisher // nil disables event publishing
	Log       *logger.Logger
}

func NewBookingHandler(bookings *repository.BookingRepo, pub *queue.Publisher, log *logger.Logger) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Publisher: pub, Log: log}
}

type bookingReq struct {
	Type     string `json:"type" validate:"required,oneof=portrait wedding event commercial other"`
	Date     string `json:"date" validate:"required,bookingdate"`
	Time     string `json:"time" validate:"required,bookingtime"`
	Duration int    `json:"duration" validate:"required,min=30,max=480"`
	Location string `json:"location" validate:"required"`
	Notes    string `json:"notes"`
	Status   string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

// Create persists a new booking for the caller. Client-supplied status and
// user_id are ignored: status always starts at pending and ownership is
// taken from the verified identity.
func (h *BookingHandler) Create(c echo.Context) error {
	id, authed := middleware.IdentityFrom(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, http.StatusBadRequest, "validation failed", validation.Errors(err))
	}

	b := model.Booking{
		UserID:      id.ID,
		Type:        model.BookingType(req.Type),
		Date:        req.Date,
		Time:        req.Time,
		DurationMin: req.Duration,
		Location:    req.Location,
		Notes:       req.Notes,
		Status:      model.StatusPending,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Bookings.Create(ctx, &b); err != nil {
		h.Log.Error().Err(err).Msg("create booking failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}

	h.publish(c, queue.KindBookingCreated, b)
	return ok(c, http.StatusCreated, b)
}

// List returns the caller's bookings, newest-created first.
func (h *BookingHandler) List(c echo.Context) error {
	id, authed := middleware.IdentityFrom(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	bookings, err := h.Bookings.ListByUser(ctx, id.ID)
	if err != nil {
		h.Log.Error().Err(err).Msg("list bookings failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return ok(c, http.StatusOK, bookings)
}

// Update rewrites a booking the caller owns. Status changes must follow
// the transition machine; a booking someone else owns reads as not found.
func (h *BookingHandler) Update(c echo.Context) error {
	id, authed := middleware.IdentityFrom(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}

	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, http.StatusBadRequest, "validation failed", validation.Errors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	current, err := h.Bookings.GetOwned(ctx, bookingID, id.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		h.Log.Error().Err(err).Msg("update booking: lookup failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}

	next := current.Status
	if req.Status != "" {
		next = model.BookingStatus(req.Status)
		if !current.Status.CanTransitionTo(next) {
			return fail(c, http.StatusBadRequest, "invalid status transition")
		}
	}

	updated := model.Booking{
		ID:          current.ID,
		UserID:      id.ID,
		Type:        model.BookingType(req.Type),
		Date:        req.Date,
		Time:        req.Time,
		DurationMin: req.Duration,
		Location:    req.Location,
		Notes:       req.Notes,
		Status:      next,
	}
	if err := h.Bookings.UpdateOwned(ctx, &updated, current.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		if errors.Is(err, repository.ErrStatusConflict) {
			return fail(c, http.StatusConflict, "booking status changed, retry")
		}
		h.Log.Error().Err(err).Msg("update booking failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}

	if next == model.StatusCancelled && current.Status != model.StatusCancelled {
		h.publish(c, queue.KindBookingCancelled, updated)
	}
	return ok(c, http.StatusOK, updated)
}

// Delete removes a booking the caller owns; not owned reads as not found.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, authed := middleware.IdentityFrom(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return fail(c, http.StatusBadRequest, "invalid booking id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Bookings.DeleteOwned(ctx, bookingID, id.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "booking not found")
		}
		h.Log.Error().Err(err).Msg("delete booking failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "booking deleted"})
}

// publish emits a booking event best-effort; failures are already logged
// by the publisher and never affect the response.
func (h *BookingHandler) publish(c echo.Context, kind string, b model.Booking) {
	if h.Publisher == nil {
		return
	}
	_ = h.Publisher.Publish(c.Request().Context(), queue.NewBookingEvent(kind, b))
}
