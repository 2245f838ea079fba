package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lensbook/booking-api/internal/logger"
	"github.com/lensbook/booking-api/internal/middleware"
	"github.com/lensbook/booking-api/internal/repository"
	"github.com/lensbook/booking-api/internal/validation"
)

// UserHandler implements the user CRUD endpoints. Mutating routes are
// self-scoped: a caller can only touch their own record, and a mismatched
// id is reported as not found rather than forbidden.
type UserHandler struct {
	Users *repository.UserRepo
	Log   *logger.Logger
}

func NewUserHandler(users *repository.UserRepo, log *logger.Logger) *UserHandler {
	return &UserHandler{Users: users, Log: log}
}

type updateUserReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,min=10"`
}

// List returns all users without credentials. Unauthenticated; sits behind
// the response cache.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.Log.Error().Err(err).Msg("list users failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return ok(c, http.StatusOK, out)
}

// Update edits the caller's own profile. The password field is out of
// scope here (see ChangePassword), so profile edits never re-hash.
func (h *UserHandler) Update(c echo.Context) error {
	id, authed := middleware.IdentityFrom(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	target, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || target == 0 {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	if target != id.ID {
		// Do not confirm whether the other account exists.
		return fail(c, http.StatusNotFound, "user not found")
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, http.StatusBadRequest, "validation failed", validation.Errors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, id.ID, req.Name, req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusConflict, "user with this email already exists")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		h.Log.Error().Err(err).Msg("update user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	return ok(c, http.StatusOK, toUserPart(u))
}

// Delete removes the caller's own account together with their bookings.
func (h *UserHandler) Delete(c echo.Context) error {
	id, authed := middleware.IdentityFrom(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	target, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || target == 0 {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	if target != id.ID {
		return fail(c, http.StatusNotFound, "user not found")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.Delete(ctx, id.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		h.Log.Error().Err(err).Msg("delete user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "user deleted"})
}
