package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lensbook/booking-api/internal/config"
	"github.com/lensbook/booking-api/internal/logger"
	"github.com/lensbook/booking-api/internal/middleware"
	"github.com/lensbook/booking-api/internal/repository"
	"github.com/lensbook/booking-api/internal/utils"
	"github.com/lensbook/booking-api/internal/validation"
)

const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Log   *logger.Logger
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, log *logger.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,min=10"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

type authData struct {
	User  userPart `json:"user"`
	Token string   `json:"token"`
}

// Register creates a user and returns it with a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, http.StatusBadRequest, "validation failed", validation.Errors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, req.Phone, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return fail(c, http.StatusConflict, "user with this email already exists")
		}
		h.Log.Error().Err(err).Msg("register: create user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		h.Log.Error().Err(err).Uint64("user_id", uid).Msg("register: load user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, h.Cfg.TokenTTLHours)
	if err != nil {
		h.Log.Error().Err(err).Msg("register: issue token failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}

	return ok(c, http.StatusCreated, authData{User: toUserPart(u), Token: token.Token})
}

// Login verifies credentials and returns a fresh token. Unknown email and
// wrong password produce the same response so callers cannot probe which
// addresses are registered.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, http.StatusBadRequest, "validation failed", validation.Errors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusUnauthorized, "invalid email or password")
		}
		h.Log.Error().Err(err).Msg("login: query failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid email or password")
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.TokenTTLHours)
	if err != nil {
		h.Log.Error().Err(err).Msg("login: issue token failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}

	return ok(c, http.StatusOK, authData{User: toUserPart(u), Token: token.Token})
}

// Logout acknowledges the request. Tokens are stateless; the client
// discards its copy and the token simply ages out at its expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	return ok(c, http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the caller's current profile.
func (h *AuthHandler) Me(c echo.Context) error {
	id, authed := middleware.IdentityFrom(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		h.Log.Error().Err(err).Msg("me: load user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	return ok(c, http.StatusOK, toUserPart(u))
}

// ChangePassword re-verifies the current password before accepting the new
// one. The new password is hashed on write.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id, authed := middleware.IdentityFrom(c)
	if !authed {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return failValidation(c, http.StatusBadRequest, "validation failed", validation.Errors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		h.Log.Error().Err(err).Msg("change password: load user failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	if err := h.Users.UpdatePassword(ctx, id.ID, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		h.Log.Error().Err(err).Msg("change password: update failed")
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
	return ok(c, http.StatusOK, echo.Map{"message": "password updated"})
}
