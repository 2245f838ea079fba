// Package middleware provides reusable Echo middleware: JWT
// authentication, a Redis token-bucket rate limiter and a Redis response
// cache.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lensbook/booking-api/internal/model"
	"github.com/lensbook/booking-api/internal/repository"
	"github.com/lensbook/booking-api/internal/utils"
)

// identityKey is the context key under which the authenticated identity is
// stored. It is request-scoped; nothing is shared across requests.
const identityKey = "identity"

// JWTAuth returns middleware that validates a Bearer access token, resolves
// the user it names and attaches one canonical model.Identity to the
// request context. Status mapping: no token -> 401, bad or expired token
// -> 403, token valid but user gone -> 401.
func JWTAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "access token required"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "invalid or expired token"})
			}

			// A valid signature is not enough: the account may have been
			// deleted since issuance. Resolve against the store.
			u, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": "user not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "internal server error"})
			}

			SetIdentity(c, model.Identity{ID: u.ID, Name: u.Name, Email: u.Email})
			return next(c)
		}
	}
}

// SetIdentity attaches the authenticated identity to the request context.
// Called by JWTAuth; handler tests use it to bypass the middleware.
func SetIdentity(c echo.Context, id model.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity attached by JWTAuth, if any.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}
