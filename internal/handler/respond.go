// Package handler implements the HTTP endpoints of the booking API. Every
// response uses the {success, data, error, details} envelope.
package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/lensbook/booking-api/internal/model"
)

// envelope is the uniform response shape of the API.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: false, Error: msg})
}

func failValidation(c echo.Context, status int, msg string, details interface{}) error {
	return c.JSON(status, envelope{Success: false, Error: msg, Details: details})
}

// userPart is the sanitized user representation returned by the API.
// Password hashes never leave the handler layer.
type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}
