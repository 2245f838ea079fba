// Package validation wires go-playground/validator as Echo's request
// validator and translates its failures into the field-level error list
// returned in the response envelope's details.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the details array in a 400 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New builds the validator with the custom booking rules registered.
// Field names in errors come from json tags so they match the wire format.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("bookingdate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("bookingtime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	return &Validator{v: v}
}

// Validate satisfies echo.Validator. The returned error, when non-nil, can
// be passed to Errors to obtain the field list.
func (val *Validator) Validate(i interface{}) error {
	return val.v.Struct(i)
}

// Errors converts a validation failure into field-level messages. A
// non-validator error yields a single generic entry so malformed input
// never surfaces internals.
func Errors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: "invalid request body"}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "invalid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	case "bookingdate":
		return "invalid date format, expected YYYY-MM-DD"
	case "bookingtime":
		return "invalid time format, expected HH:MM"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
