// Package repository implements MySQL persistence for users and bookings.
// Sentinel errors let handlers map failures to HTTP statuses without
// inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist, or exists but is not
// owned by the caller. Repositories never distinguish the two cases, so
// non-owners cannot confirm a record's existence.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would violate the
// unique index on users.email.
var ErrEmailExists = errors.New("email already exists")

// ErrStatusConflict is returned when a booking's status changed between
// the caller's transition check and the write, so the requested update no
// longer applies.
var ErrStatusConflict = errors.New("status conflict")
