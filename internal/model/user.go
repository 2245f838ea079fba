package model

import "time"

// User mirrors the 'users' table. PasswordHash holds the bcrypt hash of
// the user's password; the plaintext is never stored. Handlers expose
// sanitized DTOs instead of this struct, so no json tags here.
type User struct {
	ID           uint64
	Name         string
	Email        string
	PasswordHash string
	Phone        string // optional, empty when unset
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the canonical authenticated caller attached to the request
// context by the auth middleware. It is the only identity shape handlers
// see; claims are never re-read downstream.
type Identity struct {
	ID    uint64
	Name  string
	Email string
}
