// Package utils provides helpers for password hashing and access token
// creation/verification.
package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Sentinel errors returned by ParseAccessToken. Expired is distinguished
// from other failures so middleware can log it separately; both map to the
// same HTTP status.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// AccessToken is a signed HS256 JWT together with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs a token for a user. Claims: sub (user ID), jti
// (random token ID, reserved for a future denylist), iat and exp. There is
// no server-side session state; the token alone proves identity until exp.
func NewAccessToken(secret string, userID uint64, ttlHours int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature and expiry and returns the subject
// user ID. Signing method is pinned to HMAC; tokens signed with any other
// algorithm or secret fail with ErrTokenInvalid.
func ParseAccessToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !tok.Valid {
		return 0, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	// JWT numbers decode as float64; some issuers encode numeric strings.
	switch sub := claims["sub"].(type) {
	case float64:
		return uint64(sub), nil
	case string:
		if n, err := strconv.ParseUint(sub, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, ErrTokenInvalid
}
