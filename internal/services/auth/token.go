package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the readable part of an access token.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

// InspectToken decodes token without verifying its signature. The signing
// key belongs to the auth service; the result is only good for display and
// for deciding when to refresh.
func InspectToken(token string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("inspect token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the token has an expiry at or before now.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// ExpiresIn returns the time left until expiry, or zero when there is no
// expiry or it has passed.
func (c Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil || c.Expired(now) {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}
