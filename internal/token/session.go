// Package token issues and verifies session tokens and generates single-use
// password reset tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
)

type Claims struct {
	UserID    string
	ID        string // jti, the handle used for revocation
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining is how long the token stays valid after now.
func (c Claims) Remaining(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// Sessions signs HS256 tokens. It holds only read-only configuration and is
// safe for concurrent use.
type Sessions struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessions(key []byte, ttl time.Duration) *Sessions {
	return &Sessions{key: key, ttl: ttl, now: time.Now}
}

func (s *Sessions) Issue(userID string) (string, Claims, error) {
	now := s.now()
	claims := Claims{
		UserID:    userID,
		ID:        uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   claims.UserID,
		ID:        claims.ID,
		IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	})
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, claims, nil
}

// Verify needs only the signing key. Callers re-fetch the user to learn the
// current role.
func (s *Sessions) Verify(raw string) (Claims, error) {
	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &rc, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, domain.ErrTokenExpired
		}
		return Claims{}, domain.ErrTokenInvalid
	}
	if rc.Subject == "" || rc.ID == "" {
		return Claims{}, domain.ErrTokenInvalid
	}

	c := Claims{UserID: rc.Subject, ID: rc.ID, ExpiresAt: rc.ExpiresAt.Time}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	return c, nil
}
