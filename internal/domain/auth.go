package domain

import (
	"time"

	"github.com/cockroachdb/errors"
)

var (
	ErrUserNotFound       = errors.Mark(errors.New("User not found!"), ErrNotFound)
	ErrEmailNotFound      = errors.Mark(errors.New("No user found with this email!"), ErrNotFound)
	ErrTokenInvalid       = errors.Mark(errors.New("token is invalid"), ErrUnauthenticated)
	ErrTokenExpired       = errors.Mark(errors.New("token is expired"), ErrUnauthenticated)
	ErrTokenRevoked       = errors.Mark(errors.New("token has been revoked"), ErrUnauthenticated)
	ErrInvalidCredentials = errors.Mark(errors.New("Invalid Email or Password!"), ErrUnauthenticated)
	ErrResetTokenInvalid  = errors.Mark(errors.New("reset token is invalid or expired"), ErrValidation)
)

type Role string

const (
	RoleUser     Role = "user"
	RoleEmployer Role = "employer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	PasswordHash string

	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
}

// Actor is the identity making a request, rebuilt from a verified session
// token plus a fresh user lookup so role changes apply on the next request.
type Actor struct {
	ID   string
	Name string
	Role Role
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role}
}
