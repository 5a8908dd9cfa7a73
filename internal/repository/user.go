package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
)

type UserRepository interface {
	Collection() query.Collection
	ListDefaults() query.Defaults

	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error

	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// ClearResetToken unsets the reset token only if it still equals tokenHash,
	// so a newer token written concurrently survives the rollback.
	ClearResetToken(ctx context.Context, userID, tokenHash string) error
	// ConsumeResetToken atomically matches an unexpired tokenHash, writes the
	// new password and clears the token. A token can be consumed once.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*domain.User, error)
	ClearExpiredResetTokens(ctx context.Context) (int, error)
}
