package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
)

const userColumns = `id::text, name, email, role, password_hash,
	reset_token_hash, reset_token_expires_at, created_at`

const pgUniqueViolation = "23505"

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Collection() query.Collection {
	return newCollection(r.db, userSchema)
}

func (r *UserRepository) ListDefaults() query.Defaults {
	return UserDefaults
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		u.Name, u.Email, u.Role, u.PasswordHash)

	created, err := scanUser(row)
	if err != nil {
		return nil, uniqueEmail(err)
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users SET name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, name, email)

	u, err := scanUser(row)
	if err != nil {
		return nil, uniqueEmail(err)
	}
	return u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, userID, tokenHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND reset_token_hash = $2`,
		userID, tokenHash)
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken validates and invalidates in one UPDATE, so concurrent
// calls race on the row lock and only the first sees a match.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET    password_hash          = $2,
		       reset_token_hash       = NULL,
		       reset_token_expires_at = NULL,
		       updated_at             = NOW()
		WHERE  reset_token_hash = $1
		  AND  reset_token_expires_at > NOW()
		RETURNING `+userColumns,
		tokenHash, newPasswordHash)

	u, err := scanUser(row)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrResetTokenInvalid
	}
	return u, err
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE reset_token_expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("clear expired reset tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash,
		&u.ResetTokenHash, &u.ResetTokenExpiresAt, &u.CreatedAt)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func uniqueEmail(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.Conflict("email", "Duplicate email entered.")
	}
	return err
}
