package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/email"
	"github.com/ErlanBelekov/jobbee-api/internal/repository"
	"github.com/ErlanBelekov/jobbee-api/internal/token"
)

const (
	minPasswordLength = 8
	bcryptCost        = 10
)

var validate = validator.New()

// Denylist records logged-out session ids. *cache.Denylist implements it.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) bool
}

// Session is what a successful sign-in hands back to the client.
type Session struct {
	Token  string
	Claims token.Claims
	User   *domain.User
}

type AuthUsecase struct {
	users         repository.UserRepository
	sessions      *token.Sessions
	resets        *token.Resets
	denylist      Denylist
	email         email.Sender
	resetLinkBase string
	logger        *slog.Logger
	now           func() time.Time
}

func NewAuthUsecase(
	users repository.UserRepository,
	sessions *token.Sessions,
	resets *token.Resets,
	denylist Denylist,
	sender email.Sender,
	resetLinkBase string,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:         users,
		sessions:      sessions,
		resets:        resets,
		denylist:      denylist,
		email:         sender,
		resetLinkBase: strings.TrimRight(resetLinkBase, "/"),
		logger:        logger.With("component", "auth"),
		now:           time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if err := validateAccount(in.Name, in.Email); err != nil {
		return nil, err
	}
	if in.Role != domain.RoleUser && in.Role != domain.RoleEmployer {
		return nil, domain.Invalid("role", "Please enter a valid Role!")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		Role:         in.Role,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	return u.issue(user)
}

func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*Session, error) {
	if emailAddr == "" || password == "" {
		return nil, domain.Invalid("", "Please enter Email and Password!")
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u.issue(user)
}

// Logout denylists the session until it would have expired anyway.
func (u *AuthUsecase) Logout(ctx context.Context, claims token.Claims) error {
	if err := u.denylist.Revoke(ctx, claims.ID, claims.Remaining(u.now())); err != nil {
		return domain.Upstream(err, "session denylist")
	}
	return nil
}

// Authenticate turns a raw bearer token into the acting user. The user is
// reloaded on every call so deleted accounts and role changes take effect
// immediately.
func (u *AuthUsecase) Authenticate(ctx context.Context, raw string) (domain.Actor, token.Claims, error) {
	claims, err := u.sessions.Verify(raw)
	if err != nil {
		return domain.Actor{}, token.Claims{}, err
	}
	if u.denylist.IsRevoked(ctx, claims.ID) {
		return domain.Actor{}, token.Claims{}, domain.ErrTokenRevoked
	}

	user, err := u.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.Actor{}, token.Claims{}, domain.ErrTokenInvalid
	}
	if err != nil {
		return domain.Actor{}, token.Claims{}, errors.Wrap(err, "load session user")
	}
	return user.Actor(), claims, nil
}

// ForgotPassword stores a fresh reset token and emails its link. When the
// email cannot be sent the token is withdrawn again.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrEmailNotFound
	}
	if err != nil {
		return errors.Wrap(err, "find user")
	}

	plain, hash, expiresAt, err := u.resets.Generate()
	if err != nil {
		return err
	}
	if err := u.users.SetResetToken(ctx, user.ID, hash, expiresAt); err != nil {
		return errors.Wrap(err, "store reset token")
	}

	subject, body := email.PasswordReset(u.resetLinkBase + "/api/v1/password/reset/" + plain)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		if clearErr := u.users.ClearResetToken(ctx, user.ID, hash); clearErr != nil {
			u.logger.ErrorContext(ctx, "withdraw reset token", "user_id", user.ID, "error", clearErr)
		}
		return domain.Upstream(err, "email")
	}

	u.logger.InfoContext(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword consumes the token and sets the new password in one store
// call, so a token works at most once.
func (u *AuthUsecase) ResetPassword(ctx context.Context, plain, newPassword string) (*Session, error) {
	if plain == "" {
		return nil, domain.ErrResetTokenInvalid
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	user, err := u.users.ConsumeResetToken(ctx, u.resets.Hash(plain), hash)
	if err != nil {
		return nil, err
	}
	return u.issue(user)
}

func (u *AuthUsecase) UpdatePassword(ctx context.Context, userID, current, next string) (*Session, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return nil, errors.Mark(errors.New("Current password is not correct!"), domain.ErrUnauthenticated)
	}

	hash, err := hashPassword(next)
	if err != nil {
		return nil, err
	}
	if err := u.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return u.issue(user)
}

func (u *AuthUsecase) issue(user *domain.User) (*Session, error) {
	signed, claims, err := u.sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: signed, Claims: claims, User: user}, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", domain.Invalid("password", "Your Password must be at least %d characters long", minPasswordLength)
	}
	// bcrypt rejects passwords longer than 72 bytes.
	if len(password) > 72 {
		return "", domain.Invalid("password", "Your Password cannot exceed 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func validateAccount(name, emailAddr string) error {
	if strings.TrimSpace(name) == "" {
		return domain.Invalid("name", "Please enter your Name!")
	}
	if strings.TrimSpace(emailAddr) == "" {
		return domain.Invalid("email", "Please enter your Email Address!")
	}
	if validate.Var(strings.TrimSpace(emailAddr), "email") != nil {
		return domain.Invalid("email", "Please enter a valid Email Address!")
	}
	return nil
}
