package usecase

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ErlanBelekov/jobbee-api/internal/authz"
	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
	"github.com/ErlanBelekov/jobbee-api/internal/repository"
)

type Profile struct {
	User          *domain.User
	PublishedJobs []domain.JobSummary
}

type UserUsecase struct {
	users      repository.UserRepository
	jobs       repository.JobRepository
	candidates *CandidateUsecase
	logger     *slog.Logger
}

func NewUserUsecase(users repository.UserRepository, jobs repository.JobRepository, candidates *CandidateUsecase, logger *slog.Logger) *UserUsecase {
	return &UserUsecase{
		users:      users,
		jobs:       jobs,
		candidates: candidates,
		logger:     logger.With("component", "users"),
	}
}

func (u *UserUsecase) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries, err := u.jobs.Summaries(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "published jobs")
	}
	return &Profile{User: user, PublishedJobs: summaries}, nil
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID, name, emailAddr string) (*domain.User, error) {
	if err := validateAccount(name, emailAddr); err != nil {
		return nil, err
	}
	return u.users.UpdateProfile(ctx, userID, strings.TrimSpace(name), strings.TrimSpace(emailAddr))
}

// DeleteMe removes the actor's account together with everything hanging off
// it.
func (u *UserUsecase) DeleteMe(ctx context.Context, actor domain.Actor) error {
	return u.deleteAccount(ctx, actor.ID, actor.Role)
}

func (u *UserUsecase) List(ctx context.Context, actor domain.Actor, params url.Values) ([]query.Document, error) {
	if err := authz.Check(actor, authz.RolesFor(authz.OpListUsers), ""); err != nil {
		return nil, err
	}
	spec, err := query.Parse(params, u.users.ListDefaults())
	if err != nil {
		return nil, err
	}
	return query.Apply(ctx, u.users.Collection(), spec)
}

func (u *UserUsecase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := authz.Check(actor, authz.RolesFor(authz.OpDeleteUser), ""); err != nil {
		return err
	}
	target, err := u.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return u.deleteAccount(ctx, target.ID, target.Role)
}

// deleteAccount cascades by role: an employer or admin loses every job they
// own through the job deletion path, a user loses every application. The
// user row goes last so a failed cascade can be retried.
func (u *UserUsecase) deleteAccount(ctx context.Context, userID string, role domain.Role) error {
	switch role {
	case domain.RoleEmployer, domain.RoleAdmin:
		owned, err := u.jobs.ListByOwner(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "list owned jobs")
		}
		for _, j := range owned {
			if err := u.candidates.DeleteJob(ctx, j.ID); err != nil && !errors.Is(err, domain.ErrJobNotFound) {
				return errors.Wrapf(err, "delete job %s", j.ID)
			}
		}
	case domain.RoleUser:
		if err := u.candidates.Withdraw(ctx, userID); err != nil {
			return err
		}
	}

	if err := u.users.Delete(ctx, userID); err != nil {
		return err
	}
	u.logger.InfoContext(ctx, "account deleted", "deleted_user_id", userID, "role", role)
	return nil
}
