package usecase

import (
	"context"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gosimple/slug"

	"github.com/ErlanBelekov/jobbee-api/internal/authz"
	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/geocode"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
	"github.com/ErlanBelekov/jobbee-api/internal/repository"
)

// EarthRadiusMiles converts a distance in miles to a central angle.
const EarthRadiusMiles = 3963.0

type JobUsecase struct {
	repo       repository.JobRepository
	candidates *CandidateUsecase
	geocoder   geocode.Geocoder
	logger     *slog.Logger
	now        func() time.Time
}

func NewJobUsecase(repo repository.JobRepository, candidates *CandidateUsecase, geocoder geocode.Geocoder, logger *slog.Logger) *JobUsecase {
	return &JobUsecase{
		repo:       repo,
		candidates: candidates,
		geocoder:   geocoder,
		logger:     logger.With("component", "jobs"),
		now:        time.Now,
	}
}

// JobInput carries the client-settable fields. A nil field is left as is on
// update and takes its default on create.
type JobInput struct {
	Title        *string
	Description  *string
	Email        *string
	Address      *string
	Company      *string
	Industry     []string
	JobType      *string
	MinEducation *string
	Positions    *int
	Experience   *string
	Salary       *float64
	LastDate     *time.Time
}

func (u *JobUsecase) List(ctx context.Context, params url.Values) ([]query.Document, error) {
	spec, err := query.Parse(params, u.repo.ListDefaults())
	if err != nil {
		return nil, err
	}
	return query.Apply(ctx, u.repo.Collection(), spec)
}

// Get matches on both id and slug; a stale slug is a miss.
func (u *JobUsecase) Get(ctx context.Context, id, jobSlug string) (*domain.Job, error) {
	job, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Slug != jobSlug {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (u *JobUsecase) Create(ctx context.Context, actor domain.Actor, in JobInput) (*domain.Job, error) {
	if err := authz.Check(actor, authz.RolesFor(authz.OpCreateJob), ""); err != nil {
		return nil, err
	}

	now := u.now()
	job := &domain.Job{
		UserID:      actor.ID,
		Positions:   domain.DefaultPositions,
		PostingDate: now,
		LastDate:    now.Add(domain.DefaultApplyWindow),
	}
	in.applyTo(job)
	if err := validateJob(job); err != nil {
		return nil, err
	}

	job.Slug = slug.Make(job.Title)
	loc, err := u.locate(ctx, job.Address)
	if err != nil {
		return nil, err
	}
	job.Location = loc

	created, err := u.repo.Create(ctx, job)
	if err != nil {
		return nil, errors.Wrap(err, "create job")
	}
	u.logger.InfoContext(ctx, "job created", "job_id", created.ID)
	return created, nil
}

// Update re-derives the slug when the title changes and the location when
// the address changes.
func (u *JobUsecase) Update(ctx context.Context, actor domain.Actor, id string, in JobInput) (*domain.Job, error) {
	job, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Check(actor, authz.RolesFor(authz.OpUpdateJob), job.UserID); err != nil {
		return nil, err
	}

	title, address := job.Title, job.Address
	in.applyTo(job)
	if err := validateJob(job); err != nil {
		return nil, err
	}

	if job.Title != title {
		job.Slug = slug.Make(job.Title)
	}
	if job.Address != address {
		loc, err := u.locate(ctx, job.Address)
		if err != nil {
			return nil, err
		}
		job.Location = loc
	}

	updated, err := u.repo.Update(ctx, job)
	if err != nil {
		return nil, errors.Wrap(err, "update job")
	}
	return updated, nil
}

func (u *JobUsecase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	job, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Check(actor, authz.RolesFor(authz.OpDeleteJob), job.UserID); err != nil {
		return err
	}
	if err := u.candidates.DeleteJob(ctx, job.ID); err != nil {
		return err
	}
	u.logger.InfoContext(ctx, "job deleted", "job_id", job.ID)
	return nil
}

// InRadius finds jobs within miles of the geocoded zipcode.
func (u *JobUsecase) InRadius(ctx context.Context, zipcode string, miles float64) ([]*domain.Job, error) {
	if math.IsNaN(miles) || math.IsInf(miles, 0) || miles < 0 {
		return nil, domain.Invalid("distance", "distance must be a non-negative number of miles")
	}
	if strings.TrimSpace(zipcode) == "" {
		return nil, domain.Invalid("zipcode", "zipcode is required")
	}

	center, err := u.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	jobs, err := u.repo.InRadius(ctx, center.Latitude, center.Longitude, miles/EarthRadiusMiles)
	if err != nil {
		return nil, errors.Wrap(err, "jobs in radius")
	}
	return jobs, nil
}

func (u *JobUsecase) Stats(ctx context.Context, topic string) ([]domain.JobStat, error) {
	stats, err := u.repo.Stats(ctx, topic)
	if err != nil {
		return nil, errors.Wrap(err, "job stats")
	}
	if len(stats) == 0 {
		return nil, domain.StatNotFound(topic)
	}
	return stats, nil
}

func (u *JobUsecase) Published(ctx context.Context, actor domain.Actor) ([]*domain.Job, error) {
	if err := authz.Check(actor, authz.RolesFor(authz.OpPublishedJobs), ""); err != nil {
		return nil, err
	}
	return u.repo.ListByOwner(ctx, actor.ID)
}

func (u *JobUsecase) Applied(ctx context.Context, actor domain.Actor) ([]*domain.Job, error) {
	if err := authz.Check(actor, authz.RolesFor(authz.OpAppliedJobs), ""); err != nil {
		return nil, err
	}
	return u.repo.AppliedBy(ctx, actor.ID)
}

func (u *JobUsecase) locate(ctx context.Context, address string) (domain.Location, error) {
	res, err := u.geocoder.Geocode(ctx, address)
	if errors.Is(err, domain.ErrNoLocation) {
		return domain.Location{}, domain.Invalid("address", "The address %q could not be located.", address)
	}
	if err != nil {
		return domain.Location{}, err
	}
	return res.Location(), nil
}

func (in JobInput) applyTo(j *domain.Job) {
	if in.Title != nil {
		j.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		j.Description = *in.Description
	}
	if in.Email != nil {
		j.Email = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		j.Address = strings.TrimSpace(*in.Address)
	}
	if in.Company != nil {
		j.Company = strings.TrimSpace(*in.Company)
	}
	if in.Industry != nil {
		j.Industry = in.Industry
	}
	if in.JobType != nil {
		j.JobType = *in.JobType
	}
	if in.MinEducation != nil {
		j.MinEducation = *in.MinEducation
	}
	if in.Positions != nil {
		j.Positions = *in.Positions
	}
	if in.Experience != nil {
		j.Experience = *in.Experience
	}
	if in.Salary != nil {
		j.Salary = *in.Salary
	}
	if in.LastDate != nil {
		j.LastDate = *in.LastDate
	}
}

func validateJob(j *domain.Job) error {
	switch {
	case j.Title == "":
		return domain.Invalid("title", "Please enter a Job Title!")
	case len([]rune(j.Title)) > domain.MaxTitleLength:
		return domain.Invalid("title", "The Job Title cannot exceed %d characters!", domain.MaxTitleLength)
	case strings.TrimSpace(j.Description) == "":
		return domain.Invalid("description", "Please enter a Job Description!")
	case len([]rune(j.Description)) > domain.MaxDescriptionLength:
		return domain.Invalid("description", "The Job Description cannot exceed %d characters!", domain.MaxDescriptionLength)
	case j.Email != "" && validate.Var(j.Email, "email") != nil:
		return domain.Invalid("email", "Please add a valid Email Address!")
	case j.Address == "":
		return domain.Invalid("address", "Please enter an Address!")
	case j.Company == "":
		return domain.Invalid("company", "Please enter a Company Name!")
	case len(j.Industry) == 0:
		return domain.Invalid("industry", "Please enter an Industry!")
	case !domain.ValidJobType(j.JobType):
		return domain.Invalid("jobType", "Please provide a valid option for the Job Type!")
	case !domain.ValidEducation(j.MinEducation):
		return domain.Invalid("minEducation", "Please provide a valid option for the Education Required!")
	case j.Positions < 1:
		return domain.Invalid("positions", "positions must be at least 1")
	case !domain.ValidExperience(j.Experience):
		return domain.Invalid("experience", "Please provide a valid option for the Experience!")
	case j.Salary <= 0 || math.IsNaN(j.Salary) || math.IsInf(j.Salary, 0):
		return domain.Invalid("salary", "Please enter an Expected Salary for this job!")
	}
	for _, ind := range j.Industry {
		if !domain.ValidIndustry(ind) {
			return domain.Invalid("industry", "Please provide a valid option for the Industry!")
		}
	}
	return nil
}
