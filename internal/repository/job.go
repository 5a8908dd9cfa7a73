package repository

import (
	"context"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
)

// JobRepository depends on nothing but the store; usecases enforce ownership
// before calling mutating methods.
type JobRepository interface {
	// Collection returns a fresh queryable view for one list request.
	Collection() query.Collection
	// ListDefaults is the sort and projection applied when a list request
	// names none.
	ListDefaults() query.Defaults

	Create(ctx context.Context, job *domain.Job) (*domain.Job, error)
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	Update(ctx context.Context, job *domain.Job) (*domain.Job, error)

	// Delete removes the job and its candidate rows in one transaction and
	// returns the removed candidates so their resumes can be cleaned up.
	Delete(ctx context.Context, id string) ([]domain.Candidate, error)

	ListByOwner(ctx context.Context, userID string) ([]*domain.Job, error)
	Summaries(ctx context.Context, userID string) ([]domain.JobSummary, error)
	// AppliedBy returns jobs userID applied to, each carrying only that user's candidate entry.
	AppliedBy(ctx context.Context, userID string) ([]*domain.Job, error)
	InRadius(ctx context.Context, lat, lng, radians float64) ([]*domain.Job, error)
	Stats(ctx context.Context, topic string) ([]domain.JobStat, error)
}

type CandidateRepository interface {
	// Add appends c to the job's candidate list only if the job still accepts
	// applications and userID is not already listed. Reports whether a row
	// was inserted.
	Add(ctx context.Context, jobID string, c domain.Candidate) (bool, error)
	Exists(ctx context.Context, jobID, userID string) (bool, error)
	ResumeInUse(ctx context.Context, resume string) (bool, error)
	// RemoveByUser deletes every candidate row of userID and returns them.
	RemoveByUser(ctx context.Context, userID string) ([]domain.Application, error)
}
