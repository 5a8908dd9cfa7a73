package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
)

type CandidateRepository struct {
	db DBTX
}

func NewCandidateRepository(db DBTX) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// Add is a single conditional insert: the deadline check and the uniqueness
// check happen inside one statement, so two concurrent applications from
// the same user can never both land.
func (r *CandidateRepository) Add(ctx context.Context, jobID string, c domain.Candidate) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO candidates (job_id, user_id, resume, applied_at)
		SELECT id, $2::uuid, $3::text, $4::timestamptz
		FROM   jobs
		WHERE  id = $1 AND last_date >= $4::timestamptz
		ON CONFLICT (job_id, user_id) DO NOTHING`,
		jobID, c.UserID, c.Resume, c.AppliedAt)
	if err != nil {
		return false, fmt.Errorf("add candidate: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CandidateRepository) Exists(ctx context.Context, jobID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM candidates WHERE job_id = $1 AND user_id = $2)`,
		jobID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check candidate: %w", err)
	}
	return exists, nil
}

func (r *CandidateRepository) ResumeInUse(ctx context.Context, resume string) (bool, error) {
	var inUse bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM candidates WHERE resume = $1)`, resume).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check resume: %w", err)
	}
	return inUse, nil
}

func (r *CandidateRepository) RemoveByUser(ctx context.Context, userID string) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx,
		`DELETE FROM candidates WHERE user_id = $1 RETURNING job_id::text, resume`, userID)
	if err != nil {
		return nil, fmt.Errorf("remove candidates: %w", err)
	}
	apps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Application, error) {
		var a domain.Application
		err := row.Scan(&a.JobID, &a.Resume)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan removed candidates: %w", err)
	}
	return apps, nil
}
