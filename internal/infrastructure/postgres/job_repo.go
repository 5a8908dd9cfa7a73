package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
)

const jobColumns = `id::text, user_id::text, title, slug, description, email, address,
	location_lng, location_lat, formatted_address, city, state, zipcode, country,
	company, industry, job_type, min_education, positions, experience, salary,
	posting_date, last_date, version`

type JobRepository struct {
	db DBTX
}

func NewJobRepository(db DBTX) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Collection() query.Collection {
	return newCollection(r.db, jobSchema)
}

func (r *JobRepository) ListDefaults() query.Defaults {
	return JobDefaults
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	q := `
		INSERT INTO jobs (
			user_id, title, slug, description, email, address,
			location_lng, location_lat, formatted_address, city, state, zipcode, country,
			company, industry, job_type, min_education, positions, experience, salary,
			posting_date, last_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		          $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING ` + jobColumns

	row := r.db.QueryRow(ctx, q,
		job.UserID, job.Title, job.Slug, job.Description, job.Email, job.Address,
		job.Location.Longitude(), job.Location.Latitude(), job.Location.FormattedAddress,
		job.Location.City, job.Location.State, job.Location.Zipcode, job.Location.Country,
		job.Company, job.Industry, job.JobType, job.MinEducation, job.Positions,
		job.Experience, job.Salary, job.PostingDate, job.LastDate,
	)
	return scanJob(row)
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

// Update writes every mutable column and bumps the version marker.
func (r *JobRepository) Update(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	q := `
		UPDATE jobs
		SET    title = $2, slug = $3, description = $4, email = $5, address = $6,
		       location_lng = $7, location_lat = $8, formatted_address = $9,
		       city = $10, state = $11, zipcode = $12, country = $13,
		       company = $14, industry = $15, job_type = $16, min_education = $17,
		       positions = $18, experience = $19, salary = $20, last_date = $21,
		       version = version + 1
		WHERE  id = $1
		RETURNING ` + jobColumns

	row := r.db.QueryRow(ctx, q,
		job.ID, job.Title, job.Slug, job.Description, job.Email, job.Address,
		job.Location.Longitude(), job.Location.Latitude(), job.Location.FormattedAddress,
		job.Location.City, job.Location.State, job.Location.Zipcode, job.Location.Country,
		job.Company, job.Industry, job.JobType, job.MinEducation, job.Positions,
		job.Experience, job.Salary, job.LastDate,
	)
	return scanJob(row)
}

func (r *JobRepository) Delete(ctx context.Context, id string) ([]domain.Candidate, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx,
		`DELETE FROM candidates WHERE job_id = $1 RETURNING user_id::text, resume, applied_at`, id)
	if err != nil {
		return nil, fmt.Errorf("delete candidates: %w", err)
	}
	removed, err := pgx.CollectRows(rows, scanCandidate)
	if err != nil {
		return nil, fmt.Errorf("scan candidates: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrJobNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return removed, nil
}

func (r *JobRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Job, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 ORDER BY posting_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned jobs: %w", err)
	}
	return collectJobs(rows)
}

func (r *JobRepository) Summaries(ctx context.Context, userID string) ([]domain.JobSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, title, posting_date FROM jobs WHERE user_id = $1 ORDER BY posting_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list job summaries: %w", err)
	}
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.JobSummary, error) {
		var s domain.JobSummary
		err := row.Scan(&s.ID, &s.Title, &s.PostingDate)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan job summaries: %w", err)
	}
	return summaries, nil
}

func (r *JobRepository) AppliedBy(ctx context.Context, userID string) ([]*domain.Job, error) {
	q := `
		SELECT j.id::text, j.user_id::text, j.title, j.slug, j.description, j.email, j.address,
		       j.location_lng, j.location_lat, j.formatted_address, j.city, j.state, j.zipcode, j.country,
		       j.company, j.industry, j.job_type, j.min_education, j.positions, j.experience, j.salary,
		       j.posting_date, j.last_date, j.version,
		       c.user_id::text, c.resume, c.applied_at
		FROM   jobs j
		JOIN   candidates c ON c.job_id = j.id
		WHERE  c.user_id = $1
		ORDER BY c.applied_at DESC`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list applied jobs: %w", err)
	}
	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Job, error) {
		var c domain.Candidate
		j, err := scanJobWith(row, &c.UserID, &c.Resume, &c.AppliedAt)
		if err != nil {
			return nil, err
		}
		j.Candidates = []domain.Candidate{c}
		return j, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan applied jobs: %w", err)
	}
	return jobs, nil
}

// InRadius matches jobs whose central angle from (lat, lng), by the
// spherical law of cosines, is at most radians. The clamp keeps acos in
// domain when rounding pushes the cosine past ±1.
func (r *JobRepository) InRadius(ctx context.Context, lat, lng, radians float64) ([]*domain.Job, error) {
	q := `
		SELECT ` + jobColumns + `
		FROM   jobs
		WHERE  acos(GREATEST(-1.0, LEAST(1.0,
		           sin(radians($1)) * sin(radians(location_lat)) +
		           cos(radians($1)) * cos(radians(location_lat)) *
		           cos(radians(location_lng) - radians($2))
		       ))) <= $3
		ORDER BY posting_date DESC`

	rows, err := r.db.Query(ctx, q, lat, lng, radians)
	if err != nil {
		return nil, fmt.Errorf("jobs in radius: %w", err)
	}
	return collectJobs(rows)
}

func (r *JobRepository) Stats(ctx context.Context, topic string) ([]domain.JobStat, error) {
	q := `
		SELECT UPPER(experience), COUNT(*), AVG(positions)::float8, AVG(salary),
		       MIN(salary), MAX(salary)
		FROM   jobs
		WHERE  search_vector @@ phraseto_tsquery('english', $1)
		GROUP BY UPPER(experience)
		ORDER BY AVG(salary)`

	rows, err := r.db.Query(ctx, q, topic)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	stats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.JobStat, error) {
		var s domain.JobStat
		err := row.Scan(&s.Experience, &s.TotalJobs, &s.AvgPositions, &s.AvgSalary, &s.MinSalary, &s.MaxSalary)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan job stats: %w", err)
	}
	return stats, nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	return scanJobWith(row)
}

// scanJobWith scans the jobColumns list followed by extra destinations.
func scanJobWith(row rowScanner, extra ...any) (*domain.Job, error) {
	var j domain.Job
	var lng, lat float64
	dest := []any{
		&j.ID, &j.UserID, &j.Title, &j.Slug, &j.Description, &j.Email, &j.Address,
		&lng, &lat, &j.Location.FormattedAddress, &j.Location.City, &j.Location.State,
		&j.Location.Zipcode, &j.Location.Country,
		&j.Company, &j.Industry, &j.JobType, &j.MinEducation, &j.Positions, &j.Experience, &j.Salary,
		&j.PostingDate, &j.LastDate, &j.Version,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if notFound(err) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	j.Location.Type = "Point"
	j.Location.Coordinates = [2]float64{lng, lat}
	return &j, nil
}

func collectJobs(rows pgx.Rows) ([]*domain.Job, error) {
	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Job, error) {
		return scanJob(row)
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func scanCandidate(row pgx.CollectableRow) (domain.Candidate, error) {
	var c domain.Candidate
	err := row.Scan(&c.UserID, &c.Resume, &c.AppliedAt)
	return c, err
}
