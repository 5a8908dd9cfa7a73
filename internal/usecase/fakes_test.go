package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/geocode"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
)

// ---- fakes ----

type fakeUserRepo struct {
	collection              func() query.Collection
	create                  func(ctx context.Context, u *domain.User) (*domain.User, error)
	findByID                func(ctx context.Context, id string) (*domain.User, error)
	findByEmail             func(ctx context.Context, email string) (*domain.User, error)
	updateProfile           func(ctx context.Context, id, name, email string) (*domain.User, error)
	updatePassword          func(ctx context.Context, id, hash string) error
	delete                  func(ctx context.Context, id string) error
	setResetToken           func(ctx context.Context, userID, hash string, expiresAt time.Time) error
	clearResetToken         func(ctx context.Context, userID, hash string) error
	consumeResetToken       func(ctx context.Context, hash, newPasswordHash string) (*domain.User, error)
	clearExpiredResetTokens func(ctx context.Context) (int, error)
}

func (r *fakeUserRepo) Collection() query.Collection { return r.collection() }

func (r *fakeUserRepo) ListDefaults() query.Defaults { return query.Defaults{Sort: "-createdAt"} }

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.create(ctx, u)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error) {
	return r.updateProfile(ctx, id, name, email)
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.updatePassword(ctx, id, hash)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error { return r.delete(ctx, id) }

func (r *fakeUserRepo) SetResetToken(ctx context.Context, userID, hash string, expiresAt time.Time) error {
	return r.setResetToken(ctx, userID, hash, expiresAt)
}

func (r *fakeUserRepo) ClearResetToken(ctx context.Context, userID, hash string) error {
	return r.clearResetToken(ctx, userID, hash)
}

func (r *fakeUserRepo) ConsumeResetToken(ctx context.Context, hash, newPasswordHash string) (*domain.User, error) {
	return r.consumeResetToken(ctx, hash, newPasswordHash)
}

func (r *fakeUserRepo) ClearExpiredResetTokens(ctx context.Context) (int, error) {
	return r.clearExpiredResetTokens(ctx)
}

type fakeJobRepo struct {
	collection  func() query.Collection
	create      func(ctx context.Context, j *domain.Job) (*domain.Job, error)
	getByID     func(ctx context.Context, id string) (*domain.Job, error)
	update      func(ctx context.Context, j *domain.Job) (*domain.Job, error)
	delete      func(ctx context.Context, id string) ([]domain.Candidate, error)
	listByOwner func(ctx context.Context, userID string) ([]*domain.Job, error)
	summaries   func(ctx context.Context, userID string) ([]domain.JobSummary, error)
	appliedBy   func(ctx context.Context, userID string) ([]*domain.Job, error)
	inRadius    func(ctx context.Context, lat, lng, radians float64) ([]*domain.Job, error)
	stats       func(ctx context.Context, topic string) ([]domain.JobStat, error)
}

func (r *fakeJobRepo) Collection() query.Collection { return r.collection() }

func (r *fakeJobRepo) ListDefaults() query.Defaults {
	return query.Defaults{Sort: "-postingDate", Exclude: []string{"version"}}
}

func (r *fakeJobRepo) Create(ctx context.Context, j *domain.Job) (*domain.Job, error) {
	return r.create(ctx, j)
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return r.getByID(ctx, id)
}

func (r *fakeJobRepo) Update(ctx context.Context, j *domain.Job) (*domain.Job, error) {
	return r.update(ctx, j)
}

func (r *fakeJobRepo) Delete(ctx context.Context, id string) ([]domain.Candidate, error) {
	return r.delete(ctx, id)
}

func (r *fakeJobRepo) ListByOwner(ctx context.Context, userID string) ([]*domain.Job, error) {
	return r.listByOwner(ctx, userID)
}

func (r *fakeJobRepo) Summaries(ctx context.Context, userID string) ([]domain.JobSummary, error) {
	return r.summaries(ctx, userID)
}

func (r *fakeJobRepo) AppliedBy(ctx context.Context, userID string) ([]*domain.Job, error) {
	return r.appliedBy(ctx, userID)
}

func (r *fakeJobRepo) InRadius(ctx context.Context, lat, lng, radians float64) ([]*domain.Job, error) {
	return r.inRadius(ctx, lat, lng, radians)
}

func (r *fakeJobRepo) Stats(ctx context.Context, topic string) ([]domain.JobStat, error) {
	return r.stats(ctx, topic)
}

type fakeCandidateRepo struct {
	add          func(ctx context.Context, jobID string, c domain.Candidate) (bool, error)
	exists       func(ctx context.Context, jobID, userID string) (bool, error)
	resumeInUse  func(ctx context.Context, resume string) (bool, error)
	removeByUser func(ctx context.Context, userID string) ([]domain.Application, error)
}

func (r *fakeCandidateRepo) Add(ctx context.Context, jobID string, c domain.Candidate) (bool, error) {
	return r.add(ctx, jobID, c)
}

func (r *fakeCandidateRepo) Exists(ctx context.Context, jobID, userID string) (bool, error) {
	return r.exists(ctx, jobID, userID)
}

func (r *fakeCandidateRepo) ResumeInUse(ctx context.Context, resume string) (bool, error) {
	return r.resumeInUse(ctx, resume)
}

func (r *fakeCandidateRepo) RemoveByUser(ctx context.Context, userID string) ([]domain.Application, error) {
	return r.removeByUser(ctx, userID)
}

// fakeFileStore records puts and deletes; deleteErr fails every delete.
type fakeFileStore struct {
	mu        sync.Mutex
	putErr    error
	deleteErr error
	puts      []string
	deletes   []string
}

func (s *fakeFileStore) Put(_ context.Context, name string, body io.Reader, _ int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	s.puts = append(s.puts, name)
	return nil
}

func (s *fakeFileStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, name)
	return s.deleteErr
}

type fakeGeocoder struct {
	geocode func(ctx context.Context, address string) (geocode.Result, error)
}

func (g *fakeGeocoder) Geocode(ctx context.Context, address string) (geocode.Result, error) {
	return g.geocode(ctx, address)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

// ---- helpers ----

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	employer = domain.Actor{ID: "emp-1", Name: "Acme Hiring", Role: domain.RoleEmployer}
	admin    = domain.Actor{ID: "adm-1", Name: "Root", Role: domain.RoleAdmin}
	alice    = domain.Actor{ID: "user-1", Name: "Alice Smith", Role: domain.RoleUser}
)

func ptr[T any](v T) *T { return &v }
