package usecase_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
	"github.com/ErlanBelekov/jobbee-api/internal/usecase"
)

func newUsers(users *fakeUserRepo, jobs *fakeJobRepo, cands *fakeCandidateRepo, files *fakeFileStore) *usecase.UserUsecase {
	return usecase.NewUserUsecase(users, jobs, newCandidates(jobs, cands, files), discardLogger())
}

func TestProfile_IncludesPublishedJobs(t *testing.T) {
	users := &fakeUserRepo{findByID: func(context.Context, string) (*domain.User, error) {
		return &domain.User{ID: employer.ID, Role: domain.RoleEmployer}, nil
	}}
	jobs := &fakeJobRepo{summaries: func(context.Context, string) ([]domain.JobSummary, error) {
		return []domain.JobSummary{{ID: "job-1", Title: "Go Developer"}}, nil
	}}

	p, err := newUsers(users, jobs, &fakeCandidateRepo{}, &fakeFileStore{}).Profile(context.Background(), employer.ID)

	require.NoError(t, err)
	assert.Equal(t, "Go Developer", p.PublishedJobs[0].Title)
}

func TestUpdateProfile_ValidatesEmail(t *testing.T) {
	uc := newUsers(&fakeUserRepo{}, &fakeJobRepo{}, &fakeCandidateRepo{}, &fakeFileStore{})
	_, err := uc.UpdateProfile(context.Background(), alice.ID, "Alice", "nope")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestDeleteMe_EmployerLosesEveryOwnedJob(t *testing.T) {
	var deletedJobs []string
	var deletedUser string
	users := &fakeUserRepo{delete: func(_ context.Context, id string) error {
		deletedUser = id
		return nil
	}}
	jobs := &fakeJobRepo{
		listByOwner: func(_ context.Context, userID string) ([]*domain.Job, error) {
			return []*domain.Job{{ID: "job-1"}, {ID: "job-2"}, {ID: "job-3"}}, nil
		},
		delete: func(_ context.Context, id string) ([]domain.Candidate, error) {
			if deletedUser != "" {
				t.Error("user row removed before their jobs")
			}
			deletedJobs = append(deletedJobs, id)
			return []domain.Candidate{{Resume: "r_" + id + ".pdf"}}, nil
		},
	}
	files := &fakeFileStore{}

	err := newUsers(users, jobs, &fakeCandidateRepo{}, files).DeleteMe(context.Background(), employer)

	require.NoError(t, err)
	assert.Equal(t, []string{"job-1", "job-2", "job-3"}, deletedJobs)
	assert.Equal(t, []string{"r_job-1.pdf", "r_job-2.pdf", "r_job-3.pdf"}, files.deletes)
	assert.Equal(t, employer.ID, deletedUser)
}

func TestDeleteMe_UserWithdrawsApplications(t *testing.T) {
	users := &fakeUserRepo{delete: func(context.Context, string) error { return nil }}
	jobs := &fakeJobRepo{listByOwner: func(context.Context, string) ([]*domain.Job, error) {
		t.Fatal("a plain user owns no jobs")
		return nil, nil
	}}
	cands := &fakeCandidateRepo{
		removeByUser: func(context.Context, string) ([]domain.Application, error) {
			return []domain.Application{{JobID: "job-1", Resume: "alice_job-1.pdf"}}, nil
		},
		resumeInUse: func(context.Context, string) (bool, error) { return false, nil },
	}
	files := &fakeFileStore{}

	require.NoError(t, newUsers(users, jobs, cands, files).DeleteMe(context.Background(), alice))
	assert.Equal(t, []string{"alice_job-1.pdf"}, files.deletes)
}

func TestDeleteUser_AdminOnlyAndUsesTargetRole(t *testing.T) {
	target := &domain.User{ID: "emp-9", Role: domain.RoleEmployer}
	users := &fakeUserRepo{
		findByID: func(context.Context, string) (*domain.User, error) { return target, nil },
		delete:   func(context.Context, string) error { return nil },
	}
	var listedFor string
	jobs := &fakeJobRepo{listByOwner: func(_ context.Context, userID string) ([]*domain.Job, error) {
		listedFor = userID
		return nil, nil
	}}
	uc := newUsers(users, jobs, &fakeCandidateRepo{}, &fakeFileStore{})

	err := uc.Delete(context.Background(), employer, target.ID)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	require.NoError(t, uc.Delete(context.Background(), admin, target.ID))
	assert.Equal(t, target.ID, listedFor)
}

func TestDeleteUser_Missing(t *testing.T) {
	users := &fakeUserRepo{findByID: func(context.Context, string) (*domain.User, error) {
		return nil, domain.ErrUserNotFound
	}}
	err := newUsers(users, &fakeJobRepo{}, &fakeCandidateRepo{}, &fakeFileStore{}).Delete(context.Background(), admin, "nobody")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListUsers_AdminQuery(t *testing.T) {
	coll := &stubCollection{docs: []query.Document{{"name": "Alice"}}}
	users := &fakeUserRepo{collection: func() query.Collection { return coll }}
	uc := newUsers(users, &fakeJobRepo{}, &fakeCandidateRepo{}, &fakeFileStore{})

	_, err := uc.List(context.Background(), alice, url.Values{})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	docs, err := uc.List(context.Background(), admin, url.Values{"role": {"employer"}})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, "role", coll.wheres[0].Field)
}
