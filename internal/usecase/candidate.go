package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gosimple/slug"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/filestore"
	"github.com/ErlanBelekov/jobbee-api/internal/metrics"
	"github.com/ErlanBelekov/jobbee-api/internal/repository"
)

var resumeExtensions = []string{".docx", ".pdf"}

var resumeContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ResumeFile is an uploaded document as the transport layer received it.
type ResumeFile struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// CandidateUsecase keeps every job's candidate list consistent with the
// stored resume files: one entry per user per job, appended only before the
// deadline, and files removed when their entry goes away.
type CandidateUsecase struct {
	jobs       repository.JobRepository
	candidates repository.CandidateRepository
	files      filestore.Store
	maxBytes   int64
	logger     *slog.Logger
	now        func() time.Time
}

func NewCandidateUsecase(
	jobs repository.JobRepository,
	candidates repository.CandidateRepository,
	files filestore.Store,
	maxBytes int64,
	logger *slog.Logger,
) *CandidateUsecase {
	return &CandidateUsecase{
		jobs:       jobs,
		candidates: candidates,
		files:      files,
		maxBytes:   maxBytes,
		logger:     logger.With("component", "candidates"),
		now:        time.Now,
	}
}

// ResumeName derives the stored file name from the applicant's display name
// and id, the job and the uploaded extension. One user holds at most one
// entry per job, so the name is unique per entry even when two applicants
// share a display name.
func ResumeName(applicant, userID, jobID, ext string) string {
	return fmt.Sprintf("%s_%s_%s%s", slug.Make(applicant), userID, jobID, strings.ToLower(ext))
}

// Apply stores the resume and then appends the candidate entry. The append
// is a conditional insert in the store, so two concurrent applications by
// the same user produce exactly one entry.
func (u *CandidateUsecase) Apply(ctx context.Context, actor domain.Actor, jobID string, file *ResumeFile) (string, error) {
	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}

	now := u.now()
	if !job.AcceptsApplications(now) {
		metrics.ApplyOutcomes.WithLabelValues(metrics.OutcomeClosed).Inc()
		return "", errClosed()
	}

	applied, err := u.candidates.Exists(ctx, job.ID, actor.ID)
	if err != nil {
		return "", errors.Wrap(err, "check candidate")
	}
	if applied {
		metrics.ApplyOutcomes.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return "", errDuplicate()
	}

	ext, err := u.checkFile(file)
	if err != nil {
		metrics.ApplyOutcomes.WithLabelValues(metrics.OutcomeRejected).Inc()
		return "", err
	}

	name := ResumeName(actor.Name, actor.ID, job.ID, ext)
	if err := u.files.Put(ctx, name, file.Body, file.Size, resumeContentTypes[ext]); err != nil {
		metrics.ApplyOutcomes.WithLabelValues(metrics.OutcomeFailed).Inc()
		return "", domain.Upstream(err, "file store")
	}

	inserted, err := u.candidates.Add(ctx, job.ID, domain.Candidate{
		UserID:    actor.ID,
		Resume:    name,
		AppliedAt: now,
	})
	if err != nil {
		u.discardUnreferenced(ctx, name)
		metrics.ApplyOutcomes.WithLabelValues(metrics.OutcomeFailed).Inc()
		return "", errors.Wrap(err, "add candidate")
	}
	if !inserted {
		u.discardUnreferenced(ctx, name)
		return "", u.classifyRejected(ctx, job.ID, actor.ID)
	}

	metrics.ApplyOutcomes.WithLabelValues(metrics.OutcomeApplied).Inc()
	u.logger.InfoContext(ctx, "applied to job", "job_id", job.ID, "resume", name)
	return name, nil
}

func (u *CandidateUsecase) checkFile(file *ResumeFile) (string, error) {
	if file == nil || file.Body == nil {
		return "", domain.Invalid("file", "Please upload file.")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !slices.Contains(resumeExtensions, ext) {
		return "", domain.Invalid("file", "Please upload document file.")
	}
	if file.Size > u.maxBytes {
		return "", domain.Invalid("file", "Please upload file less than %d bytes.", u.maxBytes)
	}
	return ext, nil
}

// classifyRejected explains why the conditional insert wrote nothing.
func (u *CandidateUsecase) classifyRejected(ctx context.Context, jobID, userID string) error {
	applied, err := u.candidates.Exists(ctx, jobID, userID)
	if err != nil {
		return errors.Wrap(err, "check candidate")
	}
	if applied {
		metrics.ApplyOutcomes.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		return errDuplicate()
	}
	if _, err := u.jobs.GetByID(ctx, jobID); err != nil {
		return err
	}
	metrics.ApplyOutcomes.WithLabelValues(metrics.OutcomeClosed).Inc()
	return errClosed()
}

// discardUnreferenced deletes each file unless a candidate entry still
// points at it. A repeat upload by the same user overwrites the file their
// existing entry references, and that file must stay.
func (u *CandidateUsecase) discardUnreferenced(ctx context.Context, names ...string) {
	for _, name := range names {
		inUse, err := u.candidates.ResumeInUse(ctx, name)
		if err != nil {
			u.logger.WarnContext(ctx, "cannot tell whether resume is referenced, keeping it", "resume", name, "error", err)
			continue
		}
		if !inUse {
			u.discard(ctx, []string{name})
		}
	}
}

// DeleteJob removes the job with its candidate entries and then deletes
// their resumes. File failures are logged and counted, never returned.
func (u *CandidateUsecase) DeleteJob(ctx context.Context, jobID string) error {
	removed, err := u.jobs.Delete(ctx, jobID)
	if err != nil {
		return err
	}
	names := make([]string, len(removed))
	for i, c := range removed {
		names[i] = c.Resume
	}
	u.discard(ctx, names)
	return nil
}

// Withdraw removes every application userID made, one entry per job, and
// deletes the resumes no remaining entry references.
func (u *CandidateUsecase) Withdraw(ctx context.Context, userID string) error {
	apps, err := u.candidates.RemoveByUser(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "remove applications")
	}
	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.Resume
	}
	u.discardUnreferenced(ctx, names...)
	return nil
}

func (u *CandidateUsecase) discard(ctx context.Context, names []string) {
	for _, name := range names {
		if err := u.files.Delete(ctx, name); err != nil {
			metrics.ResumeCleanupFailures.Inc()
			u.logger.ErrorContext(ctx, "delete resume", "resume", name, "error", err)
		}
	}
}

func errClosed() error {
	return domain.Conflict("lastDate", "You cannot apply to this job. Last date is over.")
}

func errDuplicate() error {
	return domain.Conflict("candidates", "You have already applied for this job.")
}
