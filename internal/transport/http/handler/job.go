package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
	"github.com/ErlanBelekov/jobbee-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/jobbee-api/internal/usecase"
)

type jobUsecaser interface {
	List(ctx context.Context, params url.Values) ([]query.Document, error)
	Get(ctx context.Context, id, slug string) (*domain.Job, error)
	Create(ctx context.Context, actor domain.Actor, in usecase.JobInput) (*domain.Job, error)
	Update(ctx context.Context, actor domain.Actor, id string, in usecase.JobInput) (*domain.Job, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	InRadius(ctx context.Context, zipcode string, miles float64) ([]*domain.Job, error)
	Stats(ctx context.Context, topic string) ([]domain.JobStat, error)
	Published(ctx context.Context, actor domain.Actor) ([]*domain.Job, error)
	Applied(ctx context.Context, actor domain.Actor) ([]*domain.Job, error)
}

type applier interface {
	Apply(ctx context.Context, actor domain.Actor, jobID string, file *usecase.ResumeFile) (string, error)
}

type JobHandler struct {
	jobs      jobUsecaser
	apply     applier
	maxUpload int64
	errors    *Errors
}

// NewJobHandler builds the job routes. maxUpload bounds the multipart body
// of an application; the usecase enforces the exact file size.
func NewJobHandler(jobs jobUsecaser, apply applier, maxUpload int64, errs *Errors) *JobHandler {
	return &JobHandler{jobs: jobs, apply: apply, maxUpload: maxUpload, errors: errs}
}

type jobRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Email        *string    `json:"email"`
	Address      *string    `json:"address"`
	Company      *string    `json:"company"`
	Industry     []string   `json:"industry"`
	JobType      *string    `json:"jobType"`
	MinEducation *string    `json:"minEducation"`
	Positions    *int       `json:"positions"`
	Experience   *string    `json:"experience"`
	Salary       *float64   `json:"salary"`
	LastDate     *time.Time `json:"lastDate"`
}

func (r jobRequest) input() usecase.JobInput {
	return usecase.JobInput{
		Title:        r.Title,
		Description:  r.Description,
		Email:        r.Email,
		Address:      r.Address,
		Company:      r.Company,
		Industry:     r.Industry,
		JobType:      r.JobType,
		MinEducation: r.MinEducation,
		Positions:    r.Positions,
		Experience:   r.Experience,
		Salary:       r.Salary,
		LastDate:     r.LastDate,
	}
}

type jobResponse struct {
	ID           string             `json:"id"`
	User         string             `json:"user"`
	Title        string             `json:"title"`
	Slug         string             `json:"slug"`
	Description  string             `json:"description"`
	Email        string             `json:"email"`
	Address      string             `json:"address"`
	Location     domain.Location    `json:"location"`
	Company      string             `json:"company"`
	Industry     []string           `json:"industry"`
	JobType      string             `json:"jobType"`
	MinEducation string             `json:"minEducation"`
	Positions    int                `json:"positions"`
	Experience   string             `json:"experience"`
	Salary       float64            `json:"salary"`
	PostingDate  time.Time          `json:"postingDate"`
	LastDate     time.Time          `json:"lastDate"`
	Candidates   []domain.Candidate `json:"candidates,omitempty"`
}

func toJobResponse(j *domain.Job) jobResponse {
	return jobResponse{
		ID:           j.ID,
		User:         j.UserID,
		Title:        j.Title,
		Slug:         j.Slug,
		Description:  j.Description,
		Email:        j.Email,
		Address:      j.Address,
		Location:     j.Location,
		Company:      j.Company,
		Industry:     j.Industry,
		JobType:      j.JobType,
		MinEducation: j.MinEducation,
		Positions:    j.Positions,
		Experience:   j.Experience,
		Salary:       j.Salary,
		PostingDate:  j.PostingDate,
		LastDate:     j.LastDate,
		Candidates:   j.Candidates,
	}
}

func toJobResponses(jobs []*domain.Job) []jobResponse {
	out := make([]jobResponse, len(jobs))
	for i, j := range jobs {
		out[i] = toJobResponse(j)
	}
	return out
}

// withoutCandidates hides the applicant list from everyone but the owner.
func withoutCandidates(j *domain.Job) *domain.Job {
	cp := *j
	cp.Candidates = nil
	return &cp
}

// ownEntryOnly trims the candidate list to the applicant's own entry.
func ownEntryOnly(j *domain.Job, userID string) *domain.Job {
	cp := withoutCandidates(j)
	if i := j.CandidateIndex(userID); i >= 0 {
		cp.Candidates = []domain.Candidate{j.Candidates[i]}
	}
	return cp
}

func sendList[T any](c *gin.Context, data []T) {
	c.JSON(http.StatusOK, gin.H{"success": true, "results": len(data), "data": data})
}

// GET /api/v1/jobs
func (h *JobHandler) List(c *gin.Context) {
	docs, err := h.jobs.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		h.errors.Respond(c, "list jobs", err)
		return
	}
	sendList(c, docs)
}

// GET /api/v1/job/:id/:slug
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"), c.Param("slug"))
	if err != nil {
		h.errors.Respond(c, "get job", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toJobResponse(withoutCandidates(job))})
}

// GET /api/v1/jobs/:zipcode/:distance
func (h *JobHandler) InRadius(c *gin.Context) {
	miles, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		h.errors.Respond(c, "jobs in radius", domain.Invalid("distance", "Distance must be a number of miles."))
		return
	}

	jobs, err := h.jobs.InRadius(c.Request.Context(), c.Param("zipcode"), miles)
	if err != nil {
		h.errors.Respond(c, "jobs in radius", err)
		return
	}
	for i := range jobs {
		jobs[i] = withoutCandidates(jobs[i])
	}
	sendList(c, toJobResponses(jobs))
}

// GET /api/v1/stats/:topic
func (h *JobHandler) Stats(c *gin.Context) {
	stats, err := h.jobs.Stats(c.Request.Context(), c.Param("topic"))
	if err != nil {
		h.errors.Respond(c, "job stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// POST /api/v1/job/new
func (h *JobHandler) Create(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.Respond(c, "create job", domain.Invalid("", "%v", err))
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), middleware.ActorFrom(c), req.input())
	if err != nil {
		h.errors.Respond(c, "create job", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job Created.", "data": toJobResponse(job)})
}

// PUT /api/v1/job/:id
func (h *JobHandler) Update(c *gin.Context) {
	var req jobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.Respond(c, "update job", domain.Invalid("", "%v", err))
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.input())
	if err != nil {
		h.errors.Respond(c, "update job", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job is updated.", "data": toJobResponse(job)})
}

// DELETE /api/v1/job/:id
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.jobs.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		h.errors.Respond(c, "delete job", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Job is deleted."})
}

// PUT /api/v1/job/:id/apply, multipart with the resume in field "file".
func (h *JobHandler) Apply(c *gin.Context) {
	// Leave room for the multipart framing around the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)

	var file *usecase.ResumeFile
	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errors.Respond(c, "apply", domain.Invalid("file", "Please upload file less than %dMB.", h.maxUpload>>20))
			return
		}
		h.errors.Respond(c, "apply", domain.Invalid("file", "Could not read the uploaded file."))
		return
	default:
		body, err := fh.Open()
		if err != nil {
			h.errors.Respond(c, "apply", errors.Wrap(err, "open upload"))
			return
		}
		defer body.Close()
		file = &usecase.ResumeFile{Filename: fh.Filename, Size: fh.Size, Body: body}
	}

	name, err := h.apply.Apply(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), file)
	if err != nil {
		h.errors.Respond(c, "apply", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Applied to Job successfully.", "data": name})
}

// GET /api/v1/jobs/published
func (h *JobHandler) Published(c *gin.Context) {
	jobs, err := h.jobs.Published(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		h.errors.Respond(c, "published jobs", err)
		return
	}
	sendList(c, toJobResponses(jobs))
}

// GET /api/v1/jobs/applied
func (h *JobHandler) Applied(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	jobs, err := h.jobs.Applied(c.Request.Context(), actor)
	if err != nil {
		h.errors.Respond(c, "applied jobs", err)
		return
	}
	for i, j := range jobs {
		jobs[i] = ownEntryOnly(j, actor.ID)
	}
	sendList(c, toJobResponses(jobs))
}
