package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
	"github.com/ErlanBelekov/jobbee-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/jobbee-api/internal/usecase"
)

type userUsecaser interface {
	Profile(ctx context.Context, userID string) (*usecase.Profile, error)
	UpdateProfile(ctx context.Context, userID, name, email string) (*domain.User, error)
	DeleteMe(ctx context.Context, actor domain.Actor) error
	List(ctx context.Context, actor domain.Actor, params url.Values) ([]query.Document, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type UserHandler struct {
	users   userUsecaser
	cookies Cookies
	errors  *Errors
}

func NewUserHandler(users userUsecaser, cookies Cookies, errs *Errors) *UserHandler {
	return &UserHandler{users: users, cookies: cookies, errors: errs}
}

type userResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	Role          domain.Role         `json:"role"`
	CreatedAt     time.Time           `json:"createdAt"`
	PublishedJobs []domain.JobSummary `json:"jobsPublished,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GET /api/v1/me
func (h *UserHandler) Me(c *gin.Context) {
	p, err := h.users.Profile(c.Request.Context(), middleware.ActorFrom(c).ID)
	if err != nil {
		h.errors.Respond(c, "profile", err)
		return
	}
	resp := toUserResponse(p.User)
	resp.PublishedJobs = p.PublishedJobs
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// PUT /api/v1/me/update
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.Respond(c, "update profile", domain.Invalid("", "%v", err))
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), middleware.ActorFrom(c).ID, req.Name, req.Email)
	if err != nil {
		h.errors.Respond(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toUserResponse(u)})
}

// DELETE /api/v1/me/delete
func (h *UserHandler) DeleteMe(c *gin.Context) {
	if err := h.users.DeleteMe(c.Request.Context(), middleware.ActorFrom(c)); err != nil {
		h.errors.Respond(c, "delete account", err)
		return
	}
	h.cookies.clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Your account has been deleted."})
}

// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	docs, err := h.users.List(c.Request.Context(), middleware.ActorFrom(c), c.Request.URL.Query())
	if err != nil {
		h.errors.Respond(c, "list users", err)
		return
	}
	sendList(c, docs)
}

// DELETE /api/v1/user/:id/delete
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		h.errors.Respond(c, "delete user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User is deleted by Admin."})
}
