package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/token"
	"github.com/ErlanBelekov/jobbee-api/internal/transport/http/middleware"
	"github.com/ErlanBelekov/jobbee-api/internal/usecase"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.Session, error)
	Login(ctx context.Context, email, password string) (*usecase.Session, error)
	Logout(ctx context.Context, claims token.Claims) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, plain, newPassword string) (*usecase.Session, error)
	UpdatePassword(ctx context.Context, userID, current, next string) (*usecase.Session, error)
}

// Cookies controls the session cookie written next to every issued token.
type Cookies struct {
	TTL    time.Duration
	Secure bool
}

func (k Cookies) set(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, value, int(k.TTL.Seconds()), "/", "", k.Secure, true)
}

// clear overwrites the cookie with an already expired placeholder.
func (k Cookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieName, middleware.ClearedCookie, -1, "/", "", k.Secure, true)
}

type AuthHandler struct {
	authUsecase authUsecaser
	cookies     Cookies
	errors      *Errors
}

func NewAuthHandler(authUsecase authUsecaser, cookies Cookies, errs *Errors) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, cookies: cookies, errors: errs}
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetRequest struct {
	Password        string `json:"password"        binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required"`
}

// sendSession writes the token both as a cookie and in the body.
func (h *AuthHandler) sendSession(c *gin.Context, status int, s *usecase.Session) {
	h.cookies.set(c, s.Token)
	c.JSON(status, gin.H{"success": true, "token": s.Token})
}

// POST /api/v1/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.Respond(c, "register", domain.Invalid("", "%v", err))
		return
	}

	s, err := h.authUsecase.Register(c.Request.Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.errors.Respond(c, "register", err)
		return
	}
	h.sendSession(c, http.StatusOK, s)
}

// POST /api/v1/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)
	if req.Email == "" || req.Password == "" {
		h.errors.Respond(c, "login", domain.Invalid("", "Please enter Email and Password!"))
		return
	}

	s, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.errors.Respond(c, "login", err)
		return
	}
	h.sendSession(c, http.StatusOK, s)
}

// GET /api/v1/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUsecase.Logout(c.Request.Context(), middleware.ClaimsFrom(c)); err != nil {
		h.errors.Respond(c, "logout", err)
		return
	}
	h.cookies.clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully."})
}

// POST /api/v1/password/forgot
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.Respond(c, "forgot password", domain.Invalid("email", "Please enter your email address."))
		return
	}

	if err := h.authUsecase.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.errors.Respond(c, "forgot password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent to: " + req.Email})
}

// PUT /api/v1/password/reset/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.Respond(c, "reset password", domain.Invalid("password", "Please enter the new password twice."))
		return
	}
	if req.Password != req.ConfirmPassword {
		h.errors.Respond(c, "reset password", domain.Invalid("confirmPassword", "Password does not match."))
		return
	}

	s, err := h.authUsecase.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		h.errors.Respond(c, "reset password", err)
		return
	}
	h.sendSession(c, http.StatusOK, s)
}

// PUT /api/v1/password/update
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.Respond(c, "update password", domain.Invalid("", "Please enter the current and the new password."))
		return
	}

	actor := middleware.ActorFrom(c)
	s, err := h.authUsecase.UpdatePassword(c.Request.Context(), actor.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.errors.Respond(c, "update password", err)
		return
	}
	h.sendSession(c, http.StatusOK, s)
}
