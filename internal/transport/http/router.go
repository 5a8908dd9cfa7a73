package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ErlanBelekov/jobbee-api/internal/authz"
	"github.com/ErlanBelekov/jobbee-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/jobbee-api/internal/transport/http/middleware"
)

type Handlers struct {
	Auth *handler.AuthHandler
	Jobs *handler.JobHandler
	User *handler.UserHandler
}

// RouterConfig carries the cross-cutting pieces of the engine.
type RouterConfig struct {
	Logger        *slog.Logger
	Authenticator middleware.Authenticator
	// Errors answers requests whose session could not be resolved for a
	// reason other than bad credentials.
	Errors *handler.Errors
	HSTS          bool
	// MaxMultipartMemory is how much of a form is held in memory before
	// gin spills it to temporary files.
	MaxMultipartMemory int64
}

func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	r := gin.New()
	if cfg.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = cfg.MaxMultipartMemory
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(cfg.HSTS))
	r.Use(sloggin.New(cfg.Logger))
	r.Use(middleware.Metrics())

	auth := middleware.Auth(cfg.Authenticator, cfg.Errors.Respond)
	role := middleware.RequireRoles

	api := r.Group("/api/v1")

	// Public job routes
	api.GET("/jobs", h.Jobs.List)
	api.GET("/job/:id/:slug", h.Jobs.Get)
	api.GET("/jobs/:zipcode/:distance", h.Jobs.InRadius)
	api.GET("/stats/:topic", h.Jobs.Stats)

	// Job management
	api.POST("/job/new", auth, role(authz.OpCreateJob), h.Jobs.Create)
	api.PUT("/job/:id", auth, role(authz.OpUpdateJob), h.Jobs.Update)
	api.DELETE("/job/:id", auth, role(authz.OpDeleteJob), h.Jobs.Delete)
	api.PUT("/job/:id/apply", auth, h.Jobs.Apply)

	// Accounts
	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.GET("/logout", auth, h.Auth.Logout)
	api.POST("/password/forgot", h.Auth.ForgotPassword)
	api.PUT("/password/reset/:token", h.Auth.ResetPassword)
	api.PUT("/password/update", auth, h.Auth.UpdatePassword)

	me := api.Group("", auth)
	me.GET("/me", h.User.Me)
	me.PUT("/me/update", h.User.UpdateMe)
	me.DELETE("/me/delete", h.User.DeleteMe)
	me.GET("/jobs/applied", role(authz.OpAppliedJobs), h.Jobs.Applied)
	me.GET("/jobs/published", role(authz.OpPublishedJobs), h.Jobs.Published)

	// Admin
	me.GET("/users", role(authz.OpListUsers), h.User.List)
	me.DELETE("/user/:id/delete", role(authz.OpDeleteUser), h.User.Delete)

	return r
}
