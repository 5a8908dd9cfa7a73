package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
)

const (
	errInternalServer = "Internal server error"
	errUpstream       = "A required service is unavailable, please try again later"
)

// Errors turns taxonomy errors into status codes and the error envelope.
// With verbose set (ENV=local) every response also carries the full error
// chain and stack.
type Errors struct {
	logger  *slog.Logger
	verbose bool
}

func NewErrors(logger *slog.Logger, verbose bool) *Errors {
	return &Errors{logger: logger.With("component", "http_errors"), verbose: verbose}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (e *Errors) Respond(c *gin.Context, op string, err error) {
	status := statusOf(err)
	body := gin.H{"success": false}

	switch {
	case status == http.StatusInternalServerError:
		e.logger.ErrorContext(c.Request.Context(), op, "error", err)
		body["error"] = errInternalServer
	case status == http.StatusServiceUnavailable:
		e.logger.ErrorContext(c.Request.Context(), op, "error", err)
		body["error"] = errUpstream
	default:
		var fe *domain.FieldError
		if errors.As(err, &fe) {
			body["error"] = fe.Msg
			if fe.Field != "" {
				body["field"] = fe.Field
			}
		} else {
			body["error"] = errors.UnwrapAll(err).Error()
		}
	}

	if e.verbose {
		body["detail"] = fmt.Sprintf("%+v", err)
	}
	c.AbortWithStatusJSON(status, body)
}
