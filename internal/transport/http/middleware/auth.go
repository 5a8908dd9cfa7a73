package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/jobbee-api/internal/authz"
	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	ctxlog "github.com/ErlanBelekov/jobbee-api/internal/log"
	"github.com/ErlanBelekov/jobbee-api/internal/token"
)

const (
	errUnauthorized = "Login first to access this resource."

	// CookieName carries the session token for browser clients.
	CookieName = "token"
	// ClearedCookie is the value written on logout.
	ClearedCookie = "none"

	actorKey  = "actor"
	claimsKey = "claims"
)

// Authenticator resolves a raw session token to the acting user.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (domain.Actor, token.Claims, error)
}

// ErrorFunc writes the response for an error that is not a credential
// failure, such as the user store being down while the session is resolved.
type ErrorFunc func(c *gin.Context, op string, err error)

// Auth accepts a Bearer token, falling back to the session cookie, and sets
// the actor and claims in the gin context. Only unauthenticated errors
// become 401; anything else goes to fail.
func Auth(a Authenticator, fail ErrorFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": errUnauthorized})
			return
		}

		actor, claims, err := a.Authenticate(c.Request.Context(), raw)
		if errors.Is(err, domain.ErrUnauthenticated) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": errUnauthorized})
			return
		}
		if err != nil {
			fail(c, "authenticate", err)
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Set(claimsKey, claims)
		c.Request = c.Request.WithContext(ctxlog.WithUserID(c.Request.Context(), actor.ID))
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(CookieName); err == nil && v != ClearedCookie {
		return v
	}
	return ""
}

// RequireRoles runs after Auth and rejects actors whose role the policy for
// op does not admit.
func RequireRoles(op authz.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := authz.Allow(ActorFrom(c), authz.RolesFor(op), "")
		if !d.Allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": d.Reason})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the actor set by Auth, or the zero Actor on open routes.
func ActorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorKey); ok {
		return v.(domain.Actor)
	}
	return domain.Actor{}
}

func ClaimsFrom(c *gin.Context) token.Claims {
	if v, ok := c.Get(claimsKey); ok {
		return v.(token.Claims)
	}
	return token.Claims{}
}
