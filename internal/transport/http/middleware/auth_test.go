package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/jobbee-api/internal/authz"
	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/requestid"
	"github.com/ErlanBelekov/jobbee-api/internal/token"
	"github.com/ErlanBelekov/jobbee-api/internal/transport/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- fakes ----

type fakeAuthenticator struct {
	authenticate func(ctx context.Context, raw string) (domain.Actor, token.Claims, error)
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, raw string) (domain.Actor, token.Claims, error) {
	return f.authenticate(ctx, raw)
}

// acceptOnly admits exactly one raw token.
func acceptOnly(raw string, actor domain.Actor) *fakeAuthenticator {
	return &fakeAuthenticator{authenticate: func(_ context.Context, got string) (domain.Actor, token.Claims, error) {
		if got != raw {
			return domain.Actor{}, token.Claims{}, domain.ErrTokenInvalid
		}
		return actor, token.Claims{UserID: actor.ID, ID: "jti-1"}, nil
	}}
}

// ---- helpers ----

// failWith500 stands in for the error mapper and records what reached it.
func failWith500(got *error) middleware.ErrorFunc {
	return func(c *gin.Context, _ string, err error) {
		*got = err
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false})
	}
}

func newEngine(a middleware.Authenticator, extra ...gin.HandlerFunc) *gin.Engine {
	var discarded error
	return newEngineWith(a, failWith500(&discarded), extra...)
}

func newEngineWith(a middleware.Authenticator, fail middleware.ErrorFunc, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{middleware.Auth(a, fail)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, "%s/%s", middleware.ActorFrom(c).ID, middleware.ClaimsFrom(c).ID)
	})
	r.GET("/protected", chain...)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var employer = domain.Actor{ID: "emp-1", Role: domain.RoleEmployer}

// ---- tests ----

func TestAuth_MissingCredentials_Returns401(t *testing.T) {
	w := serve(newEngine(acceptOnly("good", employer)), httptest.NewRequest(http.MethodGet, "/protected", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_NonBearerScheme_Returns401(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic good")

	if w := serve(newEngine(acceptOnly("good", employer)), req); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_RejectedToken_Returns401(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer revoked")

	if w := serve(newEngine(acceptOnly("good", employer)), req); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuth_StoreFailureIsNotUnauthorized(t *testing.T) {
	storeErr := errors.New("load session user: connection refused")
	a := &fakeAuthenticator{authenticate: func(context.Context, string) (domain.Actor, token.Claims, error) {
		return domain.Actor{}, token.Claims{}, storeErr
	}}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")

	var got error
	w := serve(newEngineWith(a, failWith500(&got)), req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !errors.Is(got, storeErr) {
		t.Errorf("error passed on = %v, want %v", got, storeErr)
	}
}

func TestAuth_BearerToken_SetsActorAndClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")

	w := serve(newEngine(acceptOnly("good", employer)), req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "emp-1/jti-1" {
		t.Errorf("body = %q, want %q", got, "emp-1/jti-1")
	}
}

func TestAuth_CookieFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: "good"})

	if w := serve(newEngine(acceptOnly("good", employer)), req); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAuth_ClearedCookieIsNoCredential(t *testing.T) {
	called := false
	a := &fakeAuthenticator{authenticate: func(context.Context, string) (domain.Actor, token.Claims, error) {
		called = true
		return employer, token.Claims{}, nil
	}}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: middleware.ClearedCookie})

	w := serve(newEngine(a), req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if called {
		t.Error("authenticator consulted for a cleared cookie")
	}
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		op   authz.Operation
		want int
	}{
		{"employer creates job", domain.RoleEmployer, authz.OpCreateJob, http.StatusOK},
		{"user creates job", domain.RoleUser, authz.OpCreateJob, http.StatusForbidden},
		{"admin lists users", domain.RoleAdmin, authz.OpListUsers, http.StatusOK},
		{"employer lists users", domain.RoleEmployer, authz.OpListUsers, http.StatusForbidden},
		{"user lists applied", domain.RoleUser, authz.OpAppliedJobs, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := domain.Actor{ID: "a-1", Role: tt.role}
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer good")

			w := serve(newEngine(acceptOnly("good", actor), middleware.RequireRoles(tt.op)), req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRequestID_PreservesWellFormedAndReplacesOthers(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "%s", requestid.FromContext(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestid.Header, "abc-123")
	w := serve(r, req)
	if got := w.Header().Get(requestid.Header); got != "abc-123" || w.Body.String() != "abc-123" {
		t.Errorf("request id = %q body = %q, want abc-123", got, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestid.Header, "bad id\nwith newline")
	w = serve(r, req)
	if got := w.Header().Get(requestid.Header); got == "" || got == "bad id\nwith newline" {
		t.Errorf("request id = %q, want a fresh id", got)
	}
}

func TestSecurity_HSTSOnlyWhenEnabled(t *testing.T) {
	for _, hsts := range []bool{true, false} {
		r := gin.New()
		r.Use(middleware.Security(hsts))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("missing nosniff header")
		}
		if got := w.Header().Get("Strict-Transport-Security") != ""; got != hsts {
			t.Errorf("hsts=%v: header present = %v", hsts, got)
		}
	}
}
