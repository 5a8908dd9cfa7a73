package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
	"github.com/ErlanBelekov/jobbee-api/internal/token"
	"github.com/ErlanBelekov/jobbee-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/jobbee-api/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---- fakes ----

type fakeAuthUsecase struct {
	register       func(ctx context.Context, in usecase.RegisterInput) (*usecase.Session, error)
	login          func(ctx context.Context, email, password string) (*usecase.Session, error)
	logout         func(ctx context.Context, claims token.Claims) error
	forgotPassword func(ctx context.Context, email string) error
	resetPassword  func(ctx context.Context, plain, newPassword string) (*usecase.Session, error)
	updatePassword func(ctx context.Context, userID, current, next string) (*usecase.Session, error)
}

func (f *fakeAuthUsecase) Register(ctx context.Context, in usecase.RegisterInput) (*usecase.Session, error) {
	return f.register(ctx, in)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*usecase.Session, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, claims token.Claims) error {
	return f.logout(ctx, claims)
}

func (f *fakeAuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	return f.forgotPassword(ctx, email)
}

func (f *fakeAuthUsecase) ResetPassword(ctx context.Context, plain, newPassword string) (*usecase.Session, error) {
	return f.resetPassword(ctx, plain, newPassword)
}

func (f *fakeAuthUsecase) UpdatePassword(ctx context.Context, userID, current, next string) (*usecase.Session, error) {
	return f.updatePassword(ctx, userID, current, next)
}

type fakeJobUsecase struct {
	list      func(ctx context.Context, params url.Values) ([]query.Document, error)
	get       func(ctx context.Context, id, slug string) (*domain.Job, error)
	create    func(ctx context.Context, actor domain.Actor, in usecase.JobInput) (*domain.Job, error)
	update    func(ctx context.Context, actor domain.Actor, id string, in usecase.JobInput) (*domain.Job, error)
	delete    func(ctx context.Context, actor domain.Actor, id string) error
	inRadius  func(ctx context.Context, zipcode string, miles float64) ([]*domain.Job, error)
	stats     func(ctx context.Context, topic string) ([]domain.JobStat, error)
	published func(ctx context.Context, actor domain.Actor) ([]*domain.Job, error)
	applied   func(ctx context.Context, actor domain.Actor) ([]*domain.Job, error)
}

func (f *fakeJobUsecase) List(ctx context.Context, params url.Values) ([]query.Document, error) {
	return f.list(ctx, params)
}

func (f *fakeJobUsecase) Get(ctx context.Context, id, slug string) (*domain.Job, error) {
	return f.get(ctx, id, slug)
}

func (f *fakeJobUsecase) Create(ctx context.Context, actor domain.Actor, in usecase.JobInput) (*domain.Job, error) {
	return f.create(ctx, actor, in)
}

func (f *fakeJobUsecase) Update(ctx context.Context, actor domain.Actor, id string, in usecase.JobInput) (*domain.Job, error) {
	return f.update(ctx, actor, id, in)
}

func (f *fakeJobUsecase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return f.delete(ctx, actor, id)
}

func (f *fakeJobUsecase) InRadius(ctx context.Context, zipcode string, miles float64) ([]*domain.Job, error) {
	return f.inRadius(ctx, zipcode, miles)
}

func (f *fakeJobUsecase) Stats(ctx context.Context, topic string) ([]domain.JobStat, error) {
	return f.stats(ctx, topic)
}

func (f *fakeJobUsecase) Published(ctx context.Context, actor domain.Actor) ([]*domain.Job, error) {
	return f.published(ctx, actor)
}

func (f *fakeJobUsecase) Applied(ctx context.Context, actor domain.Actor) ([]*domain.Job, error) {
	return f.applied(ctx, actor)
}

type fakeApplier struct {
	apply func(ctx context.Context, actor domain.Actor, jobID string, file *usecase.ResumeFile) (string, error)
}

func (f *fakeApplier) Apply(ctx context.Context, actor domain.Actor, jobID string, file *usecase.ResumeFile) (string, error) {
	return f.apply(ctx, actor, jobID, file)
}

type fakeUserUsecase struct {
	profile       func(ctx context.Context, userID string) (*usecase.Profile, error)
	updateProfile func(ctx context.Context, userID, name, email string) (*domain.User, error)
	deleteMe      func(ctx context.Context, actor domain.Actor) error
	list          func(ctx context.Context, actor domain.Actor, params url.Values) ([]query.Document, error)
	delete        func(ctx context.Context, actor domain.Actor, id string) error
}

func (f *fakeUserUsecase) Profile(ctx context.Context, userID string) (*usecase.Profile, error) {
	return f.profile(ctx, userID)
}

func (f *fakeUserUsecase) UpdateProfile(ctx context.Context, userID, name, email string) (*domain.User, error) {
	return f.updateProfile(ctx, userID, name, email)
}

func (f *fakeUserUsecase) DeleteMe(ctx context.Context, actor domain.Actor) error {
	return f.deleteMe(ctx, actor)
}

func (f *fakeUserUsecase) List(ctx context.Context, actor domain.Actor, params url.Values) ([]query.Document, error) {
	return f.list(ctx, actor, params)
}

func (f *fakeUserUsecase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return f.delete(ctx, actor, id)
}

// fakeAuthenticator admits every token as the configured actor, unless err
// is set.
type fakeAuthenticator struct {
	actor domain.Actor
	err   error
}

func (f fakeAuthenticator) Authenticate(context.Context, string) (domain.Actor, token.Claims, error) {
	if f.err != nil {
		return domain.Actor{}, token.Claims{}, f.err
	}
	return f.actor, token.Claims{UserID: f.actor.ID, ID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// ---- helpers ----

var (
	employer = domain.Actor{ID: "emp-1", Name: "Acme HR", Role: domain.RoleEmployer}
	admin    = domain.Actor{ID: "admin-1", Name: "Root", Role: domain.RoleAdmin}
	alice    = domain.Actor{ID: "user-1", Name: "Alice Smith", Role: domain.RoleUser}
)

var cookies = handler.Cookies{TTL: time.Hour}

func testErrors(verbose bool) *handler.Errors {
	return handler.NewErrors(slog.New(slog.NewTextHandler(io.Discard, nil)), verbose)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test")
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionFor(userID string) *usecase.Session {
	return &usecase.Session{
		Token:  "signed.jwt.value",
		Claims: token.Claims{UserID: userID, ID: "jti-1"},
		User:   &domain.User{ID: userID},
	}
}
