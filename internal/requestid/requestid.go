package requestid

import (
	"context"
	"regexp"

	"github.com/google/uuid"
)

const Header = "X-Request-ID"

type ctxKey struct{}

var acceptable = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// New generates a random UUID v4 request ID.
func New() string {
	return uuid.NewString()
}

// FromHeader keeps a caller-supplied id when it is safe to echo into logs and
// response headers, and generates a fresh one otherwise.
func FromHeader(v string) string {
	if acceptable.MatchString(v) {
		return v
	}
	return New()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from ctx. Returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
