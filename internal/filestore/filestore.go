// Package filestore keeps uploaded resumes. Names are flat; callers build
// them so they are unique per (applicant, job).
package filestore

import (
	"context"
	"io"
)

type Store interface {
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, name string) error
}
