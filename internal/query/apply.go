package query

import (
	"context"
	"fmt"
)

// Document is one result row keyed by API field name, holding only the
// projected fields.
type Document map[string]any

// Collection is the minimal capability a store needs to serve list queries.
// Implementations accumulate state; Execute runs the query once.
type Collection interface {
	Where(p Predicate) error
	OrderBy(keys []SortKey) error
	Select(fields, exclude []string) error
	Search(text string) error
	Skip(n int)
	Limit(n int)
	Execute(ctx context.Context) ([]Document, error)
}

// Apply runs spec against c in the fixed order filter, sort, projection,
// search, skip, limit. The result never holds more than the clamped limit.
func Apply(ctx context.Context, c Collection, spec FilterSpec) ([]Document, error) {
	for _, p := range spec.Predicates {
		if err := c.Where(p); err != nil {
			return nil, err
		}
	}

	if err := c.OrderBy(spec.Sort); err != nil {
		return nil, err
	}

	if err := c.Select(spec.Fields, spec.Exclude); err != nil {
		return nil, err
	}

	if spec.Search != "" {
		if err := c.Search(spec.Search); err != nil {
			return nil, err
		}
	}

	limit, skip := window(spec)
	c.Skip(skip)
	c.Limit(limit)

	docs, err := c.Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// window clamps the page size into [1, MaxLimit]. When a page number is set
// the skip is derived from it and the clamped size, so the two always agree.
func window(spec FilterSpec) (limit, skip int) {
	limit = spec.Limit
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	if spec.Page > 0 {
		return limit, (min(spec.Page, maxPage) - 1) * limit
	}
	return limit, max(spec.Skip, 0)
}
