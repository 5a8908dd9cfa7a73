// Package query turns untyped list-endpoint parameters into a FilterSpec and
// applies it to any store that can filter, sort, project, search and page.
package query

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	maxPage      = 100_000
)

var reservedKeys = []string{"sort", "fields", "q", "limit", "page"}

// field or field[op]; dots allow nested paths such as location.city.
var filterKeyRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)(?:\[([A-Za-z]+)\])?$`)

type Predicate struct {
	Field  string
	Op     Operator
	Values []string // exactly one value unless Op is OpIn
}

type SortKey struct {
	Field string
	Desc  bool
}

// FilterSpec is the typed form of a list request. It lives for one request.
type FilterSpec struct {
	Predicates []Predicate
	Sort       []SortKey
	Fields     []string // explicit allow-list; empty means every field not in Exclude
	Exclude    []string
	Search     string
	Page       int
	Limit      int
	Skip       int
}

// Defaults carries the per-collection fallbacks used when a parameter is absent.
type Defaults struct {
	Sort    string   // e.g. "-postingDate"
	Exclude []string // e.g. the internal version marker
}

func Parse(params url.Values, d Defaults) (FilterSpec, error) {
	spec := FilterSpec{Exclude: d.Exclude}

	preds, err := parsePredicates(params)
	if err != nil {
		return FilterSpec{}, err
	}
	spec.Predicates = preds

	spec.Sort = parseSort(params.Get("sort"))
	if len(spec.Sort) == 0 {
		spec.Sort = parseSort(d.Sort)
	}

	spec.Fields = splitList(params.Get("fields"))

	if q := strings.TrimSpace(params.Get("q")); q != "" {
		spec.Search = strings.Join(strings.Fields(strings.ReplaceAll(q, "-", " ")), " ")
	}

	spec.Page = positiveInt(params.Get("page"), DefaultPage)
	spec.Page = min(spec.Page, maxPage)
	spec.Limit = min(positiveInt(params.Get("limit"), DefaultLimit), MaxLimit)
	spec.Skip = (spec.Page - 1) * spec.Limit

	return spec, nil
}

func parsePredicates(params url.Values) ([]Predicate, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if !slices.Contains(reservedKeys, k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var preds []Predicate
	for _, key := range keys {
		m := filterKeyRe.FindStringSubmatch(key)
		if m == nil {
			return nil, domain.Invalid(key, "malformed filter expression")
		}
		field, op := m[1], OpEq
		if m[2] != "" {
			op = Operator(strings.ToLower(m[2]))
			if !op.comparison() {
				return nil, domain.Invalid(key, "unsupported filter operator %q", m[2])
			}
		}

		if op == OpIn {
			var values []string
			for _, raw := range params[key] {
				values = append(values, splitList(raw)...)
			}
			if len(values) == 0 {
				return nil, domain.Invalid(key, "in filter needs at least one value")
			}
			preds = append(preds, Predicate{Field: field, Op: op, Values: values})
			continue
		}

		for _, v := range params[key] {
			preds = append(preds, Predicate{Field: field, Op: op, Values: []string{v}})
		}
	}
	return preds, nil
}

func (op Operator) comparison() bool {
	switch op {
	case OpGt, OpGte, OpLt, OpLte, OpIn:
		return true
	}
	return false
}

func parseSort(raw string) []SortKey {
	var keys []SortKey
	for _, token := range splitList(raw) {
		desc := strings.HasPrefix(token, "-")
		field := strings.TrimLeft(token, "-+")
		if field == "" {
			continue
		}
		keys = append(keys, SortKey{Field: field, Desc: desc})
	}
	return keys
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
