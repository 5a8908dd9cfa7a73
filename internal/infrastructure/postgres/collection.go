package postgres

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ErlanBelekov/jobbee-api/internal/domain"
	"github.com/ErlanBelekov/jobbee-api/internal/query"
)

type kind int

const (
	kindString kind = iota
	kindNumber
	kindInt
	kindTime
	kindBool
	kindUUID
	kindStringArray
	kindJSON // select only
)

type field struct {
	expr   string
	kind   kind
	hidden bool // left out of the default projection
}

// schema maps API field names onto SQL expressions for one table.
// Fields not listed here cannot be filtered, sorted or selected.
type schema struct {
	table   string
	key     string // primary key, always selected and used as sort tie-break
	search  string // tsvector expression; empty disables q
	fields  map[string]field
	ordered []string // default projection order
}

func (s *schema) lookup(name string) (field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Collection implements query.Collection over one table with squirrel.
type Collection struct {
	db     DBTX
	schema *schema

	where   sq.And
	order   []string
	columns []string
	skip    uint64
	limit   uint64
}

func newCollection(db DBTX, s *schema) *Collection {
	return &Collection{db: db, schema: s}
}

func (c *Collection) Where(p query.Predicate) error {
	f, ok := c.schema.lookup(p.Field)
	if !ok || f.kind == kindJSON {
		return domain.Invalid(p.Field, "unknown filter field")
	}

	values := make([]any, 0, len(p.Values))
	for _, raw := range p.Values {
		v, err := bind(f.kind, raw)
		if err != nil {
			return domain.Invalid(p.Field, "%q is not a valid value", raw)
		}
		values = append(values, v)
	}

	if f.kind == kindStringArray {
		return c.whereArray(p, f, values)
	}

	switch p.Op {
	case query.OpEq:
		c.where = append(c.where, sq.Eq{f.expr: values[0]})
	case query.OpGt:
		c.where = append(c.where, sq.Gt{f.expr: values[0]})
	case query.OpGte:
		c.where = append(c.where, sq.GtOrEq{f.expr: values[0]})
	case query.OpLt:
		c.where = append(c.where, sq.Lt{f.expr: values[0]})
	case query.OpLte:
		c.where = append(c.where, sq.LtOrEq{f.expr: values[0]})
	case query.OpIn:
		c.where = append(c.where, sq.Eq{f.expr: values})
	default:
		return domain.Invalid(p.Field, "unsupported filter operator %q", p.Op)
	}
	return nil
}

// Array columns follow document-store semantics: eq means "contains",
// in means "overlaps".
func (c *Collection) whereArray(p query.Predicate, f field, values []any) error {
	switch p.Op {
	case query.OpEq:
		c.where = append(c.where, sq.Expr("? = ANY("+f.expr+")", values[0]))
	case query.OpIn:
		strs := make([]string, len(values))
		for i, v := range values {
			strs[i] = v.(string)
		}
		c.where = append(c.where, sq.Expr(f.expr+" && ?", strs))
	default:
		return domain.Invalid(p.Field, "operator %q is not supported on list fields", p.Op)
	}
	return nil
}

func (c *Collection) OrderBy(keys []query.SortKey) error {
	c.order = c.order[:0]
	for _, k := range keys {
		f, ok := c.schema.lookup(k.Field)
		if !ok || f.kind == kindJSON || f.kind == kindStringArray {
			return domain.Invalid("sort", "cannot sort by %q", k.Field)
		}
		dir := " ASC"
		if k.Desc {
			dir = " DESC"
		}
		c.order = append(c.order, f.expr+dir)
	}
	c.order = append(c.order, c.schema.key+" DESC")
	return nil
}

func (c *Collection) Select(fields, exclude []string) error {
	c.columns = []string{c.schema.key + `::text AS "id"`}

	if len(fields) == 0 {
		for _, name := range c.schema.ordered {
			f := c.schema.fields[name]
			if f.hidden || slices.Contains(exclude, name) {
				continue
			}
			c.columns = append(c.columns, column(name, f))
		}
		return nil
	}

	for _, name := range fields {
		if name == "id" {
			continue
		}
		f, ok := c.schema.lookup(name)
		if !ok {
			return domain.Invalid("fields", "unknown field %q", name)
		}
		c.columns = append(c.columns, column(name, f))
	}
	return nil
}

func (c *Collection) Search(text string) error {
	if c.schema.search == "" {
		return domain.Invalid("q", "text search is not available here")
	}
	c.where = append(c.where, sq.Expr(c.schema.search+" @@ phraseto_tsquery('english', ?)", text))
	return nil
}

func (c *Collection) Skip(n int)  { c.skip = uint64(max(n, 0)) }
func (c *Collection) Limit(n int) { c.limit = uint64(max(n, 0)) }

// SQL renders the accumulated query without running it.
func (c *Collection) SQL() (string, []any, error) {
	columns := c.columns
	if len(columns) == 0 {
		columns = []string{c.schema.key + `::text AS "id"`}
	}

	b := psql.Select(columns...).From(c.schema.table)
	if len(c.where) > 0 {
		b = b.Where(c.where)
	}
	if len(c.order) > 0 {
		b = b.OrderBy(c.order...)
	}
	if c.limit > 0 {
		b = b.Limit(c.limit)
	}
	if c.skip > 0 {
		b = b.Offset(c.skip)
	}
	return b.ToSql()
}

func (c *Collection) Execute(ctx context.Context) ([]query.Document, error) {
	sql, args, err := c.SQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", c.schema.table, err)
	}

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.schema.table, err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", c.schema.table, err)
	}

	docs := make([]query.Document, len(maps))
	for i, m := range maps {
		docs[i] = query.Document(m)
	}
	return docs, nil
}

func column(name string, f field) string {
	if f.kind == kindUUID {
		return fmt.Sprintf("%s::text AS %q", f.expr, name)
	}
	return fmt.Sprintf("%s AS %q", f.expr, name)
}

func bind(k kind, raw string) (any, error) {
	switch k {
	case kindNumber:
		return strconv.ParseFloat(raw, 64)
	case kindInt:
		return strconv.Atoi(raw)
	case kindBool:
		return strconv.ParseBool(raw)
	case kindUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	case kindTime:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse(time.DateOnly, raw)
	default:
		return raw, nil
	}
}
