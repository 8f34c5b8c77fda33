// Package query translates listing query strings into SQL. It is the
// counterpart of the source system's "advanced results" layer: reserved
// params select/sort/page/limit shape the query, every other param is a
// filter, and comparison operators ride in a [op] suffix on the key,
// e.g. ?averageCost[lte]=10000&careers[in]=Business.
//
// Column access is whitelist-only: each resource hands Build a map from
// public parameter names to SQL columns, and anything outside it is a 400.
package query

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/campdirectory/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
)

var reserved = map[string]bool{
	"select":  true,
	"sort":    true,
	"page":    true,
	"limit":   true,
	"include": true,
}

// keyRe splits "field[op]" into field and op; a bare "field" matches with
// an empty op.
var keyRe = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9]*)(?:\[(gt|gte|lt|lte|in)\])?$`)

var sqlOps = map[string]string{
	"":    "=",
	"gt":  ">",
	"gte": ">=",
	"lt":  "<",
	"lte": "<=",
}

// Options configures Build for one resource listing.
type Options struct {
	// Table is the FROM target; may carry a JOIN clause.
	Table string
	// Fields maps public parameter names to SQL columns. Qualify the
	// columns when Table contains a join.
	Fields map[string]string
	// ArrayFields marks fields stored as jsonb arrays; equality and "in"
	// on them test membership instead of comparing the whole column.
	ArrayFields map[string]bool
	// AllColumns is the projection used when no select param is given.
	// Defaults to "*".
	AllColumns string
	// DefaultSort is the ORDER BY used when no sort param is given.
	DefaultSort string
}

// Page names a page in the pagination block.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination is attached to every listing response.
type Pagination struct {
	Next  *Page `json:"next,omitempty"`
	Prev  *Page `json:"prev,omitempty"`
	Total int   `json:"total"`
}

// Built is a parsed listing query, ready to be rendered into SQL.
type Built struct {
	columns string
	table   string
	where   string // "" or " WHERE ..."; bindvars already in $N form
	orderBy string
	Args    []any
	Page    int
	Limit   int
}

// Build parses values against opt. It returns a 400-carrying error on any
// parameter that does not map to a whitelisted field.
func Build(values url.Values, opt Options) (*Built, error) {
	if opt.AllColumns == "" {
		opt.AllColumns = "*"
	}
	if opt.DefaultSort == "" {
		opt.DefaultSort = "created_at DESC, id DESC"
	}

	b := &Built{table: opt.Table}

	// Filters: everything that is not a reserved param. Keys are walked
	// in sorted order so the rendered SQL is stable.
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var conds []string
	var args []any
	hasIn := false
	for _, key := range keys {
		vals := values[key]
		if reserved[key] || len(vals) == 0 {
			continue
		}
		m := keyRe.FindStringSubmatch(key)
		if m == nil {
			return nil, apperr.BadRequest("Invalid query parameter '%s'", key)
		}
		field, op := m[1], m[2]
		col, ok := opt.Fields[field]
		if !ok {
			return nil, apperr.BadRequest("Cannot filter on field '%s'", field)
		}
		if opt.ArrayFields[field] {
			if op != "" && op != "in" {
				return nil, apperr.BadRequest("Cannot filter on field '%s' with operator '%s'", field, op)
			}
			list := splitValues(vals)
			conds = append(conds, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM jsonb_array_elements_text(%s) _e WHERE _e IN (?))", col))
			args = append(args, list)
			hasIn = true
			continue
		}
		if op == "in" {
			list := splitValues(vals)
			conds = append(conds, fmt.Sprintf("%s IN (?)", col))
			args = append(args, list)
			hasIn = true
			continue
		}
		conds = append(conds, fmt.Sprintf("%s %s ?", col, sqlOps[op]))
		args = append(args, parseValue(vals[0]))
	}
	if len(conds) > 0 {
		where := strings.Join(conds, " AND ")
		if hasIn {
			expanded, expandedArgs, err := sqlx.In(where, args...)
			if err != nil {
				return nil, apperr.BadRequest("Invalid filter value: %s", err.Error())
			}
			where, args = expanded, expandedArgs
		}
		b.where = " WHERE " + sqlx.Rebind(sqlx.DOLLAR, where)
		b.Args = args
	}

	// Field selection. The id column is always included so responses stay
	// addressable.
	b.columns = opt.AllColumns
	if sel := values.Get("select"); sel != "" {
		cols := []string{opt.Fields["id"]}
		if cols[0] == "" {
			cols[0] = "id"
		}
		for _, f := range strings.Split(sel, ",") {
			f = strings.TrimSpace(f)
			if f == "" || f == "id" {
				continue
			}
			col, ok := opt.Fields[f]
			if !ok {
				return nil, apperr.BadRequest("Cannot select field '%s'", f)
			}
			cols = append(cols, col)
		}
		b.columns = strings.Join(cols, ", ")
	}

	// Sorting.
	b.orderBy = opt.DefaultSort
	if sort := values.Get("sort"); sort != "" {
		var terms []string
		for _, f := range strings.Split(sort, ",") {
			f = strings.TrimSpace(f)
			dir := "ASC"
			if strings.HasPrefix(f, "-") {
				f = f[1:]
				dir = "DESC"
			}
			col, ok := opt.Fields[f]
			if !ok {
				return nil, apperr.BadRequest("Cannot sort on field '%s'", f)
			}
			terms = append(terms, col+" "+dir)
		}
		b.orderBy = strings.Join(terms, ", ")
	}

	// Pagination.
	b.Page = intParam(values, "page", DefaultPage)
	if b.Page < 1 {
		b.Page = 1
	}
	b.Limit = intParam(values, "limit", DefaultLimit)
	if b.Limit < 1 {
		b.Limit = DefaultLimit
	}

	return b, nil
}

// SelectSQL renders the full listing query.
func (b *Built) SelectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %d OFFSET %d",
		b.columns, b.table, b.where, b.orderBy, b.Limit, (b.Page-1)*b.Limit)
}

// CountSQL renders the matching-rows count for the same filters.
func (b *Built) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.table, b.where)
}

// Paginate computes the pagination block for a total row count.
func (b *Built) Paginate(total int) Pagination {
	p := Pagination{Total: total}
	if b.Page*b.Limit < total {
		p.Next = &Page{Page: b.Page + 1, Limit: b.Limit}
	}
	if b.Page > 1 {
		p.Prev = &Page{Page: b.Page - 1, Limit: b.Limit}
	}
	return p
}

// Run builds and executes a listing in one step: count, select, paginate.
func Run[T any](ctx context.Context, db *sqlx.DB, values url.Values, opt Options) ([]T, Pagination, error) {
	b, err := Build(values, opt)
	if err != nil {
		return nil, Pagination{}, err
	}

	var total int
	if err := db.GetContext(ctx, &total, b.CountSQL(), b.Args...); err != nil {
		return nil, Pagination{}, fmt.Errorf("query: count: %w", err)
	}

	items := []T{}
	if err := db.SelectContext(ctx, &items, b.SelectSQL(), b.Args...); err != nil {
		return nil, Pagination{}, fmt.Errorf("query: select: %w", err)
	}

	return items, b.Paginate(total), nil
}

// splitValues flattens repeated params and comma lists into one slice, so
// ?careers[in]=Business,UI/UX and ?careers[in]=Business&careers[in]=UI/UX
// read the same.
func splitValues(vals []string) []any {
	var out []any
	for _, v := range vals {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseValue types a raw filter value so numeric and boolean comparisons
// bind with the right Postgres type.
func parseValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if t, err := strconv.ParseBool(s); err == nil {
		return t
	}
	return s
}

func intParam(values url.Values, key string, def int) int {
	v := values.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
