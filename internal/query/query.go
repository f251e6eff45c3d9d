// Package query turns listing filters into parameterized SQLite statements.
//
// Every statement it produces orders by the table's designated field
// descending with id descending as the tiebreaker, and every value is bound
// as a parameter. Nothing from a filter is ever spliced into the SQL text.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit applies when the caller gives no usable limit.
	DefaultLimit = 10
	// MaxLimit bounds every listing.
	MaxLimit = 1000
)

// Filter is the optional set of listing parameters. The zero value lists
// the newest DefaultLimit records.
type Filter struct {
	Category string
	Search   string
	Limit    int
}

// Table describes how one record table is listed.
type Table struct {
	Name     string
	Columns  []string // select list, may contain expressions
	OrderBy  string   // designated descending field
	Category string   // column matched by Filter.Category, empty if unsupported
	Search   []string // columns matched by Filter.Search, empty if unsupported
}

// Statement is a compiled SQL statement and its bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

// ParseLimit coerces a raw query parameter to a usable limit. Like a
// browser's parseInt it reads the leading integer and ignores the rest, so
// "5.5" and "5abc" both give 5. Values with no leading digits and
// non-positive values give DefaultLimit; values above MaxLimit are clamped.
func ParseLimit(raw string) int {
	raw = strings.TrimLeft(raw, " \t\n\r")
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return DefaultLimit
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		// too many digits for an int
		if raw[0] == '-' {
			return DefaultLimit
		}
		return MaxLimit
	}
	return NormalizeLimit(n)
}

// NormalizeLimit applies the same rules as ParseLimit to an int.
func NormalizeLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// Where builds the predicate for a filter against a table. Only an empty
// value leaves a filter out; anything else is matched exactly as given.
// Returns nil when nothing restricts the rows.
func Where(t Table, f Filter) Predicate {
	var preds []Predicate

	if f.Category != "" && t.Category != "" {
		preds = append(preds, Equals{Field: t.Category, Value: f.Category})
	}
	if f.Search != "" && len(t.Search) > 0 {
		preds = append(preds, Contains{Fields: t.Search, Value: f.Search})
	}

	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	default:
		return And{Predicates: preds}
	}
}

// Select compiles the listing statement for a filter.
func Select(t Table, f Filter) (Statement, error) {
	where, args, err := whereClause(Where(t, f))
	if err != nil {
		return Statement{}, fmt.Errorf("select %s: %w", t.Name, err)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT ?",
		strings.Join(t.Columns, ", "),
		t.Name,
		where,
		orderKey(t))
	args = append(args, NormalizeLimit(f.Limit))

	return Statement{SQL: sql, Args: args}, nil
}

// Count compiles a COUNT(*) over the rows a filter matches. The limit is ignored.
func Count(t Table, f Filter) (Statement, error) {
	where, args, err := whereClause(Where(t, f))
	if err != nil {
		return Statement{}, fmt.Errorf("count %s: %w", t.Name, err)
	}
	return Statement{
		SQL:  fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.Name, where),
		Args: args,
	}, nil
}

// CountByCategory compiles one grouped count over the given categories.
// Categories with no rows are absent from the result set.
func CountByCategory(t Table, categories []string) (Statement, error) {
	if t.Category == "" {
		return Statement{}, fmt.Errorf("count by category: %s has no category column", t.Name)
	}
	if len(categories) == 0 {
		return Statement{}, fmt.Errorf("count by category: no categories")
	}

	placeholders := make([]string, len(categories))
	args := make([]any, len(categories))
	for i, c := range categories {
		placeholders[i] = "?"
		args[i] = c
	}

	sql := fmt.Sprintf("SELECT %[1]s, COUNT(*) FROM %[2]s WHERE %[1]s IN (%[3]s) GROUP BY %[1]s ORDER BY %[1]s",
		t.Category, t.Name, strings.Join(placeholders, ", "))
	return Statement{SQL: sql, Args: args}, nil
}

func whereClause(p Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	sql, args, err := Compile(p)
	if err != nil {
		return "", nil, err
	}
	return " WHERE " + sql, args, nil
}

// orderKey is the mandatory ORDER BY: designated field, then id, both descending,
// so rows inserted in the same instant keep a stable order across queries.
func orderKey(t Table) string {
	if t.OrderBy == "" || t.OrderBy == "id" {
		return "id DESC"
	}
	return t.OrderBy + " DESC, id DESC"
}
