package query

import (
	"fmt"
	"strings"
)

// Predicate is a node of a WHERE clause.
type Predicate interface {
	isPredicate()
}

// Equals matches a column exactly.
type Equals struct {
	Field string
	Value any
}

// Contains matches rows where any of Fields contains Value as a substring.
// Matching uses SQLite LIKE, which ignores ASCII case.
type Contains struct {
	Fields []string
	Value  string
}

// And is the conjunction of its predicates. An empty And is true.
type And struct {
	Predicates []Predicate
}

func (Equals) isPredicate()   {}
func (Contains) isPredicate() {}
func (And) isPredicate()      {}

// Compile renders a predicate as a SQL fragment with ? placeholders.
func Compile(p Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case Contains:
		return compileContains(pred)
	case *Contains:
		return compileContains(*pred)
	case And:
		return compileAnd(pred)
	case *And:
		return compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq Equals) (string, []any, error) {
	if eq.Field == "" {
		return "", nil, fmt.Errorf("equals: empty field")
	}
	return eq.Field + " = ?", []any{eq.Value}, nil
}

func compileContains(c Contains) (string, []any, error) {
	if len(c.Fields) == 0 {
		return "", nil, fmt.Errorf("contains: no fields")
	}

	pattern := "%" + EscapeLike(c.Value) + "%"
	parts := make([]string, len(c.Fields))
	args := make([]any, len(c.Fields))
	for i, f := range c.Fields {
		parts[i] = f + ` LIKE ? ESCAPE '\'`
		args[i] = pattern
	}

	if len(parts) == 1 {
		return parts[0], args, nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

func compileAnd(and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	var parts []string
	var args []any
	for _, p := range and.Predicates {
		sql, a, err := Compile(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		args = append(args, a...)
	}
	return strings.Join(parts, " AND "), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so s only ever matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
