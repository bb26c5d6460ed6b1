// Package update builds partial single-row UPDATE statements from untrusted
// field maps. Table and column names are validated against a static
// allow-list before they influence query text; values only ever travel as
// bound parameters.
package update

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrForbiddenTable  = errors.New("update: forbidden target table")
	ErrUnknownField    = errors.New("update: unknown field")
	ErrEmptyUpdate     = errors.New("update: no fields to update")
	ErrInvalidValue    = errors.New("update: field value must be a scalar")
	ErrInvalidPassword = errors.New("update: password must be a non-empty string")
)

// Field is one column assignment, in the order the client supplied it.
type Field struct {
	Name  string
	Value any
}

// Registry maps a mutable table to its mutable columns. Anything absent is
// rejected before the storage layer is reached.
type Registry map[string][]string

// DefaultRegistry lists the tables exposed through the generic update route.
// Presently only users; articles have their own ownership-checked route.
func DefaultRegistry() Registry {
	return Registry{
		"users": {"name", "email", "password"},
	}
}

// Statement is a validated update: table and columns come from the registry,
// password values have already been hashed.
type Statement struct {
	Table  string
	Fields []Field
}

// Columns returns the updated column names in statement order. Safe to echo
// to clients; values are not included.
func (s Statement) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// SQL renders the statement as parameterized query text plus its bound
// values. The id parameter is always last: args here cover $1..$n and the
// executor appends the id as $n+1.
func (s Statement) SQL() (string, []any) {
	sets := make([]string, len(s.Fields))
	args := make([]any, len(s.Fields))
	for i, f := range s.Fields {
		sets[i] = fmt.Sprintf("%s = $%d", f.Name, i+1)
		args[i] = f.Value
	}
	query := fmt.Sprintf("update %s set %s where id = $%d", s.Table, strings.Join(sets, ", "), len(s.Fields)+1)
	return query, args
}

// Build validates table and fields against the registry and routes password
// values through hash. Field order is preserved.
func (r Registry) Build(table string, fields []Field, hash func(string) (string, error)) (Statement, error) {
	allowed, ok := r[table]
	if !ok {
		return Statement{}, fmt.Errorf("%w: %q", ErrForbiddenTable, table)
	}
	if len(fields) == 0 {
		return Statement{}, ErrEmptyUpdate
	}

	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if !contains(allowed, f.Name) {
			return Statement{}, fmt.Errorf("%w: %q", ErrUnknownField, f.Name)
		}
		if !isScalar(f.Value) {
			return Statement{}, fmt.Errorf("%w: %q", ErrInvalidValue, f.Name)
		}
		if f.Name == "password" {
			plain, ok := f.Value.(string)
			if !ok || plain == "" {
				return Statement{}, ErrInvalidPassword
			}
			digest, err := hash(plain)
			if err != nil {
				return Statement{}, fmt.Errorf("hash password: %w", err)
			}
			f.Value = digest
		}
		out = append(out, f)
	}
	return Statement{Table: table, Fields: out}, nil
}

// ParseBody decodes a JSON object into fields, preserving the order keys
// appear in the document. A plain map would lose it.
func ParseBody(r io.Reader) ([]Field, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.New("request body is required")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("request body must be a JSON object")
	}

	var fields []Field
	seen := make(map[string]struct{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("malformed JSON object")
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate field %q", key)
		}
		seen[key] = struct{}{}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if n, ok := value.(json.Number); ok {
			value = n.String()
		}
		fields = append(fields, Field{Name: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, nil, float64, json.Number:
		return true
	default:
		return false
	}
}
