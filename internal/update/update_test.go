package update

import (
	"errors"
	"strings"
	"testing"
)

func identityHash(s string) (string, error) { return "hashed:" + s, nil }

func TestBuildRejectsForbiddenTable(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.Build("pg_shadow", []Field{{Name: "name", Value: "x"}}, identityHash)
	if !errors.Is(err, ErrForbiddenTable) {
		t.Fatalf("expected ErrForbiddenTable, got %v", err)
	}
}

func TestBuildRejectsUnknownField(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.Build("users", []Field{{Name: "is_admin", Value: true}}, identityHash)
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestBuildRejectsEmptyUpdate(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.Build("users", nil, identityHash)
	if !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
}

func TestBuildHashesPassword(t *testing.T) {
	reg := DefaultRegistry()
	stmt, err := reg.Build("users", []Field{
		{Name: "name", Value: "Alice"},
		{Name: "password", Value: "hunter2"},
	}, identityHash)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := stmt.Fields[1].Value; got != "hashed:hunter2" {
		t.Fatalf("password was not routed through the hasher: %v", got)
	}
	if got := stmt.Fields[0].Value; got != "Alice" {
		t.Fatalf("non-password value mutated: %v", got)
	}
}

func TestBuildRejectsNonStringPassword(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.Build("users", []Field{{Name: "password", Value: float64(42)}}, identityHash)
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestBuildRejectsCompositeValues(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.Build("users", []Field{{Name: "name", Value: map[string]any{"a": 1}}}, identityHash)
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestSQLPlacesIDParameterLast(t *testing.T) {
	stmt := Statement{Table: "users", Fields: []Field{
		{Name: "name", Value: "Alice"},
		{Name: "email", Value: "alice@example.com"},
	}}
	query, args := stmt.SQL()
	want := "update users set name = $1, email = $2 where id = $3"
	if query != want {
		t.Fatalf("query mismatch:\n got %q\nwant %q", query, want)
	}
	if len(args) != 2 || args[0] != "Alice" || args[1] != "alice@example.com" {
		t.Fatalf("unexpected args: %v", args)
	}
	if got := stmt.Columns(); len(got) != 2 || got[0] != "name" || got[1] != "email" {
		t.Fatalf("unexpected columns: %v", got)
	}
}

func TestParseBodyPreservesKeyOrder(t *testing.T) {
	body := `{"email":"a@b.c","name":"Alice","password":"pw"}`
	fields, err := ParseBody(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}
	want := []string{"email", "name", "password"}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(fields))
	}
	for i, name := range want {
		if fields[i].Name != name {
			t.Fatalf("field %d: got %q, want %q", i, fields[i].Name, name)
		}
	}
}

func TestParseBodyRejectsNonObject(t *testing.T) {
	for _, body := range []string{"", "[]", `"str"`, "42"} {
		if _, err := ParseBody(strings.NewReader(body)); err == nil {
			t.Fatalf("ParseBody(%q): expected error", body)
		}
	}
}

func TestParseBodyRejectsDuplicateKeys(t *testing.T) {
	if _, err := ParseBody(strings.NewReader(`{"name":"a","name":"b"}`)); err == nil {
		t.Fatal("expected error for duplicate key")
	}
}

func TestParseBodyNumbersBecomeStrings(t *testing.T) {
	fields, err := ParseBody(strings.NewReader(`{"name": 7}`))
	if err != nil {
		t.Fatalf("ParseBody: %v", err)
	}
	if fields[0].Value != "7" {
		t.Fatalf("expected numeric value as string, got %#v", fields[0].Value)
	}
}
