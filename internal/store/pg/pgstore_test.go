package pg

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell.dev/internal/blog"
	"inkwell.dev/internal/update"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestCreateUserReturnsRow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("insert into users").
		WithArgs("Alice", "alice@example.com", "digest").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	u, err := store.CreateUser(t.Context(), "Alice", "alice@example.com", "digest")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID != 7 || u.Name != "Alice" || u.PasswordHash != "digest" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into users").
		WithArgs("Alice", "alice@example.com", "digest").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := store.CreateUser(t.Context(), "Alice", "alice@example.com", "digest")
	if !errors.Is(err, blog.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select id, name, email, password, created_at").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := store.UserByEmail(t.Context(), "nobody@example.com")
	if !errors.Is(err, blog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyUpdateBindsValuesAndID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update users set").
		WithArgs("Alice", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stmt := update.Statement{Table: "users", Fields: []update.Field{{Name: "name", Value: "Alice"}}}
	if err := store.ApplyUpdate(t.Context(), stmt, 7); err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApplyUpdateZeroRowsIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update users set").
		WithArgs("Alice", int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	stmt := update.Statement{Table: "users", Fields: []update.Field{{Name: "name", Value: "Alice"}}}
	if err := store.ApplyUpdate(t.Context(), stmt, 404); !errors.Is(err, blog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyUpdateMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update users set").
		WithArgs("alice@example.com", int64(7)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	stmt := update.Statement{Table: "users", Fields: []update.Field{{Name: "email", Value: "alice@example.com"}}}
	if err := store.ApplyUpdate(t.Context(), stmt, 7); !errors.Is(err, blog.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestDeleteArticleNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("delete from articles").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.DeleteArticle(t.Context(), 99)
	if !errors.Is(err, blog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListArticlesJoinsAuthor(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "text", "publication_date", "author"}).
		AddRow(int64(1), "first", now, "Alice").
		AddRow(int64(2), "second", now, "Bob")
	mock.ExpectQuery("inner join users").WillReturnRows(rows)

	items, err := store.ListArticles(t.Context())
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(items) != 2 || items[0].Author != "Alice" || items[1].Author != "Bob" {
		t.Fatalf("unexpected items: %+v", items)
	}
}
