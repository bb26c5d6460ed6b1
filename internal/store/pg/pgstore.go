package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"inkwell.dev/internal/blog"
	"inkwell.dev/internal/update"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

var _ blog.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle. Used by tests and the migrate command.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (blog.User, error) {
	u := blog.User{Name: name, Email: email, PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx, `
		insert into users(name, email, password)
		values ($1, $2, $3)
		returning id, created_at
	`, name, email, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return blog.User{}, blog.ErrEmailTaken
	}
	if err != nil {
		return blog.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (blog.User, error) {
	var u blog.User
	err := s.db.QueryRowContext(ctx, `
		select id, name, email, password, created_at
		from users where email = $1
	`, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blog.User{}, blog.ErrNotFound
	}
	if err != nil {
		return blog.User{}, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (blog.User, error) {
	var u blog.User
	err := s.db.QueryRowContext(ctx, `
		select id, name, email, password, created_at
		from users where id = $1
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blog.User{}, blog.ErrNotFound
	}
	if err != nil {
		return blog.User{}, fmt.Errorf("user by id: %w", err)
	}
	return u, nil
}

func (s *Store) CreateArticle(ctx context.Context, userID int64, text string) (blog.Article, error) {
	a := blog.Article{UserID: userID, Text: text}
	err := s.db.QueryRowContext(ctx, `
		insert into articles(user_id, text, publication_date)
		values ($1, $2, now())
		returning id, publication_date
	`, userID, text).Scan(&a.ID, &a.PublishedAt)
	if err != nil {
		return blog.Article{}, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

func (s *Store) ListArticles(ctx context.Context) ([]blog.FeedItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		select articles.id, articles.text, articles.publication_date, users.name as author
		from articles
		inner join users on articles.user_id = users.id
		order by articles.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	items := make([]blog.FeedItem, 0)
	for rows.Next() {
		var it blog.FeedItem
		if err := rows.Scan(&it.ID, &it.Text, &it.PublishedAt, &it.Author); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) ArticleByID(ctx context.Context, id int64) (blog.Article, error) {
	var a blog.Article
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, text, publication_date
		from articles where id = $1
	`, id).Scan(&a.ID, &a.UserID, &a.Text, &a.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blog.Article{}, blog.ErrNotFound
	}
	if err != nil {
		return blog.Article{}, fmt.Errorf("article by id: %w", err)
	}
	return a, nil
}

func (s *Store) UpdateArticleText(ctx context.Context, id int64, text string) (blog.Article, error) {
	var a blog.Article
	err := s.db.QueryRowContext(ctx, `
		update articles set text = $1
		where id = $2
		returning id, user_id, text, publication_date
	`, text, id).Scan(&a.ID, &a.UserID, &a.Text, &a.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blog.Article{}, blog.ErrNotFound
	}
	if err != nil {
		return blog.Article{}, fmt.Errorf("update article: %w", err)
	}
	return a, nil
}

func (s *Store) DeleteArticle(ctx context.Context, id int64) (blog.Article, error) {
	var a blog.Article
	err := s.db.QueryRowContext(ctx, `
		delete from articles
		where id = $1
		returning id, user_id, text, publication_date
	`, id).Scan(&a.ID, &a.UserID, &a.Text, &a.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return blog.Article{}, blog.ErrNotFound
	}
	if err != nil {
		return blog.Article{}, fmt.Errorf("delete article: %w", err)
	}
	return a, nil
}

// ApplyUpdate executes a statement produced by the update registry. Table and
// column names in the query text have already been validated against the
// allow-list; values and the id ride as bound parameters.
func (s *Store) ApplyUpdate(ctx context.Context, stmt update.Statement, id int64) error {
	query, args := stmt.SQL()
	res, err := s.db.ExecContext(ctx, query, append(args, id)...)
	if isUniqueViolation(err) {
		return blog.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("apply update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply update: %w", err)
	}
	if affected == 0 {
		return blog.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
