package blog

import (
	"context"

	"inkwell.dev/internal/update"
)

// Store defines the persistence operations the HTTP layer needs. Postgres
// implements it for real deployments; InMemory backs tests and DSN-less runs.
type Store interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id int64) (User, error)

	CreateArticle(ctx context.Context, userID int64, text string) (Article, error)
	ListArticles(ctx context.Context) ([]FeedItem, error)
	ArticleByID(ctx context.Context, id int64) (Article, error)
	UpdateArticleText(ctx context.Context, id int64, text string) (Article, error)
	DeleteArticle(ctx context.Context, id int64) (Article, error)

	// ApplyUpdate executes a validated dynamic update against one row.
	// Zero affected rows is ErrNotFound.
	ApplyUpdate(ctx context.Context, stmt update.Statement, id int64) error

	Ping(ctx context.Context) error
}
