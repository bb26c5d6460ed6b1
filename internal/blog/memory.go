package blog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inkwell.dev/internal/update"
)

// InMemory implements Store with in-process concurrency safety. It backs the
// HTTP tests and lets the service run without a database DSN.
type InMemory struct {
	mu       sync.RWMutex
	users    map[int64]*User
	articles map[int64]*Article
	nextUser int64
	nextArt  int64
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		users:    make(map[int64]*User),
		articles: make(map[int64]*Article),
	}
}

func (s *InMemory) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return User{}, ErrEmailTaken
		}
	}

	s.nextUser++
	u := &User{
		ID:           s.nextUser,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	return *u, nil
}

func (s *InMemory) UserByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *InMemory) UserByID(ctx context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

func (s *InMemory) CreateArticle(ctx context.Context, userID int64, text string) (Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return Article{}, ErrNotFound
	}
	s.nextArt++
	a := &Article{
		ID:          s.nextArt,
		UserID:      userID,
		Text:        text,
		PublishedAt: time.Now().UTC(),
	}
	s.articles[a.ID] = a
	return *a, nil
}

func (s *InMemory) ListArticles(ctx context.Context) ([]FeedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]FeedItem, 0, len(s.articles))
	for _, a := range s.articles {
		author := ""
		if u, ok := s.users[a.UserID]; ok {
			author = u.Name
		}
		items = append(items, FeedItem{
			ID:          a.ID,
			Text:        a.Text,
			PublishedAt: a.PublishedAt,
			Author:      author,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *InMemory) ArticleByID(ctx context.Context, id int64) (Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return Article{}, ErrNotFound
	}
	return *a, nil
}

func (s *InMemory) UpdateArticleText(ctx context.Context, id int64, text string) (Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return Article{}, ErrNotFound
	}
	a.Text = text
	return *a, nil
}

func (s *InMemory) DeleteArticle(ctx context.Context, id int64) (Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return Article{}, ErrNotFound
	}
	delete(s.articles, id)
	return *a, nil
}

func (s *InMemory) ApplyUpdate(ctx context.Context, stmt update.Statement, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch stmt.Table {
	case "users":
		u, ok := s.users[id]
		if !ok {
			return ErrNotFound
		}
		// Check email uniqueness before touching the row so a conflict
		// does not leave a partially applied update behind.
		for _, f := range stmt.Fields {
			if f.Name != "email" {
				continue
			}
			email := strings.ToLower(strings.TrimSpace(asString(f.Value)))
			for _, other := range s.users {
				if other.ID != id && other.Email == email {
					return ErrEmailTaken
				}
			}
		}
		for _, f := range stmt.Fields {
			switch f.Name {
			case "name":
				u.Name = asString(f.Value)
			case "email":
				u.Email = strings.ToLower(strings.TrimSpace(asString(f.Value)))
			case "password":
				u.PasswordHash = asString(f.Value)
			}
		}
		return nil
	default:
		// The registry rejects everything else before it gets here.
		return ErrNotFound
	}
}

func (s *InMemory) Ping(ctx context.Context) error { return nil }

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
