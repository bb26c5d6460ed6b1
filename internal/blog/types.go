package blog

import (
	"errors"
	"time"
)

// User is an account row. The password digest is opaque and never serialized
// to clients.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Article is a free-text post owned by a user. PublishedAt is set at creation
// and never changes afterwards.
type Article struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"publication_date"`
}

// FeedItem is an article joined with its author's display name for the
// public listing.
type FeedItem struct {
	ID          int64     `json:"id"`
	Text        string    `json:"text"`
	PublishedAt time.Time `json:"publication_date"`
	Author      string    `json:"author"`
}

var (
	ErrNotFound   = errors.New("blog: not found")
	ErrEmailTaken = errors.New("blog: email already registered")
)
