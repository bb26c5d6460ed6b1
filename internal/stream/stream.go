package stream

import (
	"context"
	"sync"
	"time"
)

// ArticleEvent describes an article lifecycle change pushed to SSE clients.
type ArticleEvent struct {
	Action      string    `json:"action"` // created, updated, deleted
	ArticleID   int64     `json:"article_id"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publication_date,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Stream fan-outs article events to all active subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan ArticleEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan ArticleEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan ArticleEvent {
	ch := make(chan ArticleEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt ArticleEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
