package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"inkwell.dev/internal/audit"
	"inkwell.dev/internal/auth"
	"inkwell.dev/internal/blog"
	"inkwell.dev/internal/stream"
)

type articleRequest struct {
	Text string `json:"text"`
}

func (a *API) handleArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	items, err := a.store.ListArticles(r.Context())
	if err != nil {
		handleStorageError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleArticleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req articleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, http.StatusBadRequest, "text is required")
		return
	}

	article, err := a.store.CreateArticle(r.Context(), subject, req.Text)
	if err != nil {
		handleStorageError(w, r, err)
		return
	}

	a.publishArticleEvent(r.Context(), "created", article)
	_ = audit.LogEvent(r.Context(), "article.create", map[string]any{
		"article_id": article.ID,
	})

	w.Header().Set("Location", "/api/articles/"+strconv.FormatInt(article.ID, 10))
	writeJSON(w, http.StatusCreated, article)
}

// handleArticleResource serves PUT and DELETE /api/articles/{id}. Both are
// owner-only: deletion used to skip the ownership check upstream, which made
// any authenticated user a moderator by accident.
func (a *API) handleArticleResource(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/articles/")
	if raw == "" || strings.Contains(raw, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid article id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		a.updateArticle(w, r, id)
	case http.MethodDelete:
		a.deleteArticle(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) updateArticle(w http.ResponseWriter, r *http.Request, id int64) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req articleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, http.StatusBadRequest, "text is required")
		return
	}

	article, err := a.store.ArticleByID(r.Context(), id)
	if err != nil {
		handleStorageError(w, r, err)
		return
	}
	if article.UserID != subject {
		writeError(w, r, http.StatusForbidden, "not the article owner")
		return
	}

	updated, err := a.store.UpdateArticleText(r.Context(), id, req.Text)
	if err != nil {
		handleStorageError(w, r, err)
		return
	}

	a.publishArticleEvent(r.Context(), "updated", updated)
	_ = audit.LogEvent(r.Context(), "article.update", map[string]any{
		"article_id": updated.ID,
	})

	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteArticle(w http.ResponseWriter, r *http.Request, id int64) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	article, err := a.store.ArticleByID(r.Context(), id)
	if err != nil {
		handleStorageError(w, r, err)
		return
	}
	if article.UserID != subject {
		writeError(w, r, http.StatusForbidden, "not the article owner")
		return
	}

	deleted, err := a.store.DeleteArticle(r.Context(), id)
	if err != nil {
		handleStorageError(w, r, err)
		return
	}

	a.publishArticleEvent(r.Context(), "deleted", deleted)
	_ = audit.LogEvent(r.Context(), "article.delete", map[string]any{
		"article_id": deleted.ID,
	})

	writeJSON(w, http.StatusOK, deleted)
}

func (a *API) publishArticleEvent(ctx context.Context, action string, article blog.Article) {
	if a.stream == nil {
		return
	}
	author := ""
	if u, err := a.store.UserByID(ctx, article.UserID); err == nil {
		author = u.Name
	}
	a.stream.Publish(stream.ArticleEvent{
		Action:      action,
		ArticleID:   article.ID,
		Author:      author,
		PublishedAt: article.PublishedAt,
		Timestamp:   nowUTC(),
	})
}

// handleArticleEvents streams article lifecycle events over SSE.
func (a *API) handleArticleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if a.stream == nil {
		writeError(w, r, http.StatusServiceUnavailable, "streaming disabled")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := a.stream.Subscribe(ctx)

	// Send an initial comment to establish the stream
	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = w.Write([]byte("data: "))
		_, _ = w.Write(payload)
		_, _ = w.Write([]byte("\n\n"))
		flusher.Flush()
	}
}
