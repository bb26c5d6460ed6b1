package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"inkwell.dev/internal/auth"
	"inkwell.dev/internal/blog"
	"inkwell.dev/internal/obs"
	"inkwell.dev/internal/stream"
	"inkwell.dev/internal/update"
)

// API is the HTTP layer. It holds no mutable cross-request state; the store,
// codec and registry are read-only after construction.
type API struct {
	mux      *http.ServeMux
	store    blog.Store
	codec    *auth.Codec
	registry update.Registry
	stream   *stream.Stream
	version  string

	rateBurst  int
	ratePerSec int
}

func New(store blog.Store, codec *auth.Codec, st *stream.Stream, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		store:      store,
		codec:      codec,
		registry:   update.DefaultRegistry(),
		stream:     st,
		version:    version,
		rateBurst:  20,
		ratePerSec: 10,
	}

	// users
	a.mux.HandleFunc("/api/users/add", a.handleRegister)
	a.mux.HandleFunc("/api/users/login", a.handleLogin)
	a.mux.HandleFunc("/api/users/profile", a.handleProfile)
	a.mux.HandleFunc("/users/", a.handleUserResource)

	// articles
	a.mux.HandleFunc("/api/articles", a.handleArticles)
	a.mux.HandleFunc("/api/articles/add", a.handleArticleAdd)
	a.mux.HandleFunc("/api/articles/events", a.handleArticleEvents)
	a.mux.HandleFunc("/api/articles/", a.handleArticleResource)

	// health/ready/metrics
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	// catch-all: the generic PUT /{table}/{id} record update
	a.mux.HandleFunc("/", a.handleRoot)

	return a
}

// SetRateLimit overrides the default per-IP rate limit knobs.
func (a *API) SetRateLimit(burst, perSec int) {
	if burst > 0 {
		a.rateBurst = burst
	}
	if perSec > 0 {
		a.ratePerSec = perSec
	}
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPut && r.URL.Path != "/" {
		a.updateRecord(w, r)
		return
	}
	writeError(w, r, http.StatusNotFound, "resource not found")
}

// --- health ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "inkwell-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleStorageError logs the underlying failure with request context and
// returns an opaque 500; domain sentinels get their mapped status first.
func handleStorageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, blog.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, "email already registered")
	default:
		obs.LogError("storage failure", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"error":      err.Error(),
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func nowUTC() time.Time { return time.Now().UTC() }
