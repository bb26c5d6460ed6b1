package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"inkwell.dev/internal/audit"
	"inkwell.dev/internal/auth"
	"inkwell.dev/internal/update"
)

type updateResponse struct {
	ID            int64    `json:"id"`
	UpdatedFields []string `json:"updatedFields"`
}

// updateRecord is the generic PUT /{table}/{id} partial update. The table
// and every field name are validated against the allow-list registry before
// any query text is assembled; a password field is re-hashed, and the digest
// is never echoed back.
func (a *API) updateRecord(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	table, id, err := splitTableID(r.URL.Path)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// Users may only rewrite their own row. Other tables on the registry
	// would need their own ownership rule before being listed.
	if table == "users" && subject != id {
		writeError(w, r, http.StatusForbidden, "cannot modify another user")
		return
	}

	fields, err := update.ParseBody(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	stmt, err := a.registry.Build(table, fields, auth.HashPassword)
	if err != nil {
		switch {
		case errors.Is(err, update.ErrForbiddenTable):
			writeError(w, r, http.StatusForbidden, err.Error())
		case errors.Is(err, update.ErrUnknownField),
			errors.Is(err, update.ErrEmptyUpdate),
			errors.Is(err, update.ErrInvalidValue),
			errors.Is(err, update.ErrInvalidPassword):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	if err := a.store.ApplyUpdate(r.Context(), stmt, id); err != nil {
		handleStorageError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "record.update", map[string]any{
		"table":   table,
		"id":      id,
		"columns": stmt.Columns(),
	})

	writeJSON(w, http.StatusOK, updateResponse{
		ID:            id,
		UpdatedFields: stmt.Columns(),
	})
}

// splitTableID parses /{table}/{id} into its two segments.
func splitTableID(path string) (string, int64, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, errors.New("expected /{table}/{id}")
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, errors.New("invalid record id")
	}
	return parts[0], id, nil
}
