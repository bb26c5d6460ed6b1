package auth

import "context"

type ctxKey string

const subjectKey ctxKey = "auth_subject"

// ContextWithSubject stores the authenticated user id in the context.
func ContextWithSubject(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, subjectKey, userID)
}

// SubjectFromContext extracts the authenticated user id from the context.
func SubjectFromContext(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(subjectKey).(int64)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}
