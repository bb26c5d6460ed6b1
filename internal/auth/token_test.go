package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, expiresAt, err := codec.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token issued")
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Fatalf("unexpected expiry distance: %v", until)
	}

	id, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != 42 {
		t.Fatalf("subject mismatch: got %d, want 42", id)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	issuedAt := time.Now().Add(-2 * time.Hour)
	codec.now = func() time.Time { return issuedAt }

	token, _, err := codec.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	codec.now = time.Now
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, err := NewCodec("secret-a", time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	verifier, err := NewCodec("secret-b", time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, _, err := signer.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	for _, token := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec("  ", time.Hour); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestContextSubjectHelpers(t *testing.T) {
	ctx := ContextWithSubject(t.Context(), 9)
	id, ok := SubjectFromContext(ctx)
	if !ok || id != 9 {
		t.Fatalf("unexpected subject: %d, ok=%v", id, ok)
	}
	if _, ok := SubjectFromContext(t.Context()); ok {
		t.Fatal("expected no subject on bare context")
	}
}
