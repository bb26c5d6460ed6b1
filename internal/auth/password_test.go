package auth

import "testing"

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	const plaintext = "correct horse battery staple"

	first, err := HashPassword(plaintext)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == plaintext {
		t.Fatal("digest equals plaintext")
	}

	second, err := HashPassword(plaintext)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh salt per call, digests are equal")
	}

	for _, digest := range []string{first, second} {
		ok, err := VerifyPassword(digest, plaintext)
		if err != nil {
			t.Fatalf("VerifyPassword: %v", err)
		}
		if !ok {
			t.Fatal("digest does not verify against its plaintext")
		}
	}
}

func TestVerifyPasswordMismatchIsNotAnError(t *testing.T) {
	digest, err := HashPassword("right")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	ok, err := VerifyPassword(digest, "wrong")
	if err != nil {
		t.Fatalf("mismatch must not error: %v", err)
	}
	if ok {
		t.Fatal("wrong password verified")
	}
}

func TestVerifyPasswordMalformedDigest(t *testing.T) {
	if _, err := VerifyPassword("", "x"); err == nil {
		t.Fatal("expected error for empty digest")
	}
	if _, err := VerifyPassword("not-a-bcrypt-digest", "x"); err == nil {
		t.Fatal("expected error for malformed digest")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
