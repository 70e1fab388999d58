package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, 720*time.Minute)

	tok, claims, err := issuer.Issue("42")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if claims.ID == "" {
		t.Error("expected jti to be set")
	}

	parsed, err := issuer.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Subject != "42" {
		t.Errorf("expected subject 42, got %q", parsed.Subject)
	}
	if parsed.ID != claims.ID {
		t.Errorf("expected jti %q, got %q", claims.ID, parsed.ID)
	}
	if got := parsed.ExpiresAt.Sub(parsed.IssuedAt.Time); got != 720*time.Minute {
		t.Errorf("expected 720m lifetime, got %v", got)
	}
}

func TestTokenIssuer_UniqueIDs(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, time.Hour)
	_, a, _ := issuer.Issue("1")
	_, b, _ := issuer.Issue("1")
	if a.ID == b.ID {
		t.Error("expected distinct jti per token")
	}
}

func TestTokenIssuer_EmptySubject(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, time.Hour)
	if _, _, err := issuer.Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer(testSigningKey, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, _, err := issuer.Issue("1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Parse(tok); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTokenIssuer_WrongKey(t *testing.T) {
	tok, _, err := NewTokenIssuer([]byte("other-key"), time.Hour).Issue("1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokenIssuer(testSigningKey, time.Hour).Parse(tok); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer(testSigningKey, time.Hour).Parse(tok); err == nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestTokenIssuer_RequiresExpiry(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer(testSigningKey, time.Hour).Parse(tok); err == nil {
		t.Fatal("expected token without exp to be rejected")
	}
}
