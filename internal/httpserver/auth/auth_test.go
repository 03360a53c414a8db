package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, expires, err := issuer.Issue("u1", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !expires.After(time.Now()) {
		t.Fatal("expiry is not in the future")
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "admin" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewIssuer("secret-a", time.Hour).Issue("u1", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewIssuer("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue("u1", "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewIssuer("test-secret", time.Hour).Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
