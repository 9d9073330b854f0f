package middleware

import (
	"testing"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT("64b7e5f2a1b2c3d4e5f60718", "worker@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	if claims.UserID != "64b7e5f2a1b2c3d4e5f60718" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "64b7e5f2a1b2c3d4e5f60718")
	}
	if claims.Email != "worker@example.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "worker@example.com")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT("64b7e5f2a1b2c3d4e5f60718", "worker@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	t.Setenv("JWT_SECRET", "other-secret")
	if _, err := ParseToken(token); err == nil {
		t.Error("ParseToken should reject a token signed with a different secret")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := ParseToken("not.a.token"); err == nil {
		t.Error("ParseToken should reject malformed tokens")
	}
}
