package jwtutil

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	claims := NewClaims("user-123", "prof@faculty.test", "professor", time.Hour)
	token, err := GenerateAccessToken(claims, key)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	parsed, err := ParseAccessToken(token, &key.PublicKey)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if parsed.UserID != "user-123" || parsed.Email != "prof@faculty.test" || parsed.Role != "professor" {
		t.Fatalf("unexpected claims %+v", parsed)
	}
}

func TestParseAccessToken_WrongKey(t *testing.T) {
	signingKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	token, err := GenerateAccessToken(NewClaims("u", "e", "r", time.Hour), signingKey)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := ParseAccessToken(token, &otherKey.PublicKey); err == nil {
		t.Fatal("expected verification failure with the wrong key")
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	token, err := GenerateAccessToken(NewClaims("u", "e", "r", -time.Minute), key)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	_, err = ParseAccessToken(token, &key.PublicKey)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
