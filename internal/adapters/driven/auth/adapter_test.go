package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/meridian-labs/meridian-core/internal/core/domain"
)

func TestAdapter_RoundTrip(t *testing.T) {
	adapter := NewAdapter("test-secret")

	token, err := adapter.GenerateToken("tenant-a", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	tenantID, err := adapter.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if tenantID != "tenant-a" {
		t.Errorf("expected tenant-a, got %s", tenantID)
	}
}

func TestAdapter_ExpiredToken(t *testing.T) {
	adapter := NewAdapter("test-secret")

	token, err := adapter.GenerateToken("tenant-a", -time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = adapter.VerifyToken(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAdapter_WrongSecret(t *testing.T) {
	issuer := NewAdapter("secret-one")
	verifier := NewAdapter("secret-two")

	token, err := issuer.GenerateToken("tenant-a", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = verifier.VerifyToken(token)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAdapter_GarbageToken(t *testing.T) {
	adapter := NewAdapter("test-secret")

	_, err := adapter.VerifyToken("not-a-jwt")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	_, err = adapter.VerifyToken("")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestAdapter_MissingTenant(t *testing.T) {
	adapter := NewAdapter("test-secret")

	token, err := adapter.GenerateToken("", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = adapter.VerifyToken(token)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for empty tenant claim, got %v", err)
	}
}
