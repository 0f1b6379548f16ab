package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/you/portalauth/domain"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", "portalauth", time.Hour)

	token, err := svc.Generate("user-1", domain.RoleDoctor)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", claims.UserID)
	}
	if claims.Role != "doctor" {
		t.Errorf("expected doctor, got %s", claims.Role)
	}
	if claims.ExpiresAt <= claims.IssuedAt {
		t.Error("expiry must be after issuance")
	}
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", "portalauth", -time.Minute)

	token, err := svc.Generate("user-1", domain.RolePatient)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTService_MalformedToken(t *testing.T) {
	svc := NewJWTService("test-secret", "portalauth", time.Hour)

	if _, err := svc.Validate("opaque-server-token"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret", "portalauth", time.Hour)
	other := NewJWTService("other-secret", "portalauth", time.Hour)

	token, err := svc.Generate("user-1", domain.RoleLab)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := other.Validate(token); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}
