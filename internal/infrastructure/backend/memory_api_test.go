package backend

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/you/portalauth/domain"
	"github.com/you/portalauth/internal/mocks"
)

func TestMemoryAuthAPI_RegisterLoginRoundTrip(t *testing.T) {
	api := NewMemoryAuthAPI(mocks.NewMockTokenService())
	ctx := context.Background()

	user, err := api.Register(ctx, &domain.RegisterPayload{
		Role:       "Patient",
		Identifier: "Asha@Example.com",
		Password:   "s3cret",
		FirstName:  "Asha",
		Fields:     map[string]string{"bloodGroup": "O+"},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected a generated user id")
	}
	if user.Identifier != "asha@example.com" {
		t.Errorf("identifier not normalized: %q", user.Identifier)
	}
	if user.Role != "patient" {
		t.Errorf("role not normalized: %q", user.Role)
	}

	// Login is case-insensitive on the identifier.
	result, err := api.Login(ctx, "ASHA@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token != "token-"+user.ID {
		t.Errorf("unexpected token %q", result.Token)
	}
	if result.User == nil || result.User.Extra["bloodGroup"] != "O+" {
		t.Errorf("extra fields lost: %+v", result.User)
	}
}

func TestMemoryAuthAPI_DuplicateRegistration(t *testing.T) {
	api := NewMemoryAuthAPI(mocks.NewMockTokenService())
	ctx := context.Background()

	payload := &domain.RegisterPayload{Role: "doctor", Identifier: "doc@example.com", Password: "pw"}
	if _, err := api.Register(ctx, payload); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := api.Register(ctx, payload)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Errorf("expected 409 conflict, got %v", err)
	}
	if apiErr.Message != "User already exists" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestMemoryAuthAPI_WrongPassword(t *testing.T) {
	api := NewMemoryAuthAPI(mocks.NewMockTokenService())
	ctx := context.Background()

	if _, err := api.Register(ctx, &domain.RegisterPayload{Role: "lab", Identifier: "lab@example.com", Password: "right"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for _, attempt := range []struct{ id, pw string }{
		{"lab@example.com", "wrong"},
		{"nobody@example.com", "right"},
	} {
		_, err := api.Login(ctx, attempt.id, attempt.pw)
		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
			t.Errorf("login %s: expected 401, got %v", attempt.id, err)
		}
	}
}

func TestMemoryAuthAPI_Profile(t *testing.T) {
	tokens := mocks.NewMockTokenService()
	api := NewMemoryAuthAPI(tokens)
	ctx := context.Background()

	user, err := api.Register(ctx, &domain.RegisterPayload{
		Role:       "hospital",
		Identifier: "admin@citycare.example",
		Password:   "pw",
		FirstName:  "Front",
		Fields:     map[string]string{"hospitalName": "City Care"},
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tokens.ValidateFunc = func(token string) (*domain.TokenClaims, error) {
		if token != "good" {
			return nil, domain.ErrTokenInvalid
		}
		return &domain.TokenClaims{UserID: user.ID, Role: "hospital"}, nil
	}

	profile, err := api.Profile(ctx, "good")
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if profile["firstName"] != "Front" || profile["hospitalName"] != "City Care" {
		t.Errorf("unexpected profile %+v", profile)
	}

	_, err = api.Profile(ctx, "bad")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %v", err)
	}
}
