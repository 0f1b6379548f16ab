package mocks

import (
	"context"

	"github.com/you/portalauth/domain"
)

// MockAuthAPI implements domain.AuthAPI for testing
type MockAuthAPI struct {
	RegisterFunc func(ctx context.Context, payload *domain.RegisterPayload) (*domain.User, error)
	LoginFunc    func(ctx context.Context, identifier, password string) (*domain.LoginResult, error)
	ProfileFunc  func(ctx context.Context, token string) (map[string]string, error)
}

// NewMockAuthAPI creates a new MockAuthAPI with default behaviors
func NewMockAuthAPI() *MockAuthAPI {
	return &MockAuthAPI{}
}

// Register registers a user with the backend
func (m *MockAuthAPI) Register(ctx context.Context, payload *domain.RegisterPayload) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, payload)
	}
	// Default behavior: echo a minimal record
	return &domain.User{Identifier: payload.Identifier, Role: payload.Role}, nil
}

// Login authenticates against the backend
func (m *MockAuthAPI) Login(ctx context.Context, identifier, password string) (*domain.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password)
	}
	// Default behavior: invalid credentials
	return nil, &domain.APIError{Status: 401, Message: "Invalid credentials"}
}

// Profile fetches the bearer-authenticated profile
func (m *MockAuthAPI) Profile(ctx context.Context, token string) (map[string]string, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, token)
	}
	// Default behavior: empty profile
	return map[string]string{}, nil
}
