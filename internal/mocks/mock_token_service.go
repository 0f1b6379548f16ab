package mocks

import (
	"github.com/you/portalauth/domain"
)

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	GenerateFunc func(userID string, role domain.Role) (string, error)
	ValidateFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Generate issues a bearer token
func (m *MockTokenService) Generate(userID string, role domain.Role) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(userID, role)
	}
	// Default behavior: deterministic token
	return "token-" + userID, nil
}

// Validate checks a bearer token
func (m *MockTokenService) Validate(token string) (*domain.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	// Default behavior: opaque token, not a JWT
	return nil, domain.ErrTokenMalformed
}
