package mocks

import (
	"context"

	"github.com/you/portalauth/domain"
)

// MockCredentialRepository implements domain.CredentialRepository for testing
type MockCredentialRepository struct {
	SaveFunc  func(ctx context.Context, creds *domain.Credentials) error
	LoadFunc  func(ctx context.Context) (*domain.Credentials, error)
	ClearFunc func(ctx context.Context) error

	Saved   *domain.Credentials
	Cleared bool
}

// NewMockCredentialRepository creates a new MockCredentialRepository with default behaviors
func NewMockCredentialRepository() *MockCredentialRepository {
	return &MockCredentialRepository{}
}

// Save persists credentials
func (m *MockCredentialRepository) Save(ctx context.Context, creds *domain.Credentials) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, creds)
	}
	// Default behavior: record and succeed
	m.Saved = creds
	return nil
}

// Load reads the stored credentials
func (m *MockCredentialRepository) Load(ctx context.Context) (*domain.Credentials, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	if m.Saved != nil {
		return m.Saved, nil
	}
	// Default behavior: empty store
	return nil, domain.ErrCredentialsNotFound
}

// Clear removes the stored credentials
func (m *MockCredentialRepository) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	m.Saved = nil
	m.Cleared = true
	return nil
}
