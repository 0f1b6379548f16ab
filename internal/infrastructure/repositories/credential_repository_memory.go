package repositories

import (
	"context"
	"sync"

	"github.com/you/portalauth/domain"
)

// MemoryCredentialRepository implements domain.CredentialRepository in
// process memory. Used for tests and the memory store driver; does not
// survive restarts.
type MemoryCredentialRepository struct {
	mu    sync.RWMutex
	creds *domain.Credentials
}

// NewMemoryCredentialRepository creates an empty in-memory repository.
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{}
}

// Save implements domain.CredentialRepository
func (r *MemoryCredentialRepository) Save(_ context.Context, creds *domain.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds = &domain.Credentials{
		User:       creds.User.Clone(),
		Token:      creds.Token,
		Identifier: creds.Identifier,
	}
	return nil
}

// Load implements domain.CredentialRepository
func (r *MemoryCredentialRepository) Load(_ context.Context) (*domain.Credentials, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.creds == nil || r.creds.User == nil || r.creds.Token == "" {
		return nil, domain.ErrCredentialsNotFound
	}
	return &domain.Credentials{
		User:       r.creds.User.Clone(),
		Token:      r.creds.Token,
		Identifier: r.creds.Identifier,
	}, nil
}

// Clear implements domain.CredentialRepository
func (r *MemoryCredentialRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds = nil
	return nil
}
