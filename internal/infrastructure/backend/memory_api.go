package backend

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/you/portalauth/domain"
)

// MemoryAuthAPI implements domain.AuthAPI in process memory for the dev
// backend mode: registered users live in a map with bcrypt-hashed
// passwords, and logins issue tokens through the token service.
type MemoryAuthAPI struct {
	tokens domain.TokenService

	mu    sync.Mutex
	users map[string]*memoryUser
}

type memoryUser struct {
	user         domain.User
	passwordHash string
}

// NewMemoryAuthAPI creates an empty in-memory backend.
func NewMemoryAuthAPI(tokens domain.TokenService) *MemoryAuthAPI {
	return &MemoryAuthAPI{
		tokens: tokens,
		users:  make(map[string]*memoryUser),
	}
}

// Register implements domain.AuthAPI
func (a *MemoryAuthAPI) Register(_ context.Context, payload *domain.RegisterPayload) (*domain.User, error) {
	identifier := strings.ToLower(strings.TrimSpace(payload.Identifier))
	if identifier == "" {
		return nil, &domain.APIError{Status: http.StatusBadRequest, Message: "Identifier is required"}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.users[identifier]; exists {
		return nil, &domain.APIError{Status: http.StatusConflict, Message: "User already exists"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := domain.User{
		ID:         uuid.NewString(),
		Identifier: identifier,
		Role:       strings.ToLower(payload.Role),
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
	}
	if len(payload.Fields) > 0 {
		user.Extra = make(map[string]string, len(payload.Fields))
		for k, v := range payload.Fields {
			user.Extra[k] = v
		}
	}

	a.users[identifier] = &memoryUser{user: user, passwordHash: string(hash)}
	record := user
	return &record, nil
}

// Login implements domain.AuthAPI
func (a *MemoryAuthAPI) Login(_ context.Context, identifier, password string) (*domain.LoginResult, error) {
	a.mu.Lock()
	entry, ok := a.users[strings.ToLower(strings.TrimSpace(identifier))]
	a.mu.Unlock()

	if !ok {
		return nil, &domain.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	if bcrypt.CompareHashAndPassword([]byte(entry.passwordHash), []byte(password)) != nil {
		return nil, &domain.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}

	token, err := a.tokens.Generate(entry.user.ID, domain.ParseRole(entry.user.Role))
	if err != nil {
		return nil, err
	}

	user := entry.user.Clone()
	return &domain.LoginResult{
		Token:      token,
		Role:       entry.user.Role,
		Identifier: entry.user.Identifier,
		User:       user,
	}, nil
}

// Profile implements domain.AuthAPI
func (a *MemoryAuthAPI) Profile(_ context.Context, token string) (map[string]string, error) {
	claims, err := a.tokens.Validate(token)
	if err != nil {
		return nil, &domain.APIError{Status: http.StatusUnauthorized, Message: "Invalid or expired token"}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, entry := range a.users {
		if entry.user.ID == claims.UserID {
			out := map[string]string{
				"firstName": entry.user.FirstName,
				"lastName":  entry.user.LastName,
			}
			for k, v := range entry.user.Extra {
				out[k] = v
			}
			return out, nil
		}
	}
	return nil, &domain.APIError{Status: http.StatusNotFound, Message: "User not found"}
}
