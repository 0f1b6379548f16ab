package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/you/portalauth/domain"
)

// Credential store keys, matching the persisted layout: a JSON-serialized
// user record, the raw bearer token and the raw login identifier.
const (
	keyUser       = "user"
	keyToken      = "token"
	keyIdentifier = "identifier"
)

// RedisCredentialRepository implements domain.CredentialRepository on Redis.
// The three keys are written and cleared in one pipeline so a reader never
// observes a token without its user record.
type RedisCredentialRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisCredentialRepository creates a new Redis credential repository.
func NewRedisCredentialRepository(client *redis.Client) domain.CredentialRepository {
	return &RedisCredentialRepository{client: client, prefix: "cred:"}
}

// Save implements domain.CredentialRepository
func (r *RedisCredentialRepository) Save(ctx context.Context, creds *domain.Credentials) error {
	data, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.prefix+keyUser, data, 0)
	pipe.Set(ctx, r.prefix+keyToken, creds.Token, 0)
	pipe.Set(ctx, r.prefix+keyIdentifier, creds.Identifier, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}
	return nil
}

// Load implements domain.CredentialRepository
func (r *RedisCredentialRepository) Load(ctx context.Context) (*domain.Credentials, error) {
	vals, err := r.client.MGet(ctx, r.prefix+keyUser, r.prefix+keyToken, r.prefix+keyIdentifier).Result()
	if err != nil {
		return nil, err
	}

	rawUser, okUser := vals[0].(string)
	token, okToken := vals[1].(string)
	if !okUser || !okToken || rawUser == "" || token == "" {
		return nil, domain.ErrCredentialsNotFound
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored user: %w", err)
	}

	creds := &domain.Credentials{User: &user, Token: token}
	if id, ok := vals[2].(string); ok {
		creds.Identifier = id
	}
	return creds, nil
}

// Clear implements domain.CredentialRepository
func (r *RedisCredentialRepository) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.prefix+keyUser, r.prefix+keyToken, r.prefix+keyIdentifier).Err()
}
