package domain

import (
	"context"
	"time"
)

// CredentialRepository persists the current session's credentials across
// process restarts. Save and Clear touch the user, token and identifier
// entries together so a reader never observes a torn state.
type CredentialRepository interface {
	Save(ctx context.Context, creds *Credentials) error
	Load(ctx context.Context) (*Credentials, error)
	Clear(ctx context.Context) error
}

// AuthAPI is the external backend consumed by the session service.
type AuthAPI interface {
	Register(ctx context.Context, payload *RegisterPayload) (*User, error)
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	Profile(ctx context.Context, token string) (map[string]string, error)
}

// OTPService simulates the out-of-band one-time-code exchange.
type OTPService interface {
	Send(ctx context.Context, identifier string) error
	Verify(code string) error
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// TokenService defines bearer token operations
type TokenService interface {
	Generate(userID string, role Role) (string, error)
	Validate(token string) (*TokenClaims, error)
}

// TokenClaims represents validated bearer token claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Delayer abstracts the simulated network latency so tests run synchronously.
type Delayer interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SessionService defines the session state machine's operations. Every
// async operation applies its pending transition at dispatch and exactly one
// terminal transition when the underlying call settles.
type SessionService interface {
	Register(ctx context.Context, payload *RegisterPayload) error
	Login(ctx context.Context, identifier, password string) error
	SendOTP(ctx context.Context, identifier string) error
	SendLoginOTP(ctx context.Context, identifier string) error
	VerifyOTP(ctx context.Context, identifier, code string) error
	GetProfile(ctx context.Context) error
	Logout(ctx context.Context)
	Rehydrate(ctx context.Context) error
	Snapshot() Session
	ClearError()
}
