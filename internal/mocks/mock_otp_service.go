package mocks

import (
	"context"

	"github.com/you/portalauth/domain"
)

// MockOTPService implements domain.OTPService for testing
type MockOTPService struct {
	SendFunc   func(ctx context.Context, identifier string) error
	VerifyFunc func(code string) error

	SentTo []string
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Send delivers a mock challenge
func (m *MockOTPService) Send(ctx context.Context, identifier string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, identifier)
	}
	// Default behavior: record and succeed
	m.SentTo = append(m.SentTo, identifier)
	return nil
}

// Verify checks a submitted code
func (m *MockOTPService) Verify(code string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(code)
	}
	// Default behavior: accept "123456" only
	if code == "123456" {
		return nil
	}
	return domain.ErrOTPInvalid
}
