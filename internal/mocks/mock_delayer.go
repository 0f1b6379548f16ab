package mocks

import (
	"context"
	"time"
)

// MockDelayer implements domain.Delayer for testing. The default behavior
// returns immediately so tests run synchronously.
type MockDelayer struct {
	SleepFunc func(ctx context.Context, d time.Duration) error

	Slept []time.Duration
}

// NewMockDelayer creates a new MockDelayer with default behaviors
func NewMockDelayer() *MockDelayer {
	return &MockDelayer{}
}

// Sleep records the requested delay without waiting
func (m *MockDelayer) Sleep(ctx context.Context, d time.Duration) error {
	if m.SleepFunc != nil {
		return m.SleepFunc(ctx, d)
	}
	m.Slept = append(m.Slept, d)
	return nil
}
