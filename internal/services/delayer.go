package services

import (
	"context"
	"time"

	"github.com/you/portalauth/domain"
)

// SleepDelayer implements domain.Delayer with a real timer.
type SleepDelayer struct{}

// NewSleepDelayer creates the production delayer.
func NewSleepDelayer() domain.Delayer {
	return SleepDelayer{}
}

// Sleep waits for d or until ctx is cancelled.
func (SleepDelayer) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
