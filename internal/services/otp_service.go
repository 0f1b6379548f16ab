package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/you/portalauth/domain"
)

// OTPServiceImpl implements domain.OTPService as a mock out-of-band
// exchange: delivery is a fixed simulated latency through the injected
// Delayer, and verification compares against the single configured code.
type OTPServiceImpl struct {
	notificationSvc domain.NotificationService
	delayer         domain.Delayer
	config          OTPConfig

	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time
}

type OTPConfig struct {
	AcceptedCode string
	SendLatency  time.Duration
	ResendWindow time.Duration
}

// NewOTPService creates a new mock OTP service.
func NewOTPService(notificationSvc domain.NotificationService, delayer domain.Delayer, config OTPConfig) *OTPServiceImpl {
	return &OTPServiceImpl{
		notificationSvc: notificationSvc,
		delayer:         delayer,
		config:          config,
		lastSent:        make(map[string]time.Time),
		now:             time.Now,
	}
}

// Send implements domain.OTPService. It throttles resends per identifier,
// waits out the simulated latency and hands the code to the notification
// service.
func (s *OTPServiceImpl) Send(ctx context.Context, identifier string) error {
	if canResend, wait := s.canResend(identifier); !canResend {
		return fmt.Errorf("please wait %d seconds before requesting a new OTP", wait)
	}

	if err := s.delayer.Sleep(ctx, s.config.SendLatency); err != nil {
		return fmt.Errorf("failed to send OTP: %w", err)
	}

	message := fmt.Sprintf("Your verification code is: %s", s.config.AcceptedCode)
	if err := s.notificationSvc.SendSMS(identifier, message); err != nil {
		return fmt.Errorf("failed to send OTP SMS: %w", err)
	}

	s.mu.Lock()
	s.lastSent[identifier] = s.now()
	s.mu.Unlock()
	return nil
}

// Verify implements domain.OTPService. The rejection message carries the
// accepted code as a hint, matching the mock flow's behavior.
func (s *OTPServiceImpl) Verify(code string) error {
	if code == s.config.AcceptedCode {
		return nil
	}
	return fmt.Errorf("%w: use %s to verify", domain.ErrOTPInvalid, s.config.AcceptedCode)
}

func (s *OTPServiceImpl) canResend(identifier string) (bool, int64) {
	if s.config.ResendWindow <= 0 {
		return true, 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastSent[identifier]
	if !ok {
		return true, 0
	}
	elapsed := s.now().Sub(last)
	if elapsed >= s.config.ResendWindow {
		return true, 0
	}
	return false, int64((s.config.ResendWindow - elapsed).Seconds())
}
