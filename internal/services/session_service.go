package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/you/portalauth/domain"
)

// Fallback error strings, used only when neither the backend nor the
// transport produced a message.
const (
	loginFallback     = "Login failed. Please try again."
	registerFallback  = "Registration failed. Please try again."
	otpSendFallback   = "Failed to send OTP. Please try again."
	otpVerifyFallback = "OTP verification failed."
	profileFallback   = "Failed to load profile."
)

// SessionServiceImpl implements domain.SessionService. It owns the single
// in-memory session and writes through to the credential repository on
// Login, VerifyOTP and Rehydrate; Logout is the only operation that deletes
// from it.
//
// Transitions serialize on the mutex. Concurrent duplicate dispatches are
// last-write-wins: the session reflects whichever terminal transition lands
// last, with no request fencing.
type SessionServiceImpl struct {
	mu     sync.Mutex
	sess   domain.Session
	creds  domain.CredentialRepository
	api    domain.AuthAPI
	otp    domain.OTPService
	tokens domain.TokenService
	now    func() time.Time
}

// NewSessionService creates the session state machine. The session starts
// Anonymous; callers are expected to Rehydrate once at process start.
func NewSessionService(
	creds domain.CredentialRepository,
	api domain.AuthAPI,
	otp domain.OTPService,
	tokens domain.TokenService,
) *SessionServiceImpl {
	return &SessionServiceImpl{
		creds:  creds,
		api:    api,
		otp:    otp,
		tokens: tokens,
		now:    time.Now,
	}
}

// begin applies the pending transition: loading set, previous error cleared.
func (s *SessionServiceImpl) begin() {
	s.mu.Lock()
	s.sess.Loading = true
	s.sess.Error = ""
	s.mu.Unlock()
}

// fail applies a rejected transition. The rest of the session is untouched.
func (s *SessionServiceImpl) fail(fallback string, err error) {
	s.mu.Lock()
	s.sess.Loading = false
	s.sess.Error = domain.ErrorMessage(err, fallback)
	s.mu.Unlock()
}

// Register implements domain.SessionService. A missing role selector fails
// fast with ErrRoleRequired before any backend call; the pending transition
// is still applied so the loading flag behaves like every other operation.
// Success stores the server-issued registration record as the pending draft
// but does not authenticate: registration must be followed by verification
// or login.
func (s *SessionServiceImpl) Register(ctx context.Context, payload *domain.RegisterPayload) error {
	s.begin()

	if payload == nil || strings.TrimSpace(payload.Role) == "" {
		s.fail(registerFallback, domain.ErrRoleRequired)
		return domain.ErrRoleRequired
	}

	record, err := s.api.Register(ctx, payload)
	if err != nil {
		s.fail(registerFallback, err)
		return err
	}

	draft := &domain.RegistrationDraft{
		Role:       domain.ParseRole(payload.Role),
		Identifier: payload.Identifier,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
	}
	if len(payload.Fields) > 0 {
		draft.Fields = make(map[string]string, len(payload.Fields))
		for k, v := range payload.Fields {
			draft.Fields[k] = v
		}
	}
	if record != nil {
		if record.FirstName != "" {
			draft.FirstName = record.FirstName
		}
		if record.LastName != "" {
			draft.LastName = record.LastName
		}
		if record.Identifier != "" {
			draft.Identifier = record.Identifier
		}
	}

	s.mu.Lock()
	s.sess.Loading = false
	s.sess.Error = ""
	s.sess.Draft = draft
	s.mu.Unlock()
	return nil
}

// Login implements domain.SessionService. Success replaces the session
// wholesale and persists credentials before the fulfilled transition
// completes. Failure leaves the prior session untouched except for the
// error message.
func (s *SessionServiceImpl) Login(ctx context.Context, identifier, password string) error {
	s.begin()

	res, err := s.api.Login(ctx, identifier, password)
	if err != nil {
		s.fail(loginFallback, err)
		return err
	}

	role := domain.ParseRole(res.Role)
	user := res.User.Clone()
	if user == nil {
		user = &domain.User{}
	}
	user.Role = strings.ToLower(res.Role)
	if user.Identifier == "" {
		user.Identifier = identifier
	}
	if res.Identifier != "" {
		user.Identifier = res.Identifier
	}

	creds := &domain.Credentials{User: user, Token: res.Token, Identifier: user.Identifier}
	if err := s.creds.Save(ctx, creds); err != nil {
		s.fail(loginFallback, err)
		return err
	}

	s.mu.Lock()
	s.sess = domain.Session{
		User:            user,
		Role:            role,
		Token:           res.Token,
		Identifier:      user.Identifier,
		IsAuthenticated: true,
		IsVerified:      true,
	}
	s.mu.Unlock()
	return nil
}

// SendOTP implements domain.SessionService.
func (s *SessionServiceImpl) SendOTP(ctx context.Context, identifier string) error {
	return s.sendOTP(ctx, identifier)
}

// SendLoginOTP implements domain.SessionService. Same mock exchange as
// SendOTP, kept as a distinct transition family for the login form.
func (s *SessionServiceImpl) SendLoginOTP(ctx context.Context, identifier string) error {
	return s.sendOTP(ctx, identifier)
}

func (s *SessionServiceImpl) sendOTP(ctx context.Context, identifier string) error {
	s.begin()

	if err := s.otp.Send(ctx, identifier); err != nil {
		s.mu.Lock()
		s.sess.Loading = false
		s.sess.OTPSent = false
		s.sess.Error = domain.ErrorMessage(err, otpSendFallback)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.sess.Loading = false
	s.sess.Error = ""
	s.sess.OTPSent = true
	s.sess.OTPSentAt = s.now()
	s.mu.Unlock()
	return nil
}

// VerifyOTP implements domain.SessionService. On the accepted code it
// synthesizes a user from the pending registration draft (or a patient
// default), issues a fresh bearer token, persists and authenticates. On
// mismatch only the error changes; IsVerified keeps its prior value.
func (s *SessionServiceImpl) VerifyOTP(ctx context.Context, identifier, code string) error {
	s.begin()

	if err := s.otp.Verify(code); err != nil {
		s.fail(otpVerifyFallback, err)
		return err
	}

	s.mu.Lock()
	draft := s.sess.Draft
	s.mu.Unlock()

	role := domain.RolePatient
	user := &domain.User{
		ID:         uuid.NewString(),
		Identifier: identifier,
	}
	if draft != nil {
		if draft.Role.Valid() {
			role = draft.Role
		}
		user.FirstName = draft.FirstName
		user.LastName = draft.LastName
		if len(draft.Fields) > 0 {
			user.Extra = make(map[string]string, len(draft.Fields))
			for k, v := range draft.Fields {
				user.Extra[k] = v
			}
		}
		if user.Identifier == "" {
			user.Identifier = draft.Identifier
		}
	}
	user.Role = role.String()

	token, err := s.tokens.Generate(user.ID, role)
	if err != nil {
		s.fail(otpVerifyFallback, err)
		return err
	}

	creds := &domain.Credentials{User: user, Token: token, Identifier: user.Identifier}
	if err := s.creds.Save(ctx, creds); err != nil {
		s.fail(otpVerifyFallback, err)
		return err
	}

	s.mu.Lock()
	s.sess = domain.Session{
		User:            user,
		Role:            role,
		Token:           token,
		Identifier:      user.Identifier,
		IsAuthenticated: true,
		IsVerified:      true,
	}
	s.mu.Unlock()
	return nil
}

// GetProfile implements domain.SessionService. Fetched fields shallow-merge
// into the existing user; role and token are never replaced.
func (s *SessionServiceImpl) GetProfile(ctx context.Context) error {
	s.begin()

	s.mu.Lock()
	token := s.sess.Token
	hasUser := s.sess.User != nil
	s.mu.Unlock()

	if token == "" || !hasUser {
		s.fail(profileFallback, domain.ErrNotAuthenticated)
		return domain.ErrNotAuthenticated
	}

	fields, err := s.api.Profile(ctx, token)
	if err != nil {
		s.fail(profileFallback, err)
		return err
	}

	s.mu.Lock()
	if s.sess.User != nil {
		mergeProfile(s.sess.User, fields)
	}
	s.sess.Loading = false
	s.sess.Error = ""
	s.mu.Unlock()
	return nil
}

// mergeProfile applies a shallow merge, skipping the role and identity
// fields the session machine owns.
func mergeProfile(u *domain.User, fields map[string]string) {
	for k, v := range fields {
		switch k {
		case "role", "userType", "token", "id":
			// owned by the session machine
		case "firstName":
			u.FirstName = v
		case "lastName":
			u.LastName = v
		case "identifier":
			// keep the login identifier
		default:
			if u.Extra == nil {
				u.Extra = make(map[string]string)
			}
			u.Extra[k] = v
		}
	}
}

// Logout implements domain.SessionService. Synchronous and infallible: the
// session resets to empty and the stored credentials are removed.
func (s *SessionServiceImpl) Logout(ctx context.Context) {
	s.mu.Lock()
	s.sess = domain.Session{}
	s.mu.Unlock()

	if err := s.creds.Clear(ctx); err != nil {
		log.Printf("LOGOUT_CLEAR_FAILED: error=%v timestamp=%s", err, s.now().UTC().Format(time.RFC3339))
	}
}

// Rehydrate implements domain.SessionService. A stored user/token pair is
// treated as already verified and authenticated; anything less is a no-op.
// Expired tokens rehydrate to Anonymous (fail closed); opaque non-JWT
// tokens from the backend are accepted as-is.
func (s *SessionServiceImpl) Rehydrate(ctx context.Context) error {
	c, err := s.creds.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialsNotFound) {
			return nil
		}
		return err
	}
	if c == nil || c.User == nil || c.Token == "" {
		return nil
	}

	if _, err := s.tokens.Validate(c.Token); err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return nil
		}
	}

	role := domain.ParseRole(c.User.RoleString())
	user := c.User.Clone()
	user.Role = strings.ToLower(user.RoleString())

	s.mu.Lock()
	s.sess = domain.Session{
		User:            user,
		Role:            role,
		Token:           c.Token,
		Identifier:      c.Identifier,
		IsAuthenticated: true,
		IsVerified:      true,
	}
	s.mu.Unlock()
	return nil
}

// Snapshot implements domain.SessionService.
func (s *SessionServiceImpl) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Clone()
}

// ClearError implements domain.SessionService.
func (s *SessionServiceImpl) ClearError() {
	s.mu.Lock()
	s.sess.Error = ""
	s.mu.Unlock()
}
