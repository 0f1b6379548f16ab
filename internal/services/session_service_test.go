package services

import (
	"context"
	"errors"
	"testing"

	"github.com/you/portalauth/domain"
	"github.com/you/portalauth/internal/mocks"
)

type sessionFixture struct {
	svc   *SessionServiceImpl
	creds *mocks.MockCredentialRepository
	api   *mocks.MockAuthAPI
	otp   *mocks.MockOTPService
	token *mocks.MockTokenService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		creds: mocks.NewMockCredentialRepository(),
		api:   mocks.NewMockAuthAPI(),
		otp:   mocks.NewMockOTPService(),
		token: mocks.NewMockTokenService(),
	}
	f.svc = NewSessionService(f.creds, f.api, f.otp, f.token)
	return f
}

func doctorLogin(identifier string) func(ctx context.Context, id, pw string) (*domain.LoginResult, error) {
	return func(ctx context.Context, id, pw string) (*domain.LoginResult, error) {
		return &domain.LoginResult{
			Token:      "t1",
			Role:       "Doctor",
			Identifier: identifier,
			User:       &domain.User{ID: "u1", Role: "Doctor", FirstName: "Jane"},
		}, nil
	}
}

func TestSessionService_Login(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(f *sessionFixture)
		expectError   bool
		expectedError string
		validate      func(t *testing.T, f *sessionFixture)
	}{
		{
			name: "successful login normalizes role and persists credentials",
			setupMocks: func(f *sessionFixture) {
				f.api.LoginFunc = doctorLogin("a@b.com")
			},
			validate: func(t *testing.T, f *sessionFixture) {
				sess := f.svc.Snapshot()
				if !sess.IsAuthenticated || !sess.IsVerified {
					t.Error("expected authenticated and verified session")
				}
				if sess.Role != domain.RoleDoctor {
					t.Errorf("expected role doctor, got %q", sess.Role)
				}
				if sess.User == nil || sess.User.Role != "doctor" {
					t.Errorf("expected user role normalized to doctor, got %+v", sess.User)
				}
				if sess.Token != "t1" {
					t.Errorf("expected token t1, got %q", sess.Token)
				}
				if sess.Loading {
					t.Error("loading must be cleared after terminal transition")
				}
				if sess.Error != "" {
					t.Errorf("expected no error, got %q", sess.Error)
				}
				if f.creds.Saved == nil {
					t.Fatal("expected credentials persisted")
				}
				if f.creds.Saved.Token != "t1" || f.creds.Saved.Identifier != "a@b.com" {
					t.Errorf("persisted credentials mismatch: %+v", f.creds.Saved)
				}
				if f.creds.Saved.User == nil || f.creds.Saved.User.ID != "u1" {
					t.Errorf("persisted user mismatch: %+v", f.creds.Saved.User)
				}
			},
		},
		{
			name: "server message has priority",
			setupMocks: func(f *sessionFixture) {
				f.api.LoginFunc = func(ctx context.Context, id, pw string) (*domain.LoginResult, error) {
					return nil, &domain.APIError{Status: 401, Message: "Account locked", Err: "locked"}
				}
			},
			expectError:   true,
			expectedError: "Account locked",
		},
		{
			name: "server error field used when message absent",
			setupMocks: func(f *sessionFixture) {
				f.api.LoginFunc = func(ctx context.Context, id, pw string) (*domain.LoginResult, error) {
					return nil, &domain.APIError{Status: 401, Err: "invalid_grant"}
				}
			},
			expectError:   true,
			expectedError: "invalid_grant",
		},
		{
			name: "transport error message used when no structured error",
			setupMocks: func(f *sessionFixture) {
				f.api.LoginFunc = func(ctx context.Context, id, pw string) (*domain.LoginResult, error) {
					return nil, errors.New("connection refused")
				}
			},
			expectError:   true,
			expectedError: "connection refused",
		},
		{
			name: "store save failure rejects the transition",
			setupMocks: func(f *sessionFixture) {
				f.api.LoginFunc = doctorLogin("a@b.com")
				f.creds.SaveFunc = func(ctx context.Context, creds *domain.Credentials) error {
					return errors.New("disk full")
				}
			},
			expectError: true,
			validate: func(t *testing.T, f *sessionFixture) {
				sess := f.svc.Snapshot()
				if sess.IsAuthenticated {
					t.Error("session must not authenticate when write-through fails")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			tt.setupMocks(f)

			err := f.svc.Login(context.Background(), "a@b.com", "secret")
			if tt.expectError && err == nil {
				t.Fatal("expected error")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			sess := f.svc.Snapshot()
			if sess.Loading {
				t.Error("loading must never be left true after a terminal transition")
			}
			if tt.expectedError != "" && sess.Error != tt.expectedError {
				t.Errorf("expected error message %q, got %q", tt.expectedError, sess.Error)
			}
			if tt.validate != nil {
				tt.validate(t, f)
			}
		})
	}
}

func TestSessionService_LoginFailureLeavesPriorSession(t *testing.T) {
	f := newSessionFixture(t)
	f.api.LoginFunc = doctorLogin("a@b.com")
	if err := f.svc.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	f.api.LoginFunc = func(ctx context.Context, id, pw string) (*domain.LoginResult, error) {
		return nil, &domain.APIError{Status: 401, Message: "Invalid credentials"}
	}
	if err := f.svc.Login(context.Background(), "a@b.com", "wrong"); err == nil {
		t.Fatal("expected error")
	}

	sess := f.svc.Snapshot()
	if !sess.IsAuthenticated || sess.Token != "t1" || sess.Role != domain.RoleDoctor {
		t.Errorf("prior session must be untouched on failure, got %+v", sess)
	}
	if sess.Error != "Invalid credentials" {
		t.Errorf("expected error message set, got %q", sess.Error)
	}
}

func TestSessionService_Register(t *testing.T) {
	tests := []struct {
		name        string
		payload     *domain.RegisterPayload
		setupMocks  func(f *sessionFixture)
		expectedErr error
		validate    func(t *testing.T, f *sessionFixture)
	}{
		{
			name:        "missing role fails fast with validation error",
			payload:     &domain.RegisterPayload{Identifier: "9998887776"},
			setupMocks:  func(f *sessionFixture) {},
			expectedErr: domain.ErrRoleRequired,
			validate: func(t *testing.T, f *sessionFixture) {
				sess := f.svc.Snapshot()
				if sess.Error == "" {
					t.Error("expected validation error message")
				}
				if sess.IsAuthenticated {
					t.Error("registration failure must not authenticate")
				}
			},
		},
		{
			name: "successful registration stores draft without authenticating",
			payload: &domain.RegisterPayload{
				Role:       "Patient",
				Identifier: "9998887776",
				FirstName:  "Asha",
				Fields:     map[string]string{"bloodGroup": "O+"},
			},
			setupMocks: func(f *sessionFixture) {
				f.api.RegisterFunc = func(ctx context.Context, p *domain.RegisterPayload) (*domain.User, error) {
					return &domain.User{Identifier: p.Identifier, FirstName: "Asha", LastName: "Rao"}, nil
				}
			},
			validate: func(t *testing.T, f *sessionFixture) {
				sess := f.svc.Snapshot()
				if sess.IsAuthenticated || sess.User != nil {
					t.Error("registration must not authenticate")
				}
				if sess.Draft == nil {
					t.Fatal("expected pending registration draft")
				}
				if sess.Draft.Role != domain.RolePatient {
					t.Errorf("expected draft role patient, got %q", sess.Draft.Role)
				}
				if sess.Draft.LastName != "Rao" {
					t.Errorf("expected server record merged into draft, got %+v", sess.Draft)
				}
			},
		},
		{
			name:    "backend failure sets error and keeps session",
			payload: &domain.RegisterPayload{Role: "patient", Identifier: "9998887776"},
			setupMocks: func(f *sessionFixture) {
				f.api.RegisterFunc = func(ctx context.Context, p *domain.RegisterPayload) (*domain.User, error) {
					return nil, &domain.APIError{Status: 409, Message: "User already exists"}
				}
			},
			validate: func(t *testing.T, f *sessionFixture) {
				sess := f.svc.Snapshot()
				if sess.Error != "User already exists" {
					t.Errorf("expected server message, got %q", sess.Error)
				}
				if sess.Draft != nil {
					t.Error("failed registration must not store a draft")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			tt.setupMocks(f)

			err := f.svc.Register(context.Background(), tt.payload)
			if tt.expectedErr != nil && !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
			if f.svc.Snapshot().Loading {
				t.Error("loading must be cleared")
			}
			if tt.validate != nil {
				tt.validate(t, f)
			}
		})
	}
}

func TestSessionService_SendOTP(t *testing.T) {
	t.Run("success sets otp sent flag and timestamp", func(t *testing.T) {
		f := newSessionFixture(t)
		if err := f.svc.SendOTP(context.Background(), "9998887776"); err != nil {
			t.Fatalf("send otp: %v", err)
		}
		sess := f.svc.Snapshot()
		if !sess.OTPSent {
			t.Error("expected OTPSent true")
		}
		if sess.OTPSentAt.IsZero() {
			t.Error("expected send timestamp recorded")
		}
		if len(f.otp.SentTo) != 1 || f.otp.SentTo[0] != "9998887776" {
			t.Errorf("expected one send to identifier, got %v", f.otp.SentTo)
		}
	})

	t.Run("failure clears otp sent flag", func(t *testing.T) {
		f := newSessionFixture(t)
		f.otp.SendFunc = func(ctx context.Context, identifier string) error {
			return errors.New("sms gateway down")
		}
		if err := f.svc.SendLoginOTP(context.Background(), "9998887776"); err == nil {
			t.Fatal("expected error")
		}
		sess := f.svc.Snapshot()
		if sess.OTPSent {
			t.Error("expected OTPSent false after failure")
		}
		if sess.Error != "sms gateway down" {
			t.Errorf("expected transport message, got %q", sess.Error)
		}
	})
}

func TestSessionService_VerifyOTP(t *testing.T) {
	t.Run("accepted code synthesizes user from draft", func(t *testing.T) {
		f := newSessionFixture(t)
		f.api.RegisterFunc = func(ctx context.Context, p *domain.RegisterPayload) (*domain.User, error) {
			return &domain.User{Identifier: p.Identifier}, nil
		}
		payload := &domain.RegisterPayload{
			Role:       "hospital",
			Identifier: "9998887776",
			FirstName:  "City",
			Fields:     map[string]string{"hospitalName": "City Care"},
		}
		if err := f.svc.Register(context.Background(), payload); err != nil {
			t.Fatalf("register: %v", err)
		}

		if err := f.svc.VerifyOTP(context.Background(), "9998887776", "123456"); err != nil {
			t.Fatalf("verify otp: %v", err)
		}

		sess := f.svc.Snapshot()
		if !sess.IsAuthenticated || !sess.IsVerified {
			t.Error("expected authenticated and verified session")
		}
		if sess.Role != domain.RoleHospital {
			t.Errorf("expected hospital role from draft, got %q", sess.Role)
		}
		if sess.User == nil || sess.User.ID == "" {
			t.Fatal("expected synthesized user with generated id")
		}
		if sess.User.Extra["hospitalName"] != "City Care" {
			t.Errorf("expected draft fields on synthesized user, got %+v", sess.User.Extra)
		}
		if sess.Token == "" {
			t.Error("expected generated bearer token")
		}
		if sess.Draft != nil {
			t.Error("draft must be discarded after verification")
		}
		if f.creds.Saved == nil || f.creds.Saved.Token != sess.Token {
			t.Error("expected credentials persisted with matching token")
		}
	})

	t.Run("accepted code without draft defaults to patient", func(t *testing.T) {
		f := newSessionFixture(t)
		if err := f.svc.VerifyOTP(context.Background(), "9998887776", "123456"); err != nil {
			t.Fatalf("verify otp: %v", err)
		}
		sess := f.svc.Snapshot()
		if sess.Role != domain.RolePatient {
			t.Errorf("expected default patient role, got %q", sess.Role)
		}
		if !sess.IsAuthenticated || !sess.IsVerified {
			t.Error("expected authenticated and verified session")
		}
	})

	t.Run("wrong code leaves session unchanged except error", func(t *testing.T) {
		f := newSessionFixture(t)
		f.api.LoginFunc = doctorLogin("a@b.com")
		if err := f.svc.Login(context.Background(), "a@b.com", "secret"); err != nil {
			t.Fatalf("login: %v", err)
		}
		before := f.svc.Snapshot()

		if err := f.svc.VerifyOTP(context.Background(), "a@b.com", "000000"); err == nil {
			t.Fatal("expected error")
		}

		sess := f.svc.Snapshot()
		if !sess.IsVerified {
			t.Error("IsVerified must not flip to false on a bad code")
		}
		if sess.Token != before.Token || sess.Role != before.Role {
			t.Error("session must be unchanged except for the error")
		}
		if sess.Error == "" {
			t.Error("expected rejection message surfaced")
		}
	})
}

func TestSessionService_GetProfile(t *testing.T) {
	t.Run("merges fields without touching role or token", func(t *testing.T) {
		f := newSessionFixture(t)
		f.api.LoginFunc = doctorLogin("a@b.com")
		if err := f.svc.Login(context.Background(), "a@b.com", "secret"); err != nil {
			t.Fatalf("login: %v", err)
		}
		f.api.ProfileFunc = func(ctx context.Context, token string) (map[string]string, error) {
			return map[string]string{
				"firstName":      "Janet",
				"specialization": "Cardiology",
				"role":           "superadmin",
				"token":          "hijacked",
			}, nil
		}

		if err := f.svc.GetProfile(context.Background()); err != nil {
			t.Fatalf("get profile: %v", err)
		}

		sess := f.svc.Snapshot()
		if sess.User.FirstName != "Janet" {
			t.Errorf("expected merged first name, got %q", sess.User.FirstName)
		}
		if sess.User.Extra["specialization"] != "Cardiology" {
			t.Errorf("expected extra field merged, got %+v", sess.User.Extra)
		}
		if sess.Role != domain.RoleDoctor || sess.User.Role != "doctor" {
			t.Error("profile merge must never replace the role")
		}
		if sess.Token != "t1" {
			t.Error("profile merge must never replace the token")
		}
	})

	t.Run("fails when not authenticated", func(t *testing.T) {
		f := newSessionFixture(t)
		if err := f.svc.GetProfile(context.Background()); !errors.Is(err, domain.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestSessionService_Logout(t *testing.T) {
	f := newSessionFixture(t)
	f.api.LoginFunc = doctorLogin("a@b.com")
	if err := f.svc.Login(context.Background(), "a@b.com", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}

	f.svc.Logout(context.Background())

	sess := f.svc.Snapshot()
	if sess.User != nil || sess.Token != "" || sess.IsAuthenticated || sess.IsVerified {
		t.Errorf("expected fully empty session, got %+v", sess)
	}
	if !f.creds.Cleared {
		t.Error("expected credential store cleared")
	}
	if _, err := f.creds.Load(context.Background()); !errors.Is(err, domain.ErrCredentialsNotFound) {
		t.Error("expected no stored credentials after logout")
	}
}

func TestSessionService_Rehydrate(t *testing.T) {
	t.Run("round-trips a logged-in session without the network", func(t *testing.T) {
		f := newSessionFixture(t)
		f.api.LoginFunc = doctorLogin("a@b.com")
		if err := f.svc.Login(context.Background(), "a@b.com", "secret"); err != nil {
			t.Fatalf("login: %v", err)
		}
		saved := f.creds.Saved

		// New process: fresh machine over the same store, no backend.
		f2 := newSessionFixture(t)
		f2.creds.Saved = saved
		f2.api.LoginFunc = func(ctx context.Context, id, pw string) (*domain.LoginResult, error) {
			t.Fatal("rehydrate must not contact the network")
			return nil, nil
		}

		if err := f2.svc.Rehydrate(context.Background()); err != nil {
			t.Fatalf("rehydrate: %v", err)
		}

		sess := f2.svc.Snapshot()
		if !sess.IsAuthenticated || !sess.IsVerified {
			t.Error("expected rehydrated session authenticated and verified")
		}
		if sess.Role != domain.RoleDoctor || sess.Token != "t1" {
			t.Errorf("expected equivalent session, got role=%q token=%q", sess.Role, sess.Token)
		}
	})

	t.Run("empty store is a no-op", func(t *testing.T) {
		f := newSessionFixture(t)
		if err := f.svc.Rehydrate(context.Background()); err != nil {
			t.Fatalf("rehydrate: %v", err)
		}
		if f.svc.Snapshot().IsAuthenticated {
			t.Error("expected anonymous session")
		}
	})

	t.Run("expired token rehydrates to anonymous", func(t *testing.T) {
		f := newSessionFixture(t)
		f.creds.Saved = &domain.Credentials{
			User:  &domain.User{ID: "u1", Role: "doctor"},
			Token: "expired-token",
		}
		f.token.ValidateFunc = func(token string) (*domain.TokenClaims, error) {
			return nil, domain.ErrTokenExpired
		}
		if err := f.svc.Rehydrate(context.Background()); err != nil {
			t.Fatalf("rehydrate: %v", err)
		}
		if f.svc.Snapshot().IsAuthenticated {
			t.Error("expired token must rehydrate to anonymous")
		}
	})

	t.Run("missing token is a no-op", func(t *testing.T) {
		f := newSessionFixture(t)
		f.creds.LoadFunc = func(ctx context.Context) (*domain.Credentials, error) {
			return &domain.Credentials{User: &domain.User{ID: "u1", Role: "doctor"}}, nil
		}
		if err := f.svc.Rehydrate(context.Background()); err != nil {
			t.Fatalf("rehydrate: %v", err)
		}
		sess := f.svc.Snapshot()
		if sess.IsAuthenticated || sess.User != nil {
			t.Error("a user without a token must not authenticate")
		}
	})
}
