package domain

import "time"

// User represents the authenticated portal actor.
type User struct {
	ID         string            `json:"id"`
	Identifier string            `json:"identifier"`
	Role       string            `json:"role"`
	UserType   string            `json:"userType,omitempty"`
	FirstName  string            `json:"firstName,omitempty"`
	LastName   string            `json:"lastName,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// RoleString returns the raw role identifier, falling back to the legacy
// userType field when role is unset.
func (u *User) RoleString() string {
	if u.Role != "" {
		return u.Role
	}
	return u.UserType
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.Extra != nil {
		cp.Extra = make(map[string]string, len(u.Extra))
		for k, v := range u.Extra {
			cp.Extra[k] = v
		}
	}
	return &cp
}

// RegistrationDraft holds the pending registration context between a
// Register call and the OTP verification that completes it.
type RegistrationDraft struct {
	Role       Role
	Identifier string
	FirstName  string
	LastName   string
	Fields     map[string]string
}

// Session is the in-memory representation of the current actor, token and
// operation status. A session without a token is never authenticated even
// if a user record is present.
type Session struct {
	User            *User
	Role            Role
	Token           string
	Identifier      string
	IsAuthenticated bool
	IsVerified      bool
	Loading         bool
	Error           string
	OTPSent         bool
	OTPSentAt       time.Time
	Draft           *RegistrationDraft
}

// Clone returns a copy safe to hand to guards and handlers.
func (s Session) Clone() Session {
	cp := s
	cp.User = s.User.Clone()
	if s.Draft != nil {
		d := *s.Draft
		if s.Draft.Fields != nil {
			d.Fields = make(map[string]string, len(s.Draft.Fields))
			for k, v := range s.Draft.Fields {
				d.Fields[k] = v
			}
		}
		cp.Draft = &d
	}
	return cp
}

// Credentials is the durable persisted form of an authenticated session.
type Credentials struct {
	User       *User
	Token      string
	Identifier string
}

// RegisterPayload carries a registration request to the backend. Role is the
// mandatory role selector.
type RegisterPayload struct {
	Role       string
	Identifier string
	Password   string
	FirstName  string
	LastName   string
	Fields     map[string]string
}

// LoginResult is the backend's answer to a credential login.
type LoginResult struct {
	Token      string
	Role       string
	Identifier string
	User       *User
}

// GuardDecision is the route guard's verdict for one navigation attempt.
type GuardDecision struct {
	Allow      bool
	RedirectTo string
}

// ShellDecision is the dashboard shell guard's verdict for one render.
type ShellDecision struct {
	Loading    bool
	Allow      bool
	RedirectTo string
	PageName   string
}

// MenuEntry is one navigation entry of a role's dashboard menu. Children
// hold nested submenu entries.
type MenuEntry struct {
	Label    string      `json:"label"`
	Path     string      `json:"path"`
	Children []MenuEntry `json:"children,omitempty"`
}
