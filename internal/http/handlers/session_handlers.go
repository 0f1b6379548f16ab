package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/portalauth/domain"
	"github.com/you/portalauth/internal/guards"
	"github.com/you/portalauth/internal/registry"
)

// SessionHandlers exposes the session state machine and the navigation
// guards over HTTP.
type SessionHandlers struct {
	sessions   domain.SessionService
	routeGuard *guards.RouteGuard
	shellGuard *guards.ShellGuard
	reg        *registry.Registry
}

// NewSessionHandlers creates new session handlers
func NewSessionHandlers(
	sessions domain.SessionService,
	routeGuard *guards.RouteGuard,
	shellGuard *guards.ShellGuard,
	reg *registry.Registry,
) *SessionHandlers {
	return &SessionHandlers{
		sessions:   sessions,
		routeGuard: routeGuard,
		shellGuard: shellGuard,
		reg:        reg,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Identifier string            `json:"identifier" binding:"required"`
	Password   string            `json:"password"`
	FirstName  string            `json:"firstName"`
	LastName   string            `json:"lastName"`
	Fields     map[string]string `json:"fields"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// OTPSendRequest represents an OTP challenge request
type OTPSendRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// OTPVerifyRequest represents OTP verification request
type OTPVerifyRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

// Register handles user registration. The role selector is the path
// parameter, mirroring the backend's auth/{role}/register shape.
func (h *SessionHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload := &domain.RegisterPayload{
		Role:       c.Param("role"),
		Identifier: req.Identifier,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Fields:     req.Fields,
	}

	if err := h.sessions.Register(c.Request.Context(), payload); err != nil {
		c.JSON(statusFor(err), gin.H{"error": h.sessions.Snapshot().Error})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"message": "Registered successfully. Please verify with the OTP sent to you.",
		},
	})
}

// Login handles credential login
func (h *SessionHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.Login(c.Request.Context(), req.Identifier, req.Password); err != nil {
		c.JSON(statusFor(err), gin.H{"error": h.sessions.Snapshot().Error})
		return
	}

	sess := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"token": sess.Token,
			"role":  sess.Role.String(),
			"user":  sess.User,
		},
	})
}

// SendOTP handles a registration OTP challenge
func (h *SessionHandlers) SendOTP(c *gin.Context) {
	h.sendOTP(c, h.sessions.SendOTP)
}

// SendLoginOTP handles a login OTP challenge
func (h *SessionHandlers) SendLoginOTP(c *gin.Context) {
	h.sendOTP(c, h.sessions.SendLoginOTP)
}

func (h *SessionHandlers) sendOTP(c *gin.Context, send func(ctx context.Context, identifier string) error) {
	var req OTPSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := send(c.Request.Context(), req.Identifier); err != nil {
		c.JSON(statusFor(err), gin.H{"error": h.sessions.Snapshot().Error})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "OTP sent successfully"},
	})
}

// VerifyOTP handles OTP verification
func (h *SessionHandlers) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.VerifyOTP(c.Request.Context(), req.Identifier, req.Code); err != nil {
		c.JSON(statusFor(err), gin.H{"error": h.sessions.Snapshot().Error})
		return
	}

	sess := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": "Verified successfully",
			"token":   sess.Token,
			"role":    sess.Role.String(),
		},
	})
}

// Profile refreshes and returns the actor's profile
func (h *SessionHandlers) Profile(c *gin.Context) {
	if err := h.sessions.GetProfile(c.Request.Context()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": h.sessions.Snapshot().Error})
		return
	}

	sess := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{"data": sess.User})
}

// Logout clears the session and stored credentials
func (h *SessionHandlers) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"message": "Logged out successfully"},
	})
}

// Session returns the current session snapshot
func (h *SessionHandlers) Session(c *gin.Context) {
	sess := h.sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"isAuthenticated": sess.IsAuthenticated,
			"isVerified":      sess.IsVerified,
			"loading":         sess.Loading,
			"error":           sess.Error,
			"otpSent":         sess.OTPSent,
			"role":            sess.Role.String(),
			"identifier":      sess.Identifier,
			"user":            sess.User,
			"displayName":     h.reg.DisplayName(sess.Role, sess.User),
		},
	})
}

// Navigate returns the route guard's decision for a navigation attempt.
// The optional role query parameter is the route's role requirement.
func (h *SessionHandlers) Navigate(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}
	required := domain.ParseRole(c.Query("role"))

	decision := h.routeGuard.Decide(h.sessions.Snapshot(), path, required)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"allow":      decision.Allow,
			"redirectTo": decision.RedirectTo,
		},
	})
}

// Shell returns the shell guard's decision for a dashboard render without
// performing the redirect, for callers that only want the verdict.
func (h *SessionHandlers) Shell(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter is required"})
		return
	}

	decision := h.shellGuard.Evaluate(h.sessions.Snapshot(), path)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"loading":    decision.Loading,
			"allow":      decision.Allow,
			"redirectTo": decision.RedirectTo,
			"pageName":   decision.PageName,
		},
	})
}

// Redirect dispatches the neutral redirect path to the session role's own
// dashboard root.
func (h *SessionHandlers) Redirect(c *gin.Context) {
	sess := h.sessions.Snapshot()
	c.Redirect(http.StatusFound, h.routeGuard.Dispatch(sess.Role))
}

// Dashboard renders a guarded dashboard shell: the shell guard validates
// path ownership and resolves the current page name for the header.
func (h *SessionHandlers) Dashboard(c *gin.Context) {
	sess := h.sessions.Snapshot()
	decision := h.shellGuard.Evaluate(sess, c.Request.URL.Path)

	if decision.Loading {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"loading": true}})
		return
	}
	if !decision.Allow {
		c.Redirect(http.StatusFound, decision.RedirectTo)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"pageName":    decision.PageName,
			"displayName": h.reg.DisplayName(sess.Role, sess.User),
			"menu":        h.reg.Menu(sess.Role),
		},
	})
}

// statusFor maps session machine failures to HTTP status codes.
func statusFor(err error) int {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrRoleRequired), errors.Is(err, domain.ErrIdentifierRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOTPInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr):
		if apiErr.Status > 0 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
