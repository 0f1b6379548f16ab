package guards

import (
	"github.com/you/portalauth/domain"
	"github.com/you/portalauth/internal/registry"
)

// Logical navigation paths outside the dashboard surfaces.
const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	RedirectPath = "/redirect"
)

// RouteGuard decides, per navigation attempt, whether the current session
// may view a path. Decide is pure and side-effect-free: it only inspects
// the session snapshot and never errors.
type RouteGuard struct {
	reg *registry.Registry
}

// NewRouteGuard creates a route guard over the role registry.
func NewRouteGuard(reg *registry.Registry) *RouteGuard {
	return &RouteGuard{reg: reg}
}

// Decide evaluates one navigation attempt. Unauthenticated sessions go to
// the login path. A role requirement that the session does not meet goes to
// the neutral redirect path, which re-dispatches on the session's own role.
func (g *RouteGuard) Decide(sess domain.Session, path string, required domain.Role) domain.GuardDecision {
	if !sess.IsAuthenticated {
		return domain.GuardDecision{RedirectTo: LoginPath}
	}
	if required.Valid() && sess.Role != required {
		return domain.GuardDecision{RedirectTo: RedirectPath}
	}
	return domain.GuardDecision{Allow: true}
}

// Dispatch resolves the neutral redirect path to the role's own dashboard
// root. The mapping is total: unknown roles land on the default root.
func (g *RouteGuard) Dispatch(role domain.Role) string {
	return g.reg.DashboardRoot(role)
}
