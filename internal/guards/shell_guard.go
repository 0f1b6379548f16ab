package guards

import (
	"strings"

	"github.com/you/portalauth/domain"
	"github.com/you/portalauth/internal/registry"
)

// DefaultPageName is the header label when no menu entry matches the path.
const DefaultPageName = "Dashboard"

// PathOwnership answers whether a role's dashboard prefix covers a path.
type PathOwnership interface {
	Owns(role domain.Role, path string) bool
}

// ShellGuard is the secondary, path-prefix validation performed once a
// dashboard shell renders. It re-derives the expected dashboard area from
// the actor's role and corrects any mismatch.
type ShellGuard struct {
	reg       *registry.Registry
	ownership PathOwnership
}

// NewShellGuard creates a shell guard.
func NewShellGuard(reg *registry.Registry, ownership PathOwnership) *ShellGuard {
	return &ShellGuard{reg: reg, ownership: ownership}
}

// Evaluate validates one dashboard render. While an operation is in flight
// the shell shows a loading placeholder and no navigation decision is made.
// A session without a valid role is malformed and goes back to login; a
// valid actor in the wrong dashboard area goes to its own root, not to
// login.
func (g *ShellGuard) Evaluate(sess domain.Session, path string) domain.ShellDecision {
	if sess.Loading {
		return domain.ShellDecision{Loading: true}
	}
	if !sess.IsAuthenticated || sess.User == nil {
		return domain.ShellDecision{RedirectTo: LoginPath}
	}

	userType := domain.ParseRole(sess.User.RoleString())
	if !userType.Valid() {
		return domain.ShellDecision{RedirectTo: LoginPath}
	}

	if !g.ownership.Owns(userType, path) {
		return domain.ShellDecision{RedirectTo: g.reg.DashboardRoot(userType)}
	}

	return domain.ShellDecision{Allow: true, PageName: g.pageName(userType, path)}
}

// pageName matches the path longest-prefix-first against the role's
// flattened menu. Ties on length keep original menu order.
func (g *ShellGuard) pageName(role domain.Role, path string) string {
	for _, entry := range g.reg.FlatMenu(role) {
		if strings.HasPrefix(path, entry.Path) {
			return entry.Label
		}
	}
	return DefaultPageName
}
