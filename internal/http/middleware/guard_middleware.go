package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/portalauth/domain"
	"github.com/you/portalauth/internal/guards"
)

// NavigationGuard runs the route guard on every dashboard request and
// redirects instead of serving when the decision is not allow. Redirection
// is the error handling for authorization failures; nothing is surfaced.
func NavigationGuard(sessions domain.SessionService, routeGuard *guards.RouteGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := routeGuard.Decide(sessions.Snapshot(), c.Request.URL.Path, domain.RoleUnknown)
		if !decision.Allow {
			c.Redirect(http.StatusFound, decision.RedirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}
