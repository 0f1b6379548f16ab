package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/portalauth/domain"
	"github.com/you/portalauth/internal/http/handlers"
	"github.com/you/portalauth/internal/registry"
)

// BuildRouter wires the session operations, the guard decision endpoints
// and one guarded shell route per dashboard prefix.
func BuildRouter(sh *handlers.SessionHandlers, reg *registry.Registry, guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/:role/register", sh.Register)
	auth.POST("/login", sh.Login)
	auth.POST("/otp/send", sh.SendOTP)
	auth.POST("/otp/login-send", sh.SendLoginOTP)
	auth.POST("/otp/verify", sh.VerifyOTP)
	auth.POST("/logout", sh.Logout)
	auth.GET("/session", sh.Session)
	auth.GET("/profile", sh.Profile)

	r.GET("/navigate", sh.Navigate)
	r.GET("/shell", sh.Shell)
	r.GET("/redirect", sh.Redirect)

	// One shell route per distinct dashboard prefix (freelancer shares
	// doctor's, so it registers once).
	seen := map[string]bool{}
	dash := r.Group("/").Use(guard)
	for _, role := range domain.AllRoles() {
		prefix := reg.PathPrefix(role)
		if prefix == "" || seen[prefix] {
			continue
		}
		seen[prefix] = true
		dash.GET(prefix, sh.Dashboard)
		dash.GET(prefix+"/*sub", sh.Dashboard)
	}

	return r
}
