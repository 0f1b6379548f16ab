package app

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/portalauth/internal/config"
	httpx "github.com/you/portalauth/internal/http"
	"github.com/you/portalauth/internal/http/handlers"
	"github.com/you/portalauth/internal/http/middleware"
)

func Run(cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(context.Background()).Err(); err != nil {
			return err
		}
	}

	// Rehydrate once at startup; a failed or empty store starts Anonymous.
	if err := c.Sessions.Rehydrate(context.Background()); err != nil {
		log.Printf("rehydrate: starting anonymous: %v", err)
	}

	sh := handlers.NewSessionHandlers(c.Sessions, c.RouteGuard, c.ShellGuard, c.Registry)
	guard := middleware.NavigationGuard(c.Sessions, c.RouteGuard)
	r := httpx.BuildRouter(sh, c.Registry, guard)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
