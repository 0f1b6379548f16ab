package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/you/portalauth/domain"
	"github.com/you/portalauth/internal/config"
	"github.com/you/portalauth/internal/guards"
	"github.com/you/portalauth/internal/infrastructure/auth"
	"github.com/you/portalauth/internal/infrastructure/backend"
	"github.com/you/portalauth/internal/infrastructure/database"
	"github.com/you/portalauth/internal/infrastructure/notifications"
	"github.com/you/portalauth/internal/infrastructure/repositories"
	"github.com/you/portalauth/internal/registry"
	"github.com/you/portalauth/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client

	// Core
	Registry        *registry.Registry
	CredRepo        domain.CredentialRepository
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OTPSvc          domain.OTPService
	AuthAPI         domain.AuthAPI
	Sessions        domain.SessionService
	Casbin          *auth.CasbinService
	RouteGuard      *guards.RouteGuard
	ShellGuard      *guards.ShellGuard
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg, Registry: registry.New()}

	if err := c.initStore(); err != nil {
		return nil, err
	}
	if err := c.initServices(); err != nil {
		return nil, err
	}
	if err := c.initGuards(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initStore() error {
	switch c.Config.StoreDriver {
	case "redis":
		c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
		c.CredRepo = repositories.NewRedisCredentialRepository(c.RedisClient)
	case "gorm":
		db, err := database.Open(c.Config.DSN)
		if err != nil {
			return fmt.Errorf("failed to open credential store database: %w", err)
		}
		repo, err := repositories.NewGormCredentialRepository(db)
		if err != nil {
			return err
		}
		c.DB = db
		c.CredRepo = repo
	case "memory", "":
		c.CredRepo = repositories.NewMemoryCredentialRepository()
	default:
		return fmt.Errorf("unknown store driver %q", c.Config.StoreDriver)
	}
	return nil
}

func (c *Container) initServices() error {
	c.TokenSvc = auth.NewJWTService(c.Config.TokenSecret, c.Config.TokenIssuer, c.Config.TokenTTL)
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
	)

	c.OTPSvc = services.NewOTPService(c.NotificationSvc, services.NewSleepDelayer(), services.OTPConfig{
		AcceptedCode: c.Config.OTPAcceptedCode,
		SendLatency:  c.Config.OTPSendLatency,
		ResendWindow: c.Config.OTPResendWindow,
	})

	switch c.Config.BackendMode {
	case "http":
		c.AuthAPI = backend.NewHTTPAuthAPI(c.Config.BackendBaseURL)
	case "memory", "":
		c.AuthAPI = backend.NewMemoryAuthAPI(c.TokenSvc)
	default:
		return fmt.Errorf("unknown backend mode %q", c.Config.BackendMode)
	}

	c.Sessions = services.NewSessionService(c.CredRepo, c.AuthAPI, c.OTPSvc, c.TokenSvc)
	return nil
}

func (c *Container) initGuards() error {
	cas, err := auth.NewCasbinService(c.Registry, c.DB)
	if err != nil {
		return err
	}
	c.Casbin = cas
	c.RouteGuard = guards.NewRouteGuard(c.Registry)
	c.ShellGuard = guards.NewShellGuard(c.Registry, cas)
	return nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
