package auth

import (
	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/you/portalauth/domain"
	"github.com/you/portalauth/internal/registry"
)

// guardModel matches a role against the dashboard path patterns it owns.
const guardModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj)
`

// CasbinService answers path-ownership questions for the guards.
type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService builds the enforcer with policies seeded from the role
// registry. When db is non-nil the policies persist through the gorm
// adapter; otherwise the enforcer is memory-only.
func NewCasbinService(reg *registry.Registry, db *gorm.DB) (*CasbinService, error) {
	m, err := casbinmodel.NewModelFromString(guardModel)
	if err != nil {
		return nil, err
	}

	var e *casbin.Enforcer
	if db != nil {
		adp, aerr := gormadapter.NewAdapterByDB(db)
		if aerr != nil {
			return nil, aerr
		}
		e, err = casbin.NewEnforcer(m, adp)
		if err != nil {
			return nil, err
		}
		if err := e.LoadPolicy(); err != nil {
			return nil, err
		}
	} else {
		e, err = casbin.NewEnforcer(m)
		if err != nil {
			return nil, err
		}
	}

	for _, role := range domain.AllRoles() {
		prefix := reg.PathPrefix(role)
		if prefix == "" {
			continue
		}
		if _, err := e.AddPolicy(role.String(), prefix); err != nil {
			return nil, err
		}
		if _, err := e.AddPolicy(role.String(), prefix+"/*"); err != nil {
			return nil, err
		}
	}
	if db != nil {
		_ = e.SavePolicy()
	}

	return &CasbinService{E: e}, nil
}

// Owns reports whether role's dashboard prefix covers path. Enforcement
// errors count as not owned (fail closed).
func (s *CasbinService) Owns(role domain.Role, path string) bool {
	ok, err := s.E.Enforce(role.String(), path)
	return err == nil && ok
}
