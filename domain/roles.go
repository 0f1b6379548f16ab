package domain

import "strings"

// Role is the closed set of actor kinds the portal authorizes against.
type Role string

const (
	RolePatient    Role = "patient"
	RoleDoctor     Role = "doctor"
	RoleFreelancer Role = "freelancer"
	RoleHospital   Role = "hospital"
	RoleLab        Role = "lab"
	RoleSuperadmin Role = "superadmin"
	RoleUnknown    Role = ""
)

// ParseRole normalizes a role identifier to its canonical lowercase form.
// Unrecognized values map to RoleUnknown, never to an error.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePatient:
		return RolePatient
	case RoleDoctor:
		return RoleDoctor
	case RoleFreelancer:
		return RoleFreelancer
	case RoleHospital:
		return RoleHospital
	case RoleLab:
		return RoleLab
	case RoleSuperadmin:
		return RoleSuperadmin
	default:
		return RoleUnknown
	}
}

// Valid reports whether r is one of the six known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleFreelancer, RoleHospital, RoleLab, RoleSuperadmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// AllRoles returns the known roles in a stable order.
func AllRoles() []Role {
	return []Role{RolePatient, RoleDoctor, RoleFreelancer, RoleHospital, RoleLab, RoleSuperadmin}
}
