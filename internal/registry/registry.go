package registry

import (
	"sort"
	"strings"

	"github.com/you/portalauth/domain"
)

// DefaultRoot is where unrecognized or absent roles are dispatched.
const DefaultRoot = "/"

// Entry describes one role's dashboard surface: its root path, the path
// prefix it owns, its ordered menu and its display-name rule.
type Entry struct {
	Root        string
	Prefix      string
	Menu        []domain.MenuEntry
	DisplayName func(u *domain.User) string
}

// Registry is the static total mapping from role to dashboard surface.
type Registry struct {
	entries map[domain.Role]Entry
}

// New builds the portal's role registry. The freelancer role shares the
// doctor dashboard prefix.
func New() *Registry {
	doctorMenu := []domain.MenuEntry{
		{Label: "Dashboard", Path: "/doctordashboard"},
		{Label: "Appointments", Path: "/doctordashboard/appointments"},
		{Label: "Patients", Path: "/doctordashboard/patients", Children: []domain.MenuEntry{
			{Label: "Patient Records", Path: "/doctordashboard/patients/records"},
			{Label: "Prescriptions", Path: "/doctordashboard/patients/prescriptions"},
		}},
		{Label: "Billing", Path: "/doctordashboard/billing"},
		{Label: "Settings", Path: "/doctordashboard/settings"},
	}

	namedOrDefault := func(u *domain.User, def string) string {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if name == "" {
			return def
		}
		return name
	}

	entries := map[domain.Role]Entry{
		domain.RolePatient: {
			Root:   "/patientdashboard",
			Prefix: "/patientdashboard",
			Menu: []domain.MenuEntry{
				{Label: "Dashboard", Path: "/patientdashboard"},
				{Label: "Appointments", Path: "/patientdashboard/appointments"},
				{Label: "Medical Records", Path: "/patientdashboard/records", Children: []domain.MenuEntry{
					{Label: "Lab Reports", Path: "/patientdashboard/records/labreports"},
					{Label: "Prescriptions", Path: "/patientdashboard/records/prescriptions"},
				}},
				{Label: "Invoices", Path: "/patientdashboard/invoices"},
				{Label: "Health Card", Path: "/patientdashboard/healthcard"},
			},
			DisplayName: func(u *domain.User) string { return namedOrDefault(u, "Patient") },
		},
		domain.RoleDoctor: {
			Root:   "/doctordashboard",
			Prefix: "/doctordashboard",
			Menu:   doctorMenu,
			DisplayName: func(u *domain.User) string {
				return "Dr. " + namedOrDefault(u, "Doctor")
			},
		},
		domain.RoleFreelancer: {
			Root:   "/doctordashboard",
			Prefix: "/doctordashboard",
			Menu:   doctorMenu,
			DisplayName: func(u *domain.User) string {
				return "Dr. " + namedOrDefault(u, "Doctor")
			},
		},
		domain.RoleHospital: {
			Root:   "/hospitaldashboard",
			Prefix: "/hospitaldashboard",
			Menu: []domain.MenuEntry{
				{Label: "Dashboard", Path: "/hospitaldashboard"},
				{Label: "Doctors", Path: "/hospitaldashboard/doctors"},
				{Label: "Departments", Path: "/hospitaldashboard/departments"},
				{Label: "Billing", Path: "/hospitaldashboard/billing"},
			},
			DisplayName: func(u *domain.User) string {
				if n := u.Extra["hospitalName"]; n != "" {
					return n
				}
				return namedOrDefault(u, "Hospital")
			},
		},
		domain.RoleLab: {
			Root:   "/labdashboard",
			Prefix: "/labdashboard",
			Menu: []domain.MenuEntry{
				{Label: "Dashboard", Path: "/labdashboard"},
				{Label: "Test Requests", Path: "/labdashboard/requests"},
				{Label: "Reports", Path: "/labdashboard/reports"},
			},
			DisplayName: func(u *domain.User) string {
				if n := u.Extra["labName"]; n != "" {
					return n
				}
				return namedOrDefault(u, "Lab")
			},
		},
		domain.RoleSuperadmin: {
			Root:   "/superadmindashboard",
			Prefix: "/superadmindashboard",
			Menu: []domain.MenuEntry{
				{Label: "Dashboard", Path: "/superadmindashboard"},
				{Label: "Hospitals", Path: "/superadmindashboard/hospitals"},
				{Label: "Pharmacies", Path: "/superadmindashboard/pharmacies"},
				{Label: "Users", Path: "/superadmindashboard/users"},
			},
			DisplayName: func(u *domain.User) string { return namedOrDefault(u, "Administrator") },
		},
	}

	return &Registry{entries: entries}
}

// DashboardRoot returns the dashboard root for role. The mapping is total:
// unknown roles fall through to DefaultRoot, never to an error.
func (r *Registry) DashboardRoot(role domain.Role) string {
	if e, ok := r.entries[role]; ok {
		return e.Root
	}
	return DefaultRoot
}

// PathPrefix returns the path prefix owned by role, or "" for unknown roles.
func (r *Registry) PathPrefix(role domain.Role) string {
	if e, ok := r.entries[role]; ok {
		return e.Prefix
	}
	return ""
}

// Menu returns role's ordered menu entries.
func (r *Registry) Menu(role domain.Role) []domain.MenuEntry {
	return r.entries[role].Menu
}

// FlatMenu returns role's menu with submenu entries flattened into the
// candidate set, sorted by path length descending. Ties keep the original
// menu order.
func (r *Registry) FlatMenu(role domain.Role) []domain.MenuEntry {
	var flat []domain.MenuEntry
	var walk func(entries []domain.MenuEntry)
	walk = func(entries []domain.MenuEntry) {
		for _, e := range entries {
			flat = append(flat, domain.MenuEntry{Label: e.Label, Path: e.Path})
			if len(e.Children) > 0 {
				walk(e.Children)
			}
		}
	}
	walk(r.entries[role].Menu)

	sort.SliceStable(flat, func(i, j int) bool {
		return len(flat[i].Path) > len(flat[j].Path)
	})
	return flat
}

// DisplayName resolves the header display name for the actor.
func (r *Registry) DisplayName(role domain.Role, u *domain.User) string {
	if u == nil {
		return ""
	}
	if e, ok := r.entries[role]; ok && e.DisplayName != nil {
		return e.DisplayName(u)
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
