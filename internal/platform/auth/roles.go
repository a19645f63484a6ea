package auth

import "github.com/medinsight/medinsight/internal/platform/keycloak"

// LoginPath is where unauthenticated callers are redirected.
const LoginPath = "/connexion"

// dashboardPaths maps each role to its home dashboard. MANAGER and ADMIN
// share the administration dashboard.
var dashboardPaths = map[string]string{
	keycloak.RolePatient:         "/patient/dashboard",
	keycloak.RoleMedecin:         "/medecin/dashboard",
	keycloak.RoleManager:         "/admin/dashboard",
	keycloak.RoleSecurityOfficer: "/securite/dashboard",
	keycloak.RoleAdmin:           "/admin/dashboard",
}

// DashboardPath returns the dashboard for a role, falling back to the login
// page when the role is unknown.
func DashboardPath(role string) string {
	if p, ok := dashboardPaths[role]; ok {
		return p
	}
	return LoginPath
}

// PickRole selects the application role from a token's realm roles. Realm
// tokens also carry built-in roles like offline_access, so only the managed
// catalog counts; PATIENT is the fallback when none is present.
func PickRole(realmRoles []string) string {
	for _, r := range realmRoles {
		if keycloak.IsManagedRole(r) {
			return r
		}
	}
	return keycloak.RolePatient
}
