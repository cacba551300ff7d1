package auth

import "github.com/wavemax/affiliate-program/internal/domain"

// roleHierarchy maps each role to the set of roles it may act upon. The
// relation is reflexive for every registered role. The hierarchy is never
// consulted for field visibility.
var roleHierarchy = map[domain.Role][]domain.Role{
	domain.RoleAdmin: {
		domain.RoleAdmin,
		domain.RoleAdministrator,
		domain.RoleOperator,
		domain.RoleAffiliate,
		domain.RoleCustomer,
	},
	domain.RoleAdministrator: {
		domain.RoleAdministrator,
		domain.RoleOperator,
	},
	domain.RoleOperator: {
		domain.RoleOperator,
	},
	domain.RoleAffiliate: {
		domain.RoleAffiliate,
		domain.RoleCustomer,
	},
	domain.RoleCustomer: {
		domain.RoleCustomer,
	},
}

// RoleRegistered reports whether a role participates in the hierarchy.
func RoleRegistered(role domain.Role) bool {
	_, ok := roleHierarchy[role]
	return ok
}

// RoleCanAccess reports whether caller may act on resources scoped to target.
func RoleCanAccess(caller, target domain.Role) bool {
	for _, granted := range roleHierarchy[caller] {
		if granted == target {
			return true
		}
	}
	return false
}

// RegisteredRoles returns every role present in the hierarchy.
func RegisteredRoles() []domain.Role {
	roles := make([]domain.Role, 0, len(roleHierarchy))
	for role := range roleHierarchy {
		roles = append(roles, role)
	}
	return roles
}
