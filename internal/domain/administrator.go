package domain

import "time"

// Administrator permissions gate sensitive management operations. Permission
// checks always consult the live record, not token claims.
const (
	PermSystemConfig       = "system_config"
	PermOperatorManagement = "operator_management"
	PermViewAnalytics      = "view_analytics"
	PermManageAffiliates   = "manage_affiliates"
)

// Administrator models a back-office administrator account.
type Administrator struct {
	ID                    string
	AdminID               string
	FirstName             string
	LastName              string
	Email                 string
	PasswordHash          string
	Permissions           []string
	Active                bool
	RequirePasswordChange bool
	LastLoginAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// HasPermission reports whether the live record grants a permission.
func (a *Administrator) HasPermission(perm string) bool {
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
