package domain

import "time"

// Role identifies the caller class encoded in a token.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleAdministrator Role = "administrator"
	RoleOperator      Role = "operator"
	RoleAffiliate     Role = "affiliate"
	RoleCustomer      Role = "customer"
)

// SubjectType labels the account class a revoked token belonged to.
type SubjectType string

const (
	SubjectTypeAffiliate     SubjectType = "affiliate"
	SubjectTypeCustomer      SubjectType = "customer"
	SubjectTypeAdministrator SubjectType = "administrator"
	SubjectTypeOperator      SubjectType = "operator"
)

// RevokedToken is a durable record of a bearer token invalidated before its
// natural expiry. Rows are purged a fixed window after creation; while a row
// exists the token must never authenticate again.
type RevokedToken struct {
	ID          string
	Token       string
	SubjectID   string
	SubjectType SubjectType
	ExpiresAt   time.Time
	RevokedAt   time.Time
	Reason      string
}

// Identity is the verified, request-scoped representation of the caller.
// Permission and password-change fields originate from token claims and are
// advisory only; security-critical checks re-validate against live records.
type Identity struct {
	ID                    string
	Role                  Role
	AffiliateID           string
	CustomerID            string
	AdminID               string
	OperatorID            string
	Permissions           []string
	RequirePasswordChange bool
}

// RoleID returns the role-specific identifier for ownership comparisons.
func (i *Identity) RoleID() string {
	switch i.Role {
	case RoleAffiliate:
		return i.AffiliateID
	case RoleCustomer:
		return i.CustomerID
	case RoleAdmin, RoleAdministrator:
		return i.AdminID
	case RoleOperator:
		return i.OperatorID
	}
	return ""
}
