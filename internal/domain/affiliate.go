package domain

import "time"

// AffiliateStatus represents lifecycle states for an affiliate partner.
type AffiliateStatus string

const (
	AffiliateStatusActive    AffiliateStatus = "ACTIVE"
	AffiliateStatusSuspended AffiliateStatus = "SUSPENDED"
)

// Affiliate models a partner who onboards customers and earns commission.
type Affiliate struct {
	ID             string
	AffiliateID    string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	BusinessName   string
	Address        string
	City           string
	State          string
	ZipCode        string
	ServiceRadius  int
	CommissionRate float64
	W9Approved     bool
	PasswordHash   string
	Status         AffiliateStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
