package dto

import "time"

// LoginRequest payload for every subject type's login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ChangePasswordRequest payload for the change-password endpoint.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// RevokeTokenRequest payload for administrative token revocation.
type RevokeTokenRequest struct {
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

// RegisterAffiliateRequest payload for affiliate onboarding.
type RegisterAffiliateRequest struct {
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	BusinessName  string  `json:"businessName"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZipCode       string  `json:"zipCode"`
	ServiceRadius int     `json:"serviceRadius"`
	Password      string  `json:"password"`
	Commission    float64 `json:"commission"`
}

// RegisterCustomerRequest payload for customer onboarding.
type RegisterCustomerRequest struct {
	AffiliateID string `json:"affiliateId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Password    string `json:"password"`
}
