package domain

import "time"

// Customer models an end customer registered under an affiliate.
type Customer struct {
	ID           string
	CustomerID   string
	AffiliateID  string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Address      string
	City         string
	State        string
	ZipCode      string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
