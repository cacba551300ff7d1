package domain

import "time"

// Operator models a store operator who processes orders during a shift.
type Operator struct {
	ID           string
	OperatorID   string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Active       bool
	OnShift      bool
	ShiftStart   string
	ShiftEnd     string
	WorkStation  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
