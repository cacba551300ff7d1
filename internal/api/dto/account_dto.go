package dto

// UpdateAffiliateRequest payload for affiliate profile updates.
type UpdateAffiliateRequest struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	Phone         *string `json:"phone"`
	BusinessName  *string `json:"businessName"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	ZipCode       *string `json:"zipCode"`
	ServiceRadius *int    `json:"serviceRadius"`
}

// UpdateCustomerRequest payload for customer profile updates.
type UpdateCustomerRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zipCode"`
}

// CreateOperatorRequest payload for operator management.
type CreateOperatorRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	ShiftStart string `json:"shiftStart"`
	ShiftEnd   string `json:"shiftEnd"`
}

// UpdateOperatorRequest payload for operator management updates.
type UpdateOperatorRequest struct {
	Active      *bool   `json:"active"`
	OnShift     *bool   `json:"onShift"`
	ShiftStart  *string `json:"shiftStart"`
	ShiftEnd    *string `json:"shiftEnd"`
	WorkStation *string `json:"workStation"`
}

// ScanBagRequest payload for the operator bag-scan endpoint.
type ScanBagRequest struct {
	Barcode string `json:"barcode"`
	Status  string `json:"status"`
}
