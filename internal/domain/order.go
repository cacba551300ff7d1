package domain

import "time"

// OrderStatus tracks an order through pickup, processing and delivery.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusScheduled  OrderStatus = "SCHEDULED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusReady      OrderStatus = "READY"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// BagStatus tracks an individual laundry bag within an order.
type BagStatus string

const (
	BagStatusReceived  BagStatus = "RECEIVED"
	BagStatusWashing   BagStatus = "WASHING"
	BagStatusComplete  BagStatus = "COMPLETE"
	BagStatusDelivered BagStatus = "DELIVERED"
)

// Bag is a barcoded laundry bag belonging to an order.
type Bag struct {
	ID       string
	OrderID  string
	Barcode  string
	Status   BagStatus
	WeightLb float64
}

// Order models a pickup/delivery laundry order.
type Order struct {
	ID              string
	OrderID         string
	CustomerID      string
	AffiliateID     string
	Status          OrderStatus
	PickupDate      time.Time
	DeliveryDate    *time.Time
	EstimatedWeight float64
	ActualWeight    float64
	Total           float64
	AffiliateCut    float64
	Bags            []Bag
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
