package handlers

import (
	"github.com/wavemax/affiliate-program/internal/domain"
)

// Payload builders convert domain records into the generic attribute maps
// the field-visibility filter operates on. Keys match the wire names in the
// visibility map.

func affiliatePayload(aff *domain.Affiliate) map[string]any {
	return map[string]any{
		"affiliateId":    aff.AffiliateID,
		"firstName":      aff.FirstName,
		"lastName":       aff.LastName,
		"email":          aff.Email,
		"phone":          aff.Phone,
		"businessName":   aff.BusinessName,
		"address":        aff.Address,
		"city":           aff.City,
		"state":          aff.State,
		"zipCode":        aff.ZipCode,
		"serviceRadius":  aff.ServiceRadius,
		"commissionRate": aff.CommissionRate,
		"w9Approved":     aff.W9Approved,
		"status":         string(aff.Status),
		"createdAt":      aff.CreatedAt,
		"updatedAt":      aff.UpdatedAt,
	}
}

func customerPayload(cust *domain.Customer) map[string]any {
	return map[string]any{
		"customerId":  cust.CustomerID,
		"affiliateId": cust.AffiliateID,
		"firstName":   cust.FirstName,
		"lastName":    cust.LastName,
		"email":       cust.Email,
		"phone":       cust.Phone,
		"address":     cust.Address,
		"city":        cust.City,
		"state":       cust.State,
		"zipCode":     cust.ZipCode,
		"active":      cust.Active,
		"createdAt":   cust.CreatedAt,
		"updatedAt":   cust.UpdatedAt,
	}
}

func customerPayloads(customers []*domain.Customer) []any {
	out := make([]any, len(customers))
	for i, cust := range customers {
		out[i] = customerPayload(cust)
	}
	return out
}

func orderPayload(order *domain.Order) map[string]any {
	bags := make([]any, len(order.Bags))
	for i, bag := range order.Bags {
		bags[i] = bagPayload(bag)
	}
	return map[string]any{
		"orderId":         order.OrderID,
		"customerId":      order.CustomerID,
		"affiliateId":     order.AffiliateID,
		"status":          string(order.Status),
		"pickupDate":      order.PickupDate,
		"deliveryDate":    order.DeliveryDate,
		"estimatedWeight": order.EstimatedWeight,
		"actualWeight":    order.ActualWeight,
		"total":           order.Total,
		"affiliateCut":    order.AffiliateCut,
		"bags":            bags,
		"createdAt":       order.CreatedAt,
		"updatedAt":       order.UpdatedAt,
	}
}

func orderPayloads(orders []*domain.Order) []any {
	out := make([]any, len(orders))
	for i, order := range orders {
		out[i] = orderPayload(order)
	}
	return out
}

func bagPayload(bag domain.Bag) map[string]any {
	return map[string]any{
		"id":       bag.ID,
		"orderId":  bag.OrderID,
		"barcode":  bag.Barcode,
		"status":   string(bag.Status),
		"weightLb": bag.WeightLb,
	}
}

func operatorPayload(op *domain.Operator) map[string]any {
	return map[string]any{
		"operatorId":  op.OperatorID,
		"firstName":   op.FirstName,
		"lastName":    op.LastName,
		"email":       op.Email,
		"active":      op.Active,
		"onShift":     op.OnShift,
		"shiftStart":  op.ShiftStart,
		"shiftEnd":    op.ShiftEnd,
		"workStation": op.WorkStation,
	}
}
