package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/wavemax/affiliate-program/internal/api/dto"
	"github.com/wavemax/affiliate-program/internal/repository"
	"github.com/wavemax/affiliate-program/internal/visibility"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

// CustomerHandler exposes customer profile and order endpoints.
type CustomerHandler struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
}

// NewCustomerHandler constructs handler.
func NewCustomerHandler(customers repository.CustomerRepository, orders repository.OrderRepository) *CustomerHandler {
	return &CustomerHandler{customers: customers, orders: orders}
}

// Get handles GET /api/v1/customers/:customerId.
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	cust, err := h.customers.GetByCustomerID(c.UserContext(), c.Params("customerId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("customer", nil)
		}
		return err
	}

	return visibility.Respond(c, http.StatusOK, visibility.Envelope{
		Type:  "customer",
		Data:  customerPayload(cust),
		Owner: cust.CustomerID,
	})
}

// Update handles PUT /api/v1/customers/:customerId.
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	cust, err := h.customers.GetByCustomerID(c.UserContext(), c.Params("customerId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("customer", nil)
		}
		return err
	}

	var req dto.UpdateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if req.FirstName != nil {
		cust.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		cust.LastName = *req.LastName
	}
	if req.Phone != nil {
		cust.Phone = *req.Phone
	}
	if req.Address != nil {
		cust.Address = *req.Address
	}
	if req.City != nil {
		cust.City = *req.City
	}
	if req.State != nil {
		cust.State = *req.State
	}
	if req.ZipCode != nil {
		cust.ZipCode = *req.ZipCode
	}

	if err := h.customers.Update(c.UserContext(), cust); err != nil {
		return err
	}

	return visibility.Respond(c, http.StatusOK, visibility.Envelope{
		Type:  "customer",
		Data:  customerPayload(cust),
		Owner: cust.CustomerID,
	})
}

// ListOrders handles GET /api/v1/customers/:customerId/orders.
func (h *CustomerHandler) ListOrders(c *fiber.Ctx) error {
	customerID := c.Params("customerId")
	orders, err := h.orders.ListByCustomer(c.UserContext(), customerID)
	if err != nil {
		return err
	}

	return visibility.Respond(c, http.StatusOK, visibility.Envelope{
		Type:  "order",
		Data:  orderPayloads(orders),
		Owner: customerID,
		Extra: map[string]any{
			"count": len(orders),
		},
	})
}
