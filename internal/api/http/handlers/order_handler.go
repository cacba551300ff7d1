package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/repository"
	"github.com/wavemax/affiliate-program/internal/visibility"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

// OrderHandler exposes order read endpoints.
type OrderHandler struct {
	orders repository.OrderRepository
}

// NewOrderHandler constructs handler.
func NewOrderHandler(orders repository.OrderRepository) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Get handles GET /api/v1/orders/:orderId. The order identifier is opaque,
// so ownership is checked against the loaded record rather than a route
// parameter: customers must own the order, affiliates must service it.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.GetByOrderID(c.UserContext(), c.Params("orderId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("order", nil)
		}
		return err
	}

	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewForbiddenRole()
	}
	switch identity.Role {
	case domain.RoleAdmin, domain.RoleAdministrator, domain.RoleOperator:
	case domain.RoleAffiliate:
		if identity.AffiliateID != order.AffiliateID {
			return apperrors.NewForbiddenOwnership()
		}
	case domain.RoleCustomer:
		if identity.CustomerID != order.CustomerID {
			return apperrors.NewForbiddenOwnership()
		}
	default:
		return apperrors.NewForbiddenRole()
	}

	return visibility.Respond(c, http.StatusOK, visibility.Envelope{
		Type:  "order",
		Data:  orderPayload(order),
		Owner: order.CustomerID,
	})
}
