package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/wavemax/affiliate-program/internal/api/dto"
	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/repository"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

// OperatorHandler exposes the shift-gated order processing endpoints.
type OperatorHandler struct {
	orders repository.OrderRepository
}

// NewOperatorHandler constructs handler.
func NewOperatorHandler(orders repository.OrderRepository) *OperatorHandler {
	return &OperatorHandler{orders: orders}
}

// ScanBag handles POST /api/v1/operators/scan. The route passes through
// RequireOperatorStatus, so an operator reaching this handler is active and
// on shift.
func (h *OperatorHandler) ScanBag(c *fiber.Ctx) error {
	var req dto.ScanBagRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Barcode == "" {
		return fiber.NewError(http.StatusBadRequest, "barcode required")
	}

	status := domain.BagStatus(req.Status)
	switch status {
	case domain.BagStatusReceived, domain.BagStatusWashing, domain.BagStatusComplete, domain.BagStatusDelivered:
	default:
		return fiber.NewError(http.StatusBadRequest, "unknown bag status")
	}

	if err := h.orders.UpdateBagStatus(c.UserContext(), req.Barcode, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("bag", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"barcode": req.Barcode,
		"status":  string(status),
	})
}
