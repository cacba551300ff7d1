package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wavemax/affiliate-program/internal/api/dto"
	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/config"
	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/repository"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

// AdminHandler exposes operator management, reachable only through
// RequireAdminPermission("operator_management").
type AdminHandler struct {
	operators  repository.OperatorRepository
	bcryptCost int
}

// NewAdminHandler constructs handler.
func NewAdminHandler(operators repository.OperatorRepository, cfg config.AuthConfig) *AdminHandler {
	return &AdminHandler{operators: operators, bcryptCost: cfg.BcryptCost}
}

// CreateOperator handles POST /api/v1/admin/operators.
func (h *AdminHandler) CreateOperator(c *fiber.Ctx) error {
	var req dto.CreateOperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return fiber.NewError(http.StatusBadRequest, "firstName, lastName, email, password required")
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		return err
	}

	op := &domain.Operator{
		OperatorID:   "OPR-" + strings.ToUpper(uuid.NewString()[:8]),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Active:       true,
		ShiftStart:   orDefault(req.ShiftStart, "08:00"),
		ShiftEnd:     orDefault(req.ShiftEnd, "17:00"),
	}
	if err := h.operators.Create(c.UserContext(), op); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    operatorPayload(op),
	})
}

// GetOperator handles GET /api/v1/admin/operators/:operatorId.
func (h *AdminHandler) GetOperator(c *fiber.Ctx) error {
	op, err := h.operators.GetByOperatorID(c.UserContext(), c.Params("operatorId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("operator", nil)
		}
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    operatorPayload(op),
	})
}

// UpdateOperator handles PUT /api/v1/admin/operators/:operatorId.
func (h *AdminHandler) UpdateOperator(c *fiber.Ctx) error {
	op, err := h.operators.GetByOperatorID(c.UserContext(), c.Params("operatorId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("operator", nil)
		}
		return err
	}

	var req dto.UpdateOperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if req.Active != nil {
		op.Active = *req.Active
	}
	if req.OnShift != nil {
		op.OnShift = *req.OnShift
	}
	if req.ShiftStart != nil {
		op.ShiftStart = *req.ShiftStart
	}
	if req.ShiftEnd != nil {
		op.ShiftEnd = *req.ShiftEnd
	}
	if req.WorkStation != nil {
		op.WorkStation = req.WorkStation
	}

	if err := h.operators.Update(c.UserContext(), op); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    operatorPayload(op),
	})
}

func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
