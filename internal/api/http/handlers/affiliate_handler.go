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

// AffiliateHandler exposes affiliate profile endpoints. Responses go through
// the field-visibility stage; routes are guarded by the authorization
// middleware in the router.
type AffiliateHandler struct {
	affiliates repository.AffiliateRepository
	customers  repository.CustomerRepository
}

// NewAffiliateHandler constructs handler.
func NewAffiliateHandler(affiliates repository.AffiliateRepository, customers repository.CustomerRepository) *AffiliateHandler {
	return &AffiliateHandler{affiliates: affiliates, customers: customers}
}

// Get handles GET /api/v1/affiliates/:affiliateId.
func (h *AffiliateHandler) Get(c *fiber.Ctx) error {
	aff, err := h.affiliates.GetByAffiliateID(c.UserContext(), c.Params("affiliateId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("affiliate", nil)
		}
		return err
	}

	return visibility.Respond(c, http.StatusOK, visibility.Envelope{
		Type:  "affiliate",
		Data:  affiliatePayload(aff),
		Owner: aff.AffiliateID,
	})
}

// Update handles PUT /api/v1/affiliates/:affiliateId.
func (h *AffiliateHandler) Update(c *fiber.Ctx) error {
	aff, err := h.affiliates.GetByAffiliateID(c.UserContext(), c.Params("affiliateId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("affiliate", nil)
		}
		return err
	}

	var req dto.UpdateAffiliateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	if req.FirstName != nil {
		aff.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		aff.LastName = *req.LastName
	}
	if req.Phone != nil {
		aff.Phone = *req.Phone
	}
	if req.BusinessName != nil {
		aff.BusinessName = *req.BusinessName
	}
	if req.Address != nil {
		aff.Address = *req.Address
	}
	if req.City != nil {
		aff.City = *req.City
	}
	if req.State != nil {
		aff.State = *req.State
	}
	if req.ZipCode != nil {
		aff.ZipCode = *req.ZipCode
	}
	if req.ServiceRadius != nil {
		aff.ServiceRadius = *req.ServiceRadius
	}

	if err := h.affiliates.Update(c.UserContext(), aff); err != nil {
		return err
	}

	return visibility.Respond(c, http.StatusOK, visibility.Envelope{
		Type:  "affiliate",
		Data:  affiliatePayload(aff),
		Owner: aff.AffiliateID,
	})
}

// ListCustomers handles GET /api/v1/affiliates/:affiliateId/customers.
func (h *AffiliateHandler) ListCustomers(c *fiber.Ctx) error {
	affiliateID := c.Params("affiliateId")
	customers, err := h.customers.ListByAffiliate(c.UserContext(), affiliateID)
	if err != nil {
		return err
	}

	return visibility.Respond(c, http.StatusOK, visibility.Envelope{
		Type: "customer",
		Data: customerPayloads(customers),
		Extra: map[string]any{
			"count": len(customers),
		},
	})
}
