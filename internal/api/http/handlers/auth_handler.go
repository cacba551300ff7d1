package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/wavemax/affiliate-program/internal/api/dto"
	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/service"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

// AuthHandler exposes login, logout, registration and password endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// LoginAffiliate handles POST /api/v1/auth/affiliate/login.
func (h *AuthHandler) LoginAffiliate(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}

	aff, token, exp, err := h.auth.LoginAffiliate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"affiliateId": aff.AffiliateID,
		"auth":        dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// LoginCustomer handles POST /api/v1/auth/customer/login.
func (h *AuthHandler) LoginCustomer(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}

	cust, token, exp, err := h.auth.LoginCustomer(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"customerId": cust.CustomerID,
		"auth":       dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// LoginAdministrator handles POST /api/v1/auth/administrator/login.
func (h *AuthHandler) LoginAdministrator(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}

	admin, token, exp, err := h.auth.LoginAdministrator(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":               true,
		"adminId":               admin.AdminID,
		"requirePasswordChange": admin.RequirePasswordChange,
		"auth":                  dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// LoginOperator handles POST /api/v1/auth/operator/login.
func (h *AuthHandler) LoginOperator(c *fiber.Ctx) error {
	req, err := parseLogin(c)
	if err != nil {
		return err
	}

	op, token, exp, err := h.auth.LoginOperator(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"operatorId": op.OperatorID,
		"auth":       dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Logout handles POST /api/v1/auth/logout. The revocation write completes
// before the response is sent.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	tokenStr := auth.ExtractToken(c)
	if tokenStr == "" {
		return apperrors.NewNoToken()
	}
	if err := h.auth.Logout(c.UserContext(), tokenStr); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Logged out"})
}

// ChangePassword handles POST /api/v1/auth/change-password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewNoToken()
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return fiber.NewError(http.StatusBadRequest, "currentPassword and newPassword required")
	}

	if err := h.auth.ChangePassword(c.UserContext(), identity, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Password changed"})
}

// RevokeToken handles POST /api/v1/admin/tokens/revoke.
func (h *AuthHandler) RevokeToken(c *fiber.Ctx) error {
	var req dto.RevokeTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" {
		return fiber.NewError(http.StatusBadRequest, "token required")
	}
	reason := req.Reason
	if reason == "" {
		reason = "administrative"
	}

	if err := h.auth.Revoke(c.UserContext(), req.Token, reason); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Token revoked"})
}

// RegisterAffiliate handles POST /api/v1/auth/affiliate/register.
func (h *AuthHandler) RegisterAffiliate(c *fiber.Ctx) error {
	var req dto.RegisterAffiliateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return fiber.NewError(http.StatusBadRequest, "firstName, lastName, email, password required")
	}

	aff := &domain.Affiliate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		BusinessName:   req.BusinessName,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		ServiceRadius:  req.ServiceRadius,
		CommissionRate: req.Commission,
	}
	if err := h.auth.RegisterAffiliate(c.UserContext(), aff, req.Password); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"affiliateId": aff.AffiliateID,
	})
}

// RegisterCustomer handles POST /api/v1/auth/customer/register.
func (h *AuthHandler) RegisterCustomer(c *fiber.Ctx) error {
	var req dto.RegisterCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.AffiliateID == "" {
		return fiber.NewError(http.StatusBadRequest, "affiliateId, email, password required")
	}

	cust := &domain.Customer{
		AffiliateID: req.AffiliateID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
	}
	if err := h.auth.RegisterCustomer(c.UserContext(), cust, req.Password); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"customerId": cust.CustomerID,
	})
}

func parseLogin(c *fiber.Ctx) (*dto.LoginRequest, error) {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return nil, fiber.NewError(http.StatusBadRequest, "email and password required")
	}
	return &req, nil
}
