package auth

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/events"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

const (
	adminRecordKey    = "auth_admin_record"
	operatorRecordKey = "auth_operator_record"
)

// AdminSource loads live administrator records. Permission checks never
// trust token-embedded permissions: they can be revoked mid-session.
type AdminSource interface {
	GetByAdminID(ctx context.Context, adminID string) (*domain.Administrator, error)
}

// OperatorSource loads live operator records for shift checks.
type OperatorSource interface {
	GetByOperatorID(ctx context.Context, operatorID string) (*domain.Operator, error)
}

// Authorizer builds authorization middleware over the live-record stores.
type Authorizer struct {
	admins     AdminSource
	operators  OperatorSource
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuthorizer constructs the authorization stage.
func NewAuthorizer(admins AdminSource, operators OperatorSource, dispatcher events.Dispatcher, logger *zap.Logger) *Authorizer {
	return &Authorizer{admins: admins, operators: operators, dispatcher: dispatcher, logger: logger}
}

// RequireRole passes when the caller's role equals one of the required roles
// or the hierarchy grants it access to one of them.
func RequireRole(required ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok || !RoleRegistered(identity.Role) {
			return apperrors.NewForbiddenRole()
		}
		for _, role := range required {
			if RoleCanAccess(identity.Role, role) {
				return c.Next()
			}
		}
		return apperrors.NewForbiddenRole()
	}
}

// RequireAllRoles passes only when the caller has hierarchy access to every
// listed role.
func RequireAllRoles(required ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok || !RoleRegistered(identity.Role) {
			return apperrors.NewForbiddenRole()
		}
		for _, role := range required {
			if !RoleCanAccess(identity.Role, role) {
				return apperrors.NewForbiddenRole()
			}
		}
		return c.Next()
	}
}

// RequireOwnership compares the caller's role-specific identifier against the
// owner identifier named by ownerField, taken from route parameters first and
// the request body second. Admin roles bypass unconditionally.
func RequireOwnership(ownerField string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewForbiddenRole()
		}
		if identity.Role == domain.RoleAdmin || identity.Role == domain.RoleAdministrator {
			return c.Next()
		}

		callerID := identityField(identity, ownerField)
		if callerID == "" {
			return apperrors.NewForbiddenOwnership()
		}

		ownerID := c.Params(ownerField)
		if ownerID == "" {
			ownerID = bodyField(c, ownerField)
		}
		if ownerID == "" || ownerID != callerID {
			return apperrors.NewForbiddenOwnership()
		}
		return c.Next()
	}
}

// RequireAdminPermission gates a route on live administrator permissions. The
// live record is re-fetched on every request, must be active, and must hold
// every required permission. On success the record is attached for handlers.
func (a *Authorizer) RequireAdminPermission(required ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok || identity.Role != domain.RoleAdministrator {
			return apperrors.NewForbiddenRole()
		}

		admin, err := a.admins.GetByAdminID(c.UserContext(), identity.AdminID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewForbiddenRole()
			}
			a.logger.Error("administrator lookup failed", zap.Error(err))
			return apperrors.NewInternalError(err)
		}
		if !admin.Active {
			return apperrors.NewAccountInactive()
		}

		var missing []string
		for _, perm := range required {
			if !admin.HasPermission(perm) {
				missing = append(missing, perm)
			}
		}
		if len(missing) > 0 {
			a.publish(c.UserContext(), events.NewEvent(events.EventPermissionDenied, identity.AdminID,
				map[string]any{"missing": missing}))
			return apperrors.NewForbiddenPermission(missing)
		}

		c.Locals(adminRecordKey, admin)
		return c.Next()
	}
}

// RequireOperatorStatus is a pass-through for non-operator roles. Operators
// must have an active account and be on shift; the live record is attached.
func (a *Authorizer) RequireOperatorStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewForbiddenRole()
		}
		if identity.Role != domain.RoleOperator {
			return c.Next()
		}

		op, err := a.operators.GetByOperatorID(c.UserContext(), identity.OperatorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewForbiddenRole()
			}
			a.logger.Error("operator lookup failed", zap.Error(err))
			return apperrors.NewInternalError(err)
		}
		if !op.Active {
			return apperrors.NewAccountInactive()
		}
		if !op.OnShift {
			return apperrors.NewNotOnShift()
		}

		c.Locals(operatorRecordKey, op)
		return c.Next()
	}
}

func (a *Authorizer) publish(ctx context.Context, event events.Event) {
	if a.dispatcher != nil {
		_ = a.dispatcher.Publish(ctx, event)
	}
}

// AdminFromContext retrieves the live administrator record attached by
// RequireAdminPermission.
func AdminFromContext(c *fiber.Ctx) (*domain.Administrator, bool) {
	admin, ok := c.Locals(adminRecordKey).(*domain.Administrator)
	return admin, ok
}

// OperatorFromContext retrieves the live operator record attached by
// RequireOperatorStatus.
func OperatorFromContext(c *fiber.Ctx) (*domain.Operator, bool) {
	op, ok := c.Locals(operatorRecordKey).(*domain.Operator)
	return op, ok
}

func identityField(identity *domain.Identity, field string) string {
	switch field {
	case "affiliateId":
		return identity.AffiliateID
	case "customerId":
		return identity.CustomerID
	case "adminId":
		return identity.AdminID
	case "operatorId":
		return identity.OperatorID
	case "id":
		return identity.ID
	}
	return ""
}

func bodyField(c *fiber.Ctx, field string) string {
	body := c.Body()
	if len(body) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if val, ok := payload[field].(string); ok {
		return val
	}
	return ""
}
