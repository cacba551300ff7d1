package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/observability"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

const identityKey = "auth_identity"

// Token transport headers. The Authorization header is preferred; the legacy
// x-auth-token header remains supported as a fallback.
const (
	headerAuthorization = "Authorization"
	headerLegacyToken   = "x-auth-token"
)

// Paths exempt from the password-change gate. GET requests are always exempt.
const (
	authNamespace      = "/api/v1/auth"
	changePasswordPath = "/api/v1/auth/change-password"
)

// RevocationChecker is the read side of the revocation store. Lookup errors
// fail the request closed; there is no permissive fallback here.
type RevocationChecker interface {
	Exists(ctx context.Context, token string) (bool, error)
}

// Middleware validates bearer tokens, checks revocation and attaches the
// caller identity. No implicit token renewal is performed for any caller
// class, trusted network origins included.
type Middleware struct {
	tokens  *TokenManager
	revoked RevocationChecker
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewMiddleware constructs the authentication stage.
func NewMiddleware(tokens *TokenManager, revoked RevocationChecker, logger *zap.Logger, metrics *observability.Metrics) *Middleware {
	return &Middleware{tokens: tokens, revoked: revoked, logger: logger, metrics: metrics}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	tokenStr := ExtractToken(c)
	if tokenStr == "" {
		return m.fail(apperrors.NewNoToken())
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		if err == ErrTokenExpired {
			return m.fail(apperrors.NewTokenExpired())
		}
		return m.fail(apperrors.NewInvalidToken())
	}

	revoked, err := m.revoked.Exists(c.UserContext(), tokenStr)
	if err != nil {
		m.logger.Error("revocation lookup failed", zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	if revoked {
		return m.fail(apperrors.NewTokenRevoked())
	}

	identity := &domain.Identity{
		ID:                    claims.Subject,
		Role:                  claims.Role,
		AffiliateID:           claims.AffiliateID,
		CustomerID:            claims.CustomerID,
		AdminID:               claims.AdminID,
		OperatorID:            claims.OperatorID,
		Permissions:           claims.Permissions,
		RequirePasswordChange: claims.RequirePasswordChange,
	}

	if claims.RequirePasswordChange && passwordGateApplies(c) {
		return m.fail(apperrors.NewPasswordChangeRequired())
	}

	StoreIdentity(c, identity)
	return c.Next()
}

// passwordGateApplies reports whether a pending password change blocks this
// request. The change-password endpoint, the auth namespace and reads stay
// reachable so the caller can remediate.
func passwordGateApplies(c *fiber.Ctx) bool {
	if c.Method() == fiber.MethodGet {
		return false
	}
	path := c.Path()
	if path == changePasswordPath {
		return false
	}
	if strings.HasPrefix(path, authNamespace) {
		return false
	}
	return true
}

func (m *Middleware) fail(err error) error {
	if de := apperrors.ToDomainError(err); de != nil {
		m.metrics.RecordAuthFailure(de.Code)
	}
	return err
}

// ExtractToken pulls the bearer token from the primary header, falling back
// to the legacy header. Returns "" when neither is present.
func ExtractToken(c *fiber.Ctx) string {
	if authHeader := c.Get(headerAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(c.Get(headerLegacyToken))
}

// StoreIdentity attaches the caller identity to the request context.
func StoreIdentity(c *fiber.Ctx, identity *domain.Identity) {
	c.Locals(identityKey, identity)
}

// IdentityFromContext retrieves the authenticated caller identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}
