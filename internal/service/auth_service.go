package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/config"
	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/events"
	"github.com/wavemax/affiliate-program/internal/repository"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

// AuthService coordinates login, logout, revocation and password flows for
// every subject type.
type AuthService struct {
	affiliates repository.AffiliateRepository
	customers  repository.CustomerRepository
	admins     repository.AdministratorRepository
	operators  repository.OperatorRepository
	revoked    repository.RevokedTokenRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	AffiliateRepo    repository.AffiliateRepository
	CustomerRepo     repository.CustomerRepository
	AdminRepo        repository.AdministratorRepository
	OperatorRepo     repository.OperatorRepository
	RevokedTokenRepo repository.RevokedTokenRepository
	Dispatcher       events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		affiliates: deps.AffiliateRepo,
		customers:  deps.CustomerRepo,
		admins:     deps.AdminRepo,
		operators:  deps.OperatorRepo,
		revoked:    deps.RevokedTokenRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// LoginAffiliate authenticates an affiliate and issues a role-bearing token.
func (s *AuthService) LoginAffiliate(ctx context.Context, email, password string) (*domain.Affiliate, string, time.Time, error) {
	aff, err := s.affiliates.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, err)
	}
	if aff.Status != domain.AffiliateStatusActive {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, errors.New("affiliate not active"))
	}
	if err := auth.ComparePassword(aff.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(aff.ID, auth.Claims{
		Role:        domain.RoleAffiliate,
		AffiliateID: aff.AffiliateID,
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, aff.AffiliateID, nil))
	return aff, token, exp, nil
}

// LoginCustomer authenticates a customer.
func (s *AuthService) LoginCustomer(ctx context.Context, email, password string) (*domain.Customer, string, time.Time, error) {
	cust, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, err)
	}
	if !cust.Active {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, errors.New("customer not active"))
	}
	if err := auth.ComparePassword(cust.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(cust.ID, auth.Claims{
		Role:       domain.RoleCustomer,
		CustomerID: cust.CustomerID,
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, cust.CustomerID, nil))
	return cust, token, exp, nil
}

// LoginAdministrator authenticates an administrator. Token permissions are a
// snapshot for client display only; every gated request re-validates against
// the live record.
func (s *AuthService) LoginAdministrator(ctx context.Context, email, password string) (*domain.Administrator, string, time.Time, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, err)
	}
	if !admin.Active {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, errors.New("administrator not active"))
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(admin.ID, auth.Claims{
		Role:                  domain.RoleAdministrator,
		AdminID:               admin.AdminID,
		Permissions:           admin.Permissions,
		RequirePasswordChange: admin.RequirePasswordChange,
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, admin.AdminID, nil))
	return admin, token, exp, nil
}

// LoginOperator authenticates an operator.
func (s *AuthService) LoginOperator(ctx context.Context, email, password string) (*domain.Operator, string, time.Time, error) {
	op, err := s.operators.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, err)
	}
	if !op.Active {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, errors.New("operator not active"))
	}
	if err := auth.ComparePassword(op.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, s.loginFailure(ctx, email, err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(op.ID, auth.Claims{
		Role:       domain.RoleOperator,
		OperatorID: op.OperatorID,
	})
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, op.OperatorID, nil))
	return op, token, exp, nil
}

// Logout records the presented token in the revocation store. The write is
// durable before the response is returned, so a racing request using the
// same token cannot authenticate during the gap.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) error {
	return s.Revoke(ctx, tokenStr, "logout")
}

// Revoke invalidates a token before its natural expiry.
func (s *AuthService) Revoke(ctx context.Context, tokenStr, reason string) error {
	claims, err := s.tokenMgr.ParseToken(tokenStr)
	if err != nil {
		// Expired or malformed tokens cannot authenticate anyway.
		return nil
	}

	rec := &domain.RevokedToken{
		Token:       tokenStr,
		SubjectID:   claims.Subject,
		SubjectType: subjectTypeForRole(claims.Role),
		ExpiresAt:   claims.ExpiresAt.Time,
		Reason:      reason,
	}
	if err := s.revoked.Create(ctx, rec); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.NewEvent(events.EventTokenRevoked, claims.Subject,
		map[string]any{"reason": reason}))
	return nil
}

// ChangePassword verifies the current password and stores the new hash for
// whichever subject type the identity belongs to. For administrators the
// pending password-change flag is cleared.
func (s *AuthService) ChangePassword(ctx context.Context, identity *domain.Identity, currentPassword, newPassword string) error {
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	switch identity.Role {
	case domain.RoleAffiliate:
		aff, err := s.affiliates.GetByAffiliateID(ctx, identity.AffiliateID)
		if err != nil {
			return err
		}
		if err := auth.ComparePassword(aff.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		aff.PasswordHash = hash
		if err := s.affiliates.Update(ctx, aff); err != nil {
			return err
		}
	case domain.RoleCustomer:
		cust, err := s.customers.GetByCustomerID(ctx, identity.CustomerID)
		if err != nil {
			return err
		}
		if err := auth.ComparePassword(cust.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		cust.PasswordHash = hash
		if err := s.customers.Update(ctx, cust); err != nil {
			return err
		}
	case domain.RoleAdmin, domain.RoleAdministrator:
		admin, err := s.admins.GetByAdminID(ctx, identity.AdminID)
		if err != nil {
			return err
		}
		if err := auth.ComparePassword(admin.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		admin.PasswordHash = hash
		admin.RequirePasswordChange = false
		if err := s.admins.Update(ctx, admin); err != nil {
			return err
		}
	case domain.RoleOperator:
		op, err := s.operators.GetByOperatorID(ctx, identity.OperatorID)
		if err != nil {
			return err
		}
		if err := auth.ComparePassword(op.PasswordHash, currentPassword); err != nil {
			return apperrors.NewUnauthorized("invalid credentials")
		}
		op.PasswordHash = hash
		if err := s.operators.Update(ctx, op); err != nil {
			return err
		}
	default:
		return apperrors.NewForbiddenRole()
	}

	s.publish(ctx, events.NewEvent(events.EventPasswordChanged, identity.ID, nil))
	return nil
}

// RegisterAffiliate creates a new affiliate account.
func (s *AuthService) RegisterAffiliate(ctx context.Context, aff *domain.Affiliate, password string) error {
	if _, err := s.affiliates.GetByEmail(ctx, aff.Email); err == nil {
		return apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	aff.AffiliateID = newEntityID("AFF")
	aff.PasswordHash = hash
	aff.Status = domain.AffiliateStatusActive
	return s.affiliates.Create(ctx, aff)
}

// RegisterCustomer creates a new customer under an existing affiliate.
func (s *AuthService) RegisterCustomer(ctx context.Context, cust *domain.Customer, password string) error {
	if _, err := s.customers.GetByEmail(ctx, cust.Email); err == nil {
		return apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if _, err := s.affiliates.GetByAffiliateID(ctx, cust.AffiliateID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("unknown affiliate", nil)
		}
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	cust.CustomerID = newEntityID("CUST")
	cust.PasswordHash = hash
	cust.Active = true
	return s.customers.Create(ctx, cust)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) loginFailure(ctx context.Context, email string, cause error) error {
	s.publish(ctx, events.NewEvent(events.EventLoginFailed, email,
		map[string]any{"cause": cause.Error()}))
	return apperrors.NewUnauthorized("Invalid email or password")
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, event)
	}
}

func subjectTypeForRole(role domain.Role) domain.SubjectType {
	switch role {
	case domain.RoleAffiliate:
		return domain.SubjectTypeAffiliate
	case domain.RoleCustomer:
		return domain.SubjectTypeCustomer
	case domain.RoleOperator:
		return domain.SubjectTypeOperator
	default:
		return domain.SubjectTypeAdministrator
	}
}

func newEntityID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}
