package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wavemax/affiliate-program/internal/api/http/handlers"
	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/quota"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Affiliates *handlers.AffiliateHandler
	Customers  *handlers.CustomerHandler
	Orders     *handlers.OrderHandler
	Operators  *handlers.OperatorHandler
	Admin      *handlers.AdminHandler

	AuthMiddleware *auth.Middleware
	Authorizer     *auth.Authorizer
	Limiter        *quota.Limiter
	TokenManager   *auth.TokenManager
}

// RegisterRoutes wires HTTP routes. Ordering invariant per route: quota
// check precedes authentication, authentication precedes authorization,
// and field filtering happens inside handlers on already-authorized data.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	// Auth namespace: ingress quota categories, no blanket authentication.
	authGroup := api.Group("/auth")
	authGroup.Post("/affiliate/register", cfg.Limiter.Middleware(quota.Registration()), cfg.Auth.RegisterAffiliate)
	authGroup.Post("/customer/register", cfg.Limiter.Middleware(quota.Registration()), cfg.Auth.RegisterCustomer)

	login := cfg.Limiter.Middleware(quota.Authentication())
	authGroup.Post("/affiliate/login", login, cfg.Auth.LoginAffiliate)
	authGroup.Post("/customer/login", login, cfg.Auth.LoginCustomer)
	authGroup.Post("/operator/login", login, cfg.Auth.LoginOperator)
	authGroup.Post("/administrator/login", cfg.Limiter.Middleware(quota.AdminLogin()), cfg.Auth.LoginAdministrator)

	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Post("/change-password",
		cfg.Limiter.Middleware(quota.PasswordReset()),
		cfg.AuthMiddleware.Handle,
		cfg.Auth.ChangePassword)

	// General API surface: shared quota, then authentication.
	protected := api.Group("",
		cfg.Limiter.Middleware(quota.GeneralAPI(cfg.TokenManager)),
		cfg.AuthMiddleware.Handle)

	affiliates := protected.Group("/affiliates")
	affiliates.Get("/:affiliateId", cfg.Affiliates.Get)
	affiliates.Put("/:affiliateId",
		auth.RequireRole(domain.RoleAffiliate),
		auth.RequireOwnership("affiliateId"),
		cfg.Affiliates.Update)
	affiliates.Get("/:affiliateId/customers",
		auth.RequireRole(domain.RoleAffiliate),
		auth.RequireOwnership("affiliateId"),
		cfg.Affiliates.ListCustomers)

	customers := protected.Group("/customers")
	customers.Get("/:customerId",
		auth.RequireRole(domain.RoleCustomer),
		cfg.Customers.Get)
	customers.Put("/:customerId",
		auth.RequireRole(domain.RoleCustomer),
		auth.RequireOwnership("customerId"),
		cfg.Customers.Update)
	customers.Get("/:customerId/orders",
		auth.RequireRole(domain.RoleCustomer),
		auth.RequireOwnership("customerId"),
		cfg.Customers.ListOrders)

	orders := protected.Group("/orders")
	orders.Get("/:orderId", cfg.Orders.Get)

	operators := protected.Group("/operators")
	operators.Post("/scan",
		cfg.Limiter.Middleware(quota.SensitiveOperation()),
		auth.RequireRole(domain.RoleOperator),
		cfg.Authorizer.RequireOperatorStatus(),
		cfg.Operators.ScanBag)

	admin := protected.Group("/admin", cfg.Limiter.Middleware(quota.AdminOperation()))
	admin.Post("/tokens/revoke",
		auth.RequireRole(domain.RoleAdmin, domain.RoleAdministrator),
		cfg.Auth.RevokeToken)

	adminOperators := admin.Group("/operators",
		cfg.Authorizer.RequireAdminPermission(domain.PermOperatorManagement))
	adminOperators.Post("", cfg.Admin.CreateOperator)
	adminOperators.Get("/:operatorId", cfg.Admin.GetOperator)
	adminOperators.Put("/:operatorId", cfg.Admin.UpdateOperator)
}
