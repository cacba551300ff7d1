package quota

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/domain"
)

// KeyFunc derives the quota key for a request.
type KeyFunc func(c *fiber.Ctx) string

// SkipFunc exempts a request from a category entirely.
type SkipFunc func(c *fiber.Ctx) bool

// Category is an independently configured request-quota bucket.
type Category struct {
	Name    string
	Window  time.Duration
	Max     int
	Message string
	// Key defaults to the caller network address when nil.
	Key KeyFunc
	// Skip exempts matching requests before any counting.
	Skip SkipFunc
	// SkipSuccessful refunds requests that complete below 400, so only
	// failed attempts consume quota.
	SkipSuccessful bool
}

func (cat Category) key(c *fiber.Ctx) string {
	if cat.Key != nil {
		return cat.Key(c)
	}
	return c.IP()
}

// Authentication covers login attempts. Successful logins are refunded.
func Authentication() Category {
	return Category{
		Name:           "authentication",
		Window:         15 * time.Minute,
		Max:            20,
		Message:        "Too many authentication attempts, please try again later",
		SkipSuccessful: true,
	}
}

// PasswordReset covers reset and change-password attempts.
func PasswordReset() Category {
	return Category{
		Name:           "password-reset",
		Window:         time.Hour,
		Max:            5,
		Message:        "Too many password reset attempts, please try again later",
		SkipSuccessful: true,
	}
}

// Registration covers account creation.
func Registration() Category {
	return Category{
		Name:    "registration",
		Window:  time.Hour,
		Max:     10,
		Message: "Too many registration attempts, please try again later",
	}
}

// GeneralAPI covers the authenticated API surface. Admin-class callers are
// exempt; since this category sits ahead of the authentication stage the
// exemption is derived from a signature-verified parse of the bearer token,
// not from client-asserted fields.
func GeneralAPI(tokens *auth.TokenManager) Category {
	return Category{
		Name:    "general-api",
		Window:  15 * time.Minute,
		Max:     300,
		Message: "Too many requests, please try again later",
		Skip: func(c *fiber.Ctx) bool {
			tokenStr := auth.ExtractToken(c)
			if tokenStr == "" {
				return false
			}
			claims, err := tokens.ParseToken(tokenStr)
			if err != nil {
				return false
			}
			return claims.Role == domain.RoleAdmin || claims.Role == domain.RoleAdministrator
		},
	}
}

// SensitiveOperation keys by authenticated identity when present, falling
// back to the network address. Mounted after the authentication stage.
func SensitiveOperation() Category {
	return Category{
		Name:    "sensitive-operation",
		Window:  time.Hour,
		Max:     30,
		Message: "Too many sensitive operations, please try again later",
		Key: func(c *fiber.Ctx) string {
			if identity, ok := auth.IdentityFromContext(c); ok {
				return identity.ID
			}
			return c.IP()
		},
	}
}

// EmailVerification covers verification mail requests.
func EmailVerification() Category {
	return Category{
		Name:           "email-verification",
		Window:         time.Hour,
		Max:            10,
		Message:        "Too many verification requests, please try again later",
		SkipSuccessful: true,
	}
}

// OAuthCallback covers provider callback traffic.
func OAuthCallback() Category {
	return Category{
		Name:    "oauth-callback",
		Window:  15 * time.Minute,
		Max:     50,
		Message: "Too many OAuth attempts, please try again later",
	}
}

// FileUpload covers document uploads such as W-9 forms.
func FileUpload() Category {
	return Category{
		Name:    "file-upload",
		Window:  time.Hour,
		Max:     20,
		Message: "Too many uploads, please try again later",
	}
}

// AdminOperation covers back-office management traffic.
func AdminOperation() Category {
	return Category{
		Name:    "admin-operation",
		Window:  15 * time.Minute,
		Max:     100,
		Message: "Too many admin operations, please try again later",
	}
}

// AdminLogin keys by address plus the submitted username so one shared-
// address user's failures cannot lock out others. Successes are refunded.
func AdminLogin() Category {
	return Category{
		Name:           "admin-login",
		Window:         15 * time.Minute,
		Max:            10,
		Message:        "Too many admin login attempts, please try again later",
		SkipSuccessful: true,
		Key: func(c *fiber.Ctx) string {
			return c.IP() + ":" + submittedUsername(c)
		},
	}
}

func submittedUsername(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Email != "" {
		return payload.Email
	}
	return payload.Username
}
