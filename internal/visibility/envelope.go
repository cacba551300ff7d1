package visibility

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/domain"
)

// Envelope is the typed marker handlers wrap output in when they want
// automatic projection. The Type marker is consumed by the response stage
// and never transmitted. Owner carries the role-specific identifier of the
// record owner so the stage can derive the self relationship.
type Envelope struct {
	Type  string
	Data  any
	Owner string
	Extra map[string]any
}

// Respond filters the envelope's data subtree for the caller derived from
// the request identity context, strips the marker, and writes the response.
// Callers without an identity are treated as public viewers. Filtering only
// narrows an already-authorized response; it never replaces authorization.
func Respond(c *fiber.Ctx, status int, env Envelope) error {
	var role domain.Role
	ctx := ViewContext{}

	if identity, ok := auth.IdentityFromContext(c); ok {
		role = identity.Role
		ctx.IsSelf = env.Owner != "" && identity.RoleID() == env.Owner
	}

	body := fiber.Map{
		"success": true,
		"data":    FilteredData(env.Type, env.Data, role, ctx),
	}
	for k, v := range env.Extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}
