package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"lawdesk-api/internal/core/domain"
	"lawdesk-api/internal/pkg/response"
)

// Authorizer decides whether a user may perform an action
type Authorizer interface {
	Authorize(ctx context.Context, userID uint, action string) (domain.Decision, error)
}

// Guard enforces permissions named after routes
type Guard struct {
	authz Authorizer
}

// NewGuard creates a new guard
func NewGuard(authz Authorizer) *Guard {
	return &Guard{authz: authz}
}

// Require checks action for the authenticated user. An empty action falls
// back to the route name. Requests without a user are passed through; the
// authentication middleware is in charge of those.
func (g *Guard) Require(action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Next()
		}

		name := action
		if name == "" {
			name = c.Route().Name
		}

		ctx := c.UserContext()
		decision, err := g.authz.Authorize(ctx, userID, name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return response.Unauthorized(c, "User no longer exists")
			}
			return response.FromError(c, err)
		}

		if !decision.Allowed {
			slog.WarnContext(ctx, "access denied",
				"action", name,
				"reason", decision.Reason,
				"method", c.Method(),
				"path", c.Path(),
			)
			return response.FromError(c, domain.Forbidden("You don't have permission to perform this action"))
		}

		c.Locals("permissions", decision.Permissions)
		c.Locals("unrestricted", decision.Unrestricted)
		return c.Next()
	}
}
