package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lawdesk-api/internal/pkg/jwt"
	"lawdesk-api/internal/pkg/logger"
	"lawdesk-api/internal/pkg/response"
)

// TokenValidator verifies access tokens
type TokenValidator interface {
	ValidateAccessToken(accessToken string) (*jwt.Claims, error)
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := tokens.ValidateAccessToken(accessToken)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("name", claims.Name)
		c.SetUserContext(logger.WithUserID(c.UserContext(), claims.UserID))

		return c.Next()
	}
}

// extractToken reads the access token from the cookie first, then from
// the Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
