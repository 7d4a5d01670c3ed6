package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Geek-Mradul/mintern/internal/auth"
)

const bearerPrefix = "Bearer "

// NewAuthMiddleware verifies the bearer token and attaches its claims to the
// request context. Nothing is read from the database: the role in the token
// is authoritative until it expires.
func NewAuthMiddleware(codec *auth.Codec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "No token provided",
			})
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
			})
		}

		claims, err := codec.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.SetUserContext(auth.ContextWithClaims(c.UserContext(), claims))

		return c.Next()
	}
}

// Claims returns the claims attached by NewAuthMiddleware.
func Claims(c *fiber.Ctx) (*auth.Claims, bool) {
	return auth.ClaimsFromContext(c.UserContext())
}
