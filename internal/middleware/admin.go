package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Geek-Mradul/mintern/internal/auth"
)

// RequireRole must be mounted after NewAuthMiddleware. A request that reaches
// it without claims is forbidden.
func RequireRole(role auth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := Claims(c)
		if !ok || claims.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Forbidden",
			})
		}

		return c.Next()
	}
}

// AdminMiddleware guards the admin and analytics routes.
var AdminMiddleware = RequireRole(auth.RoleAdmin)
