package handlers

import "github.com/gofiber/fiber/v2"

// GetTokenClaims echoes the verified claims of the caller's token.
func GetTokenClaims(c *fiber.Ctx) error {
	claims, ok := requestClaims(c)
	if !ok {
		return c.JSON(fiber.Map{"user": nil})
	}
	return c.JSON(fiber.Map{"user": claims})
}
