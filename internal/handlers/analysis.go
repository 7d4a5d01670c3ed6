package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Geek-Mradul/mintern/internal/platform/analytics"
)

func GetStats(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	stats, err := analytics.NewService(db).Stats(c.UserContext())
	if err != nil {
		return internalError(c, "failed to fetch platform stats", err)
	}

	return c.JSON(stats)
}

func GetCategories(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	counts, err := analytics.NewService(db).Categories(c.UserContext())
	if err != nil {
		return internalError(c, "failed to fetch category stats", err)
	}

	return c.JSON(counts)
}
