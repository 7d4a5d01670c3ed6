package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Geek-Mradul/mintern/internal/config"
	"github.com/Geek-Mradul/mintern/internal/database"
	"github.com/Geek-Mradul/mintern/internal/platform/user"
	"github.com/Geek-Mradul/mintern/pkg/utils"
)

// ProfileStore is satisfied by user.UserService and user.MemoryStore.
type ProfileStore interface {
	GetUserByID(ctx context.Context, id string) (*database.User, error)
	UpdateProfile(ctx context.Context, id string, profile user.Profile) (*database.User, error)
}

func GetCurrentUser(c *fiber.Ctx) error {
	users := c.Locals("users").(ProfileStore)
	claims, ok := requestClaims(c)
	if !ok {
		return unauthorized(c)
	}

	u, err := users.GetUserByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return internalError(c, "failed to fetch profile", err)
	}

	return c.JSON(u)
}

func UpdateUser(c *fiber.Ctx) error {
	users := c.Locals("users").(ProfileStore)
	claims, ok := requestClaims(c)
	if !ok {
		return unauthorized(c)
	}

	type ProfileInput struct {
		Bio    *string  `json:"bio" validate:"omitempty,max=2000"`
		Skills []string `json:"skills" validate:"max=50,dive,max=64"`
	}

	var input ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	profile := user.Profile{Bio: input.Bio}
	if input.Skills != nil {
		profile.Skills = utils.CleanStrings(input.Skills)
	}

	u, err := users.UpdateProfile(c.UserContext(), claims.UserID, profile)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		return internalError(c, "failed to update profile", err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    u,
	})
}
