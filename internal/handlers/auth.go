package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Geek-Mradul/mintern/internal/config"
	"github.com/Geek-Mradul/mintern/internal/metrics"
	"github.com/Geek-Mradul/mintern/internal/platform/identity"
)

func Signup(c *fiber.Ctx) error {
	svc := c.Locals("identity").(*identity.Service)

	type SignupInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		Name     string `json:"name" validate:"required"`
	}

	var input SignupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email, password, and name are required"})
	}

	user, err := svc.Signup(c.UserContext(), input.Email, input.Password, input.Name)
	metrics.AuthAttempt(metrics.FlowSignup, outcome(err))
	if err != nil {
		return identityError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

func SigninWithPassword(c *fiber.Ctx) error {
	svc := c.Locals("identity").(*identity.Service)

	type LoginInput struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email and password are required"})
	}

	token, err := svc.Login(c.UserContext(), input.Email, input.Password)
	metrics.AuthAttempt(metrics.FlowPassword, outcome(err))
	if err != nil {
		return identityError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}
