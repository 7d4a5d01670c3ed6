package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Geek-Mradul/mintern/internal/config"
	"github.com/Geek-Mradul/mintern/internal/database"
	"github.com/Geek-Mradul/mintern/internal/platform/application"
	"github.com/Geek-Mradul/mintern/internal/platform/project"
)

func GetAllProjects(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	projects, err := project.NewService(db).ListAll(c.UserContext())
	if err != nil {
		return internalError(c, "failed to list all projects", err)
	}

	return c.JSON(projects)
}

func GetAllApplications(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	apps, err := application.NewService(db).ListAll(c.UserContext())
	if err != nil {
		return internalError(c, "failed to list all applications", err)
	}

	return c.JSON(apps)
}

func UpdateProjectStatus(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	type StatusInput struct {
		Status database.ProjectStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	}

	var input StatusInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid status. Must be APPROVED or REJECTED."})
	}

	projectID := c.Params("id")
	if _, err := uuid.Parse(projectID); err != nil {
		return projectNotFound(c)
	}

	p, err := project.NewService(db).SetStatus(c.UserContext(), projectID, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid status. Must be APPROVED or REJECTED."})
		case errors.Is(err, project.ErrProjectNotFound):
			return projectNotFound(c)
		default:
			return internalError(c, "failed to update project status", err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Project status updated",
		"project": p,
	})
}
