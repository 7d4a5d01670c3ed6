package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Geek-Mradul/mintern/internal/config"
	"github.com/Geek-Mradul/mintern/internal/mail"
	"github.com/Geek-Mradul/mintern/internal/platform/application"
	"github.com/Geek-Mradul/mintern/internal/platform/project"
	"github.com/Geek-Mradul/mintern/pkg/utils"
)

func projectNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Project not found"})
}

func GetProjects(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	projects, err := project.NewService(db).ListApproved(c.UserContext())
	if err != nil {
		return internalError(c, "failed to list projects", err)
	}

	return c.JSON(projects)
}

func GetMyProjects(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	claims, ok := requestClaims(c)
	if !ok {
		return unauthorized(c)
	}

	projects, err := project.NewService(db).ListByAuthor(c.UserContext(), claims.UserID)
	if err != nil {
		return internalError(c, "failed to list own projects", err)
	}

	return c.JSON(projects)
}

func GetProject(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	projectID := c.Params("id")
	if _, err := uuid.Parse(projectID); err != nil {
		return projectNotFound(c)
	}

	p, err := project.NewService(db).GetApproved(c.UserContext(), projectID)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return projectNotFound(c)
		}
		return internalError(c, "failed to fetch project", err)
	}

	return c.JSON(p)
}

func CreateProject(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	claims, ok := requestClaims(c)
	if !ok {
		return unauthorized(c)
	}

	type ProjectInput struct {
		Title       string `json:"title" validate:"required,max=200"`
		Description string `json:"description" validate:"required"`
		Category    string `json:"category" validate:"max=100"`
	}

	var input ProjectInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	p, err := project.NewService(db).Create(c.UserContext(), claims.UserID, project.NewProject{
		Title:       input.Title,
		Description: input.Description,
		Category:    utils.StringOrNil(input.Category),
	})
	if err != nil {
		return internalError(c, "failed to create project", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Project created successfully",
		"project": p,
	})
}

// ApplyToProject records the application and lets the project author know by
// email. A failed notification does not fail the request.
func ApplyToProject(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)
	mailer := c.Locals("mailer").(mail.Mailer)
	claims, ok := requestClaims(c)
	if !ok {
		return unauthorized(c)
	}

	projectID := c.Params("id")
	if _, err := uuid.Parse(projectID); err != nil {
		return projectNotFound(c)
	}

	app, p, err := application.NewService(db).Apply(c.UserContext(), claims.UserID, projectID)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrProjectNotFound):
			return projectNotFound(c)
		case errors.Is(err, application.ErrAlreadyApplied):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "You have already applied to this project"})
		default:
			return internalError(c, "failed to submit application", err)
		}
	}

	if p.Author != nil && p.Author.Email != "" {
		message := mail.NewApplicationEmail(cfg.MailFrom, p.Author.Email, p.Title, claims.Email)
		if err := mailer.SendMail(message); err != nil {
			log.Warnw("failed to notify project author", "project_id", p.ID, "error", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Application submitted successfully",
		"application": app,
	})
}

func GetMyApplications(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	claims, ok := requestClaims(c)
	if !ok {
		return unauthorized(c)
	}

	apps, err := application.NewService(db).ListByApplicant(c.UserContext(), claims.UserID)
	if err != nil {
		return internalError(c, "failed to list applications", err)
	}

	return c.JSON(fiber.Map{"applications": apps})
}
