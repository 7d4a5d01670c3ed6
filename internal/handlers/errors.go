package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Geek-Mradul/mintern/internal/auth"
	"github.com/Geek-Mradul/mintern/internal/metrics"
	"github.com/Geek-Mradul/mintern/internal/platform/identity"
)

func internalError(c *fiber.Ctx, msg string, err error) error {
	log.Errorw(msg, "error", err, "request_id", c.GetRespHeader(fiber.HeaderXRequestID))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
}

// identityError answers an identity failure with its status. Only store
// outages are logged; everything else is the caller's problem.
func identityError(c *fiber.Ctx, err error) error {
	var depErr *identity.DependencyError

	switch {
	case errors.Is(err, identity.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, identity.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already in use"})
	case errors.Is(err, identity.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	case errors.Is(err, identity.ErrMissingEmail), errors.Is(err, identity.ErrDomainRejected):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	case errors.As(err, &depErr):
		return internalError(c, "credential store unavailable", depErr)
	default:
		return internalError(c, "identity failure", err)
	}
}

func outcome(err error) string {
	var depErr *identity.DependencyError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &depErr):
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}

// requestClaims is for handlers mounted behind the auth middleware.
// A missing claim set means a routing mistake, answered as 401.
func requestClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	return auth.ClaimsFromContext(c.UserContext())
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
}
