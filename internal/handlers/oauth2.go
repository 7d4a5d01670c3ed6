package handlers

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/Geek-Mradul/mintern/internal/config"
	"github.com/Geek-Mradul/mintern/internal/metrics"
	"github.com/Geek-Mradul/mintern/internal/platform/identity"
	"github.com/Geek-Mradul/mintern/pkg/utils"
)

const oauthStateKey = "oauth_state"

// FederatedProvider is the external half of the federated login.
type FederatedProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (identity.Assertion, error)
}

func federatedProvider(c *fiber.Ctx) (FederatedProvider, bool) {
	p, ok := c.Locals("google").(FederatedProvider)
	return p, ok && p != nil
}

// GoogleLogin starts the consent round trip. The state value is kept in a
// short-lived server session and checked on the way back.
func GoogleLogin(c *fiber.Ctx) error {
	provider, ok := federatedProvider(c)
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "Google login is not configured"})
	}
	store := c.Locals("session").(*session.Store)

	sess, err := store.Get(c)
	if err != nil {
		return internalError(c, "failed to load session", err)
	}

	state := utils.GenerateRandomString(32)
	sess.Set(oauthStateKey, state)
	if err := sess.Save(); err != nil {
		return internalError(c, "failed to save session", err)
	}

	return c.Redirect(provider.AuthCodeURL(state), fiber.StatusFound)
}

func GoogleCallback(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	svc := c.Locals("identity").(*identity.Service)
	provider, ok := federatedProvider(c)
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "Google login is not configured"})
	}
	store := c.Locals("session").(*session.Store)

	sess, err := store.Get(c)
	if err != nil {
		return internalError(c, "failed to load session", err)
	}
	expected, _ := sess.Get(oauthStateKey).(string)
	if err := sess.Destroy(); err != nil {
		log.Warnw("failed to destroy oauth session", "error", err)
	}

	if c.Query("error") != "" {
		metrics.AuthAttempt(metrics.FlowFederated, metrics.OutcomeRejected)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Google login was cancelled"})
	}

	if expected == "" || c.Query("state") != expected {
		metrics.AuthAttempt(metrics.FlowFederated, metrics.OutcomeRejected)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid OAuth state"})
	}

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing authorization code"})
	}

	assertion, err := provider.Exchange(c.UserContext(), code)
	if err != nil {
		log.Warnw("google exchange failed", "error", err)
		metrics.AuthAttempt(metrics.FlowFederated, metrics.OutcomeRejected)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Google authentication failed"})
	}

	token, err := svc.LoginWithAssertion(c.UserContext(), assertion)
	metrics.AuthAttempt(metrics.FlowFederated, outcome(err))
	if err != nil {
		return identityError(c, err)
	}

	if cfg.FrontendURL != "" {
		target := strings.TrimRight(cfg.FrontendURL, "/") + "/auth/callback#token=" + url.QueryEscape(token)
		return c.Redirect(target, fiber.StatusFound)
	}

	return c.JSON(fiber.Map{"token": token})
}
