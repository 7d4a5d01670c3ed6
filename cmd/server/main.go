package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/Geek-Mradul/mintern/internal/auth"
	"github.com/Geek-Mradul/mintern/internal/config"
	"github.com/Geek-Mradul/mintern/internal/database"
	"github.com/Geek-Mradul/mintern/internal/google"
	"github.com/Geek-Mradul/mintern/internal/handlers"
	"github.com/Geek-Mradul/mintern/internal/mail"
	"github.com/Geek-Mradul/mintern/internal/metrics"
	"github.com/Geek-Mradul/mintern/internal/middleware"
	"github.com/Geek-Mradul/mintern/internal/platform/identity"
	"github.com/Geek-Mradul/mintern/internal/platform/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.Level())

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	codec, err := auth.NewCodec(cfg.JWTSecret)
	if err != nil {
		log.Fatal(err)
	}

	userService := user.NewService(db)
	identityService := identity.NewService(userService, codec, cfg.AllowedEmailDomain)

	var provider *google.Provider
	if cfg.GoogleEnabled() {
		provider = google.NewProvider(context.Background(), cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	} else {
		log.Warn("Google login disabled, GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	var mailer mail.Mailer = mail.Discard{}
	if cfg.MailEnabled() {
		mailer = mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase)
	}

	sessions := session.New(session.Config{
		Expiration:     10 * time.Minute,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	app := fiber.New(fiber.Config{
		AppName: "Mintern",
	})

	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(healthcheck.New())
	app.Use(middleware.RobotsMiddleware())
	app.Use(metrics.Middleware)

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("db", db)
		c.Locals("identity", identityService)
		c.Locals("users", userService)
		c.Locals("session", sessions)
		c.Locals("mailer", mailer)
		if provider != nil {
			c.Locals("google", provider)
		}
		return c.Next()
	})

	authMiddleware := middleware.NewAuthMiddleware(codec)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello from the Mintern Backend!")
	})
	app.Get("/metrics", metrics.Handler())

	authLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	})

	authGroup := app.Group("/auth", authLimiter)
	authGroup.Post("/signup", handlers.Signup)
	authGroup.Post("/login", handlers.SigninWithPassword)
	authGroup.Get("/google", handlers.GoogleLogin)
	authGroup.Get("/google/callback", handlers.GoogleCallback)

	users := app.Group("/users", authMiddleware)
	users.Get("/me", handlers.GetCurrentUser)
	users.Put("/me", handlers.UpdateUser)

	projects := app.Group("/projects")
	projects.Get("/", handlers.GetProjects)
	projects.Get("/me", authMiddleware, handlers.GetMyProjects)
	projects.Get("/:id", handlers.GetProject)
	projects.Post("/", authMiddleware, handlers.CreateProject)
	projects.Post("/:id/apply", authMiddleware, handlers.ApplyToProject)

	app.Get("/applications/me", authMiddleware, handlers.GetMyApplications)

	admin := app.Group("/admin", authMiddleware, middleware.AdminMiddleware)
	admin.Get("/projects", handlers.GetAllProjects)
	admin.Get("/applications", handlers.GetAllApplications)
	admin.Put("/projects/:id/status", handlers.UpdateProjectStatus)

	analytics := app.Group("/analytics", authMiddleware, middleware.AdminMiddleware)
	analytics.Get("/stats", handlers.GetStats)
	analytics.Get("/categories", handlers.GetCategories)

	debug := app.Group("/debug", authMiddleware)
	debug.Get("/token", handlers.GetTokenClaims)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	})

	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.ServerPort)))
}
