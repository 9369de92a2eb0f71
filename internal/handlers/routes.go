// Path: internal/handlers/routes.go
package handlers

import (
	"time"

	"bank-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type AppConfig struct {
	AllowOrigins    string
	RateLimitMax    int
	RateLimitWindow time.Duration
	// DisableAccessLog turns off the request logger, mostly for tests.
	DisableAccessLog bool
}

// NewApp builds the fiber application with every route mounted.
func NewApp(h *Handler, cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "bank-backend",
		ErrorHandler: h.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(recover.New())
	if !cfg.DisableAccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", h.Health)

	api := app.Group("/api")

	rateLimited := limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Too many requests",
				"details": "",
			})
		},
	})
	auth := api.Group("/auth")
	auth.Post("/register", rateLimited, h.Register)
	auth.Post("/login", rateLimited, h.Login)
	auth.Post("/refresh", h.RefreshToken)
	auth.Post("/logout", h.Logout)

	admin := h.RequireRole(models.RoleAdmin)

	users := api.Group("/users", h.Authenticate, h.RequireAuth)
	users.Get("/me", h.GetMe)
	users.Put("/me", h.UpdateMe)
	users.Delete("/me", h.DeleteMe)
	users.Get("/", admin, h.GetUsers)
	users.Get("/:id", admin, h.GetUser)
	users.Put("/:id", admin, h.UpdateUser)
	users.Delete("/:id", admin, h.DeleteUser)

	accounts := api.Group("/accounts", h.Authenticate, h.RequireAuth)
	accounts.Post("/", h.CreateAccount)
	accounts.Get("/", h.GetAccounts)
	accounts.Get("/all", admin, h.GetAllAccounts)
	accounts.Get("/:id", h.GetAccount)
	accounts.Delete("/:id", h.DeleteAccount)
	accounts.Get("/:id/transactions", h.GetAccountTransactions)

	transactions := api.Group("/transactions", h.Authenticate, h.RequireAuth)
	transactions.Post("/", h.CreateTransaction)

	return app
}
