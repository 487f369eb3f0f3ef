package api

import (
	"path/filepath"
	"strings"

	"focusflow/internal/api/handlers"
	"focusflow/internal/config"
	"focusflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewApp builds the fiber app with middleware and every route registered.
func NewApp(d *config.Dependencies, allowOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "FocusFlow",
		ErrorHandler: middleware.JSONErrors,
	})

	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: allowOrigins != "" && !strings.Contains(allowOrigins, "*"),
	}))

	RegisterRoutes(app, d)
	return app
}

func RegisterRoutes(app *fiber.App, d *config.Dependencies) {
	api := app.Group("/api")

	// Auth
	api.Post("/register", handlers.Register(d))
	api.Post("/login", handlers.Login(d))
	api.Post("/logout", handlers.Logout(d))

	guard := middleware.RequireSession(d.Sessions, d.Cookie.Name)
	api.Get("/me", guard, handlers.Me)

	// Task
	taskRoutes := api.Group("/tasks", guard)
	taskRoutes.Get("/", handlers.ListTasks(d))
	taskRoutes.Post("/", handlers.SyncTasks(d))
	taskRoutes.Put("/:id", handlers.UpdateTask(d))
	taskRoutes.Delete("/:id", handlers.DeleteTask(d))

	// Change feed
	api.Get("/ws", guard, handlers.TaskFeed(d))

	// Frontend
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(d.StaticDir, "index.html"))
	})
	app.Static("/audio", d.AudioDir)
}
