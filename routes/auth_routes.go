package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/piczelnft/piczel-sub002/handlers"
	"github.com/piczelnft/piczel-sub002/middleware"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/auth/register", handlers.RegisterUser)
	api.Post("/auth/login", handlers.LoginUser)
	api.Get("/auth/me", middleware.Protected(), handlers.GetProfile)
}
