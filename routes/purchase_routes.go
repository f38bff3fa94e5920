package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/piczelnft/piczel-sub002/handlers"
	"github.com/piczelnft/piczel-sub002/middleware"
)

func PurchaseRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected())

	api.Post("/purchases", handlers.BuyNft)
	api.Get("/purchases", handlers.GetMyPurchases)

	api.Get("/commissions", handlers.GetMyCommissions)
	api.Get("/commissions/summary", handlers.GetCommissionSummary)

	api.Get("/network/sponsors", handlers.GetMySponsors)
	api.Get("/network/downline", handlers.GetMyDownline)
}
