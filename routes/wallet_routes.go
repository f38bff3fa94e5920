package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/piczelnft/piczel-sub002/handlers"
	"github.com/piczelnft/piczel-sub002/middleware"
)

func WalletRoutes(app *fiber.App) {
	api := app.Group("/api/v1", middleware.Protected())

	api.Get("/wallet", handlers.GetHoldingWallet)

	api.Post("/withdrawals", handlers.RequestWithdrawal)
	api.Get("/withdrawals", handlers.GetMyWithdrawals)
	api.Delete("/withdrawals/:withdrawalId", handlers.CancelWithdrawal)
}
