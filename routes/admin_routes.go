package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/piczelnft/piczel-sub002/handlers"
	"github.com/piczelnft/piczel-sub002/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/dashboard-analytics", handlers.GetDashboardAnalytics)

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Put("/:userId/status", handlers.ToggleUserStatus)

	admin.Get("/withdrawals", handlers.AdminGetWithdrawals)
	admin.Post("/withdrawals/:withdrawalId/process", handlers.ProcessWithdrawal)

	admin.Get("/commission-schedules", handlers.AdminGetCommissionSchedules)
	admin.Post("/commission-schedules/:scheduleId/cancel", handlers.AdminCancelCommissionSchedule)

	admin.Get("/settings", handlers.GetSettings)
	admin.Put("/settings/:key", handlers.UpdateSetting)
}
