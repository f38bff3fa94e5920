package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/piczelnft/piczel-sub002/handlers"
	"github.com/piczelnft/piczel-sub002/middleware"
)

// JobRoutes exposes the two engine operations to external schedulers. Both endpoints are
// idempotent and safe at any cadence.
func JobRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	jobs := api.Group("/jobs", middleware.CronOrAdmin())
	jobs.Post("/process-commissions", handlers.TriggerCommissionDisbursement)
	jobs.Post("/sweep-deactivations", handlers.TriggerDeactivationSweep)
}
