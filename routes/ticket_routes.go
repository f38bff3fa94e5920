package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/piczelnft/piczel-sub002/handlers"
	"github.com/piczelnft/piczel-sub002/middleware"
)

func TicketRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	tickets := api.Group("/tickets", middleware.Protected())
	tickets.Post("", handlers.CreateTicket)
	tickets.Get("", handlers.GetMyTickets)
	tickets.Post("/:ticketId/reply", handlers.ReplyToTicket)
	tickets.Put("/:ticketId/status", middleware.AdminRequired(), handlers.UpdateTicketStatus)

	app.Get("/ws/tickets", handlers.TicketSocket())
}
