package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/piczelnft/piczel-sub002/configs"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
	ws "github.com/piczelnft/piczel-sub002/websocket"
)

type CreateTicketRequest struct {
	Subject  string `json:"subject" validate:"required,min=3"`
	Message  string `json:"message" validate:"required"`
	Priority string `json:"priority" validate:"omitempty,oneof=low normal high"`
}

func CreateTicket(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	ticket := models.SupportTicket{
		UserID:   uid,
		Subject:  req.Subject,
		Priority: priority,
	}
	if err := database.DB.Create(&ticket).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create ticket"})
	}

	message := models.TicketMessage{
		TicketID: ticket.ID,
		SenderID: uid,
		Content:  req.Message,
	}
	if err := database.DB.Create(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create ticket message"})
	}

	return c.Status(fiber.StatusCreated).JSON(ticket)
}

func GetMyTickets(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)
	role := claims["role"].(string)

	query := database.DB.Preload("Messages")
	if role != "admin" {
		query = query.Where("user_id = ?", userID)
	}

	var tickets []models.SupportTicket
	if err := query.Order("updated_at desc").Find(&tickets).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tickets"})
	}
	return c.JSON(tickets)
}

type ReplyTicketRequest struct {
	Message string `json:"message" validate:"required"`
}

func ReplyToTicket(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)
	role := claims["role"].(string)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var ticket models.SupportTicket
	if err := database.DB.Where("id = ?", c.Params("ticketId")).First(&ticket).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ticket not found"})
	}
	if role != "admin" && ticket.UserID != uid {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your ticket"})
	}

	var req ReplyTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	message := models.TicketMessage{
		TicketID: ticket.ID,
		SenderID: uid,
		Content:  req.Message,
	}
	if err := database.DB.Create(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create reply"})
	}

	ws.Broadcast <- &message

	return c.Status(fiber.StatusCreated).JSON(message)
}

type CloseTicketRequest struct {
	Status string `json:"status" validate:"required,oneof=open closed"`
}

func UpdateTicketStatus(c *fiber.Ctx) error {
	var req CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result := database.DB.Model(&models.SupportTicket{}).
		Where("id = ?", c.Params("ticketId")).
		Update("status", req.Status)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update ticket"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ticket not found"})
	}
	return c.JSON(fiber.Map{"status": req.Status})
}

// TicketSocket expects an auth message as the first frame, verifies the token, and only
// then registers the connection with the hub for live ticket updates. The client identity
// comes from the verified claims, never from anything the client typed.
func TicketSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		type AuthMessage struct {
			Type  string `json:"type"`
			Token string `json:"token"`
		}
		var authMsg AuthMessage
		if err := conn.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
			_ = conn.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
			conn.Close()
			return
		}

		userID, err := socketUserID(authMsg.Token)
		if err != nil {
			log.Printf("Ticket socket auth failed: %v", err)
			_ = conn.WriteJSON(fiber.Map{"error": "Invalid token"})
			conn.Close()
			return
		}

		client := &ws.Client{UserID: userID, Conn: conn}
		ws.Register <- client
		defer func() {
			ws.Unregister <- client
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}

// socketUserID verifies a bearer token and extracts the user id from its claims.
func socketUserID(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("invalid token")
	}
	raw, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("token has no valid user id")
	}
	return userID, nil
}
