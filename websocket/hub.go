package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/piczelnft/piczel-sub002/database"
	"github.com/piczelnft/piczel-sub002/models"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *models.TicketMessage)

// RunHub fans ticket messages out to every connected participant of the ticket: the
// ticket owner plus any connected admin.
func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case message := <-Broadcast:
			recipients, err := ticketParticipants(message.TicketID)
			if err != nil {
				log.Printf("Error fetching participants for ticket %s: %v", message.TicketID, err)
				continue
			}

			clientsMu.RLock()
			var dead []uuid.UUID
			for _, recipientID := range recipients {
				if recipientID == message.SenderID {
					continue
				}
				if conn, ok := clients[recipientID]; ok {
					if err := conn.WriteJSON(message); err != nil {
						log.Printf("Error sending message to client %s: %v", recipientID, err)
						conn.Close()
						dead = append(dead, recipientID)
					}
				}
			}
			clientsMu.RUnlock()

			if len(dead) > 0 {
				clientsMu.Lock()
				for _, id := range dead {
					delete(clients, id)
				}
				clientsMu.Unlock()
			}
		}
	}
}

func ticketParticipants(ticketID uuid.UUID) ([]uuid.UUID, error) {
	var ticket models.SupportTicket
	if err := database.DB.Where("id = ?", ticketID).First(&ticket).Error; err != nil {
		return nil, err
	}

	var adminIDs []uuid.UUID
	if err := database.DB.Model(&models.User{}).Where("role = ?", "admin").Pluck("id", &adminIDs).Error; err != nil {
		return nil, err
	}

	return append(adminIDs, ticket.UserID), nil
}
