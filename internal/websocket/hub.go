package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// userMessage targets a payload at one user's open connections.
type userMessage struct {
	TargetUserID uuid.UUID
	Payload      []byte
}

// Hub maintains the set of active clients and routes pushed payloads. Push
// is best-effort: a slow client drops payloads rather than blocking the hub.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	Clients map[uuid.UUID]map[*Client]bool

	// Channel for broadcasting a payload to every connected user.
	Broadcast chan []byte

	// Channel for sending payloads to one specific user.
	sendUser chan *userMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte),
		sendUser:   make(chan *userMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; !ok {
				h.Clients[client.UserID] = make(map[*Client]bool)
			}
			h.Clients[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					if len(userClients) == 0 {
						delete(h.Clients, client.UserID)
					}
				}
			}
			h.mu.Unlock()

		case payload := <-h.Broadcast:
			h.mu.RLock()
			for _, userClients := range h.Clients {
				for client := range userClients {
					select {
					case client.Send <- payload:
					default:
						log.Printf("Broadcast buffer full for client of user %s", client.UserID)
					}
				}
			}
			h.mu.RUnlock()

		case message := <-h.sendUser:
			h.mu.RLock()
			for client := range h.Clients[message.TargetUserID] {
				select {
				case client.Send <- message.Payload:
				default:
					log.Printf("Send buffer full for client of user %s, payload dropped", client.UserID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// SendToUser queues a payload for every open connection of one user.
func (h *Hub) SendToUser(targetUserID uuid.UUID, payload []byte) {
	message := &userMessage{
		TargetUserID: targetUserID,
		Payload:      payload,
	}
	select {
	case h.sendUser <- message:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing websocket payload for user %s", targetUserID)
	}
}
