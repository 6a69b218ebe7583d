package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Event kinds pushed to connected admin dashboards.
const (
	EventRedemptionSubmitted = "redemption.submitted"
	EventRedemptionDecided   = "redemption.decided"
	EventRedemptionEscalated = "redemption.escalated"
	EventKYCSubmitted        = "kyc.submitted"
	EventTicketCreated       = "ticket.created"
)

type Event struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte),
	}
}

// Notify marshals an event and queues it for broadcast. Drops the event
// if no reader is draining the channel yet.
func (h *Hub) Notify(kind string, payload interface{}) {
	data, err := json.Marshal(Event{Kind: kind, Payload: payload})
	if err != nil {
		return
	}
	select {
	case h.Broadcast <- data:
	default:
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.Println("New WS Client Connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
