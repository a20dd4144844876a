package ws

import (
	"encoding/json"
	"log"
	"sync"

	"gameion/internal/model"
)

// Hub tracks live WebSocket connections by connection id. Room
// membership is not cached here: fan-out targets come from the room
// record the caller just fetched, so broadcasts always reflect the
// latest join/leave state.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection

	register   chan *Connection
	unregister chan *Connection
}

// Connection represents one WebSocket connection.
type Connection struct {
	ID   string
	Send chan []byte

	// roomID is the room this connection is attached to, if any. Only
	// the connection's own reader goroutine touches it.
	roomID string
	// hostAuthed marks a connection that presented a valid host token
	// (always true when host auth is disabled).
	hostAuthed bool
}

// NewHub creates a hub and starts its registration loop.
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn.ID] = conn
			h.mu.Unlock()
			log.Printf("Client connected: %s", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.ID]; ok && existing == conn {
				delete(h.conns, conn.ID)
				close(conn.Send)
			}
			h.mu.Unlock()
			log.Printf("Client disconnected: %s", conn.ID)
		}
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

func (h *Hub) send(connID string, data []byte) {
	// Hold the read lock across the channel send: the run loop closes
	// Send under the write lock, so a close can never land between the
	// lookup and the send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	select {
	case conn.Send <- data:
	default:
		// Drop if the connection's buffer is full.
	}
}

func marshalEvent(event string, payload interface{}) []byte {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Printf("ws: marshal %s payload: %v", event, err)
			return nil
		}
		raw = data
	}
	data, _ := json.Marshal(&Envelope{Type: MessageType(event), Payload: raw})
	return data
}

// ToRoom sends an event to every connection in the room (implements
// service.Broadcaster).
func (h *Hub) ToRoom(room *model.RoomState, event string, payload interface{}) {
	data := marshalEvent(event, payload)
	if data == nil {
		return
	}
	for _, id := range room.ConnIDs() {
		h.send(id, data)
	}
}

// ToHosts sends an event to the room's host connections only
// (implements service.Broadcaster).
func (h *Hub) ToHosts(room *model.RoomState, event string, payload interface{}) {
	data := marshalEvent(event, payload)
	if data == nil {
		return
	}
	for _, id := range room.HostConnIDs {
		h.send(id, data)
	}
}

// ToConn sends an event to a single connection (implements
// service.Broadcaster).
func (h *Hub) ToConn(connID, event string, payload interface{}) {
	data := marshalEvent(event, payload)
	if data == nil {
		return
	}
	h.send(connID, data)
}
