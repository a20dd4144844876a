package service

import "gameion/internal/model"

// Broadcaster interface for WebSocket fan-out (avoids import cycle).
// Room-wide sends take the freshly fetched room record so membership
// always reflects the latest join/leave state.
type Broadcaster interface {
	// ToRoom sends an event to every connection in the room, players
	// and hosts alike.
	ToRoom(room *model.RoomState, event string, payload interface{})
	// ToHosts sends an event to the room's host connections only.
	ToHosts(room *model.RoomState, event string, payload interface{})
	// ToConn sends an event to one connection.
	ToConn(connID, event string, payload interface{})
}
