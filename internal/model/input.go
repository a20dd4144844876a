package model

// GameInput is a continuous controller input from a phone. The server
// does not persist these; they are relayed to every host connection,
// which runs its own local simulation.
type GameInput struct {
	RoomID    string     `json:"roomId"`
	PlayerID  string     `json:"playerId"`
	Slot      PlayerSlot `json:"slot"`
	Action    string     `json:"action"`
	Seq       int64      `json:"seq"`
	Timestamp int64      `json:"timestamp"`
}

// ApplyInput is the host-facing form of GameInput.
type ApplyInput struct {
	PlayerID  string     `json:"playerId"`
	Slot      PlayerSlot `json:"slot"`
	Action    string     `json:"action"`
	Seq       int64      `json:"seq"`
	Timestamp int64      `json:"timestamp"`
}

// WebRTCSignal is an opaque signaling payload relayed between two named
// connections. The server never inspects Payload.
type WebRTCSignal struct {
	RoomID     string      `json:"roomId"`
	FromConnID string      `json:"fromConnId"`
	ToConnID   string      `json:"toConnId"`
	Payload    interface{} `json:"payload"`
}
