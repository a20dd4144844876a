package ws

import "encoding/json"

// MessageType defines the type of a WebSocket message.
type MessageType string

// Client -> server message types. The catalogue is closed: anything
// else is rejected at the boundary before any handler runs.
const (
	MsgCreateRoom   MessageType = "create_room"
	MsgJoinRoom     MessageType = "join_room"
	MsgRejoinRoom   MessageType = "rejoin_room"
	MsgCheckRoom    MessageType = "check_room"
	MsgHostRejoin   MessageType = "host_rejoin"
	MsgLeaveRoom    MessageType = "leave_room"
	MsgNavigateMenu MessageType = "navigate_menu"
	MsgSelectGame   MessageType = "select_game"
	MsgStartGame    MessageType = "start_game"
	MsgExitGame     MessageType = "exit_game"
	MsgGameInput    MessageType = "game_input"
	MsgBowlingThrow MessageType = "bowling_throw"
	MsgWebRTCOffer  MessageType = "webrtc_offer"
	MsgWebRTCAnswer MessageType = "webrtc_answer"
	MsgWebRTCICE    MessageType = "webrtc_ice_candidate"
)

// Server -> client message types emitted by the router itself; the
// domain broadcasts (room_state, bowling_state, ...) are produced by
// the services.
const (
	MsgAck   MessageType = "ack"
	MsgError MessageType = "error"
)

// Envelope is the wire format in both directions. AckID correlates a
// request with its ack response; requests without AckID are
// fire-and-forget.
type Envelope struct {
	Type    MessageType     `json:"type"`
	AckID   string          `json:"ackId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ackResponse is the payload of an ack message.
type ackResponse struct {
	OK    bool        `json:"ok"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// Payloads of the client -> server catalogue.

type joinRoomRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type rejoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

type roomIDRequest struct {
	RoomID string `json:"roomId"`
}

type navigateMenuRequest struct {
	RoomID    string `json:"roomId"`
	Direction string `json:"direction"`
}

type selectGameRequest struct {
	RoomID string `json:"roomId"`
	GameID string `json:"gameId"`
}

type bowlingThrowRequest struct {
	RoomID string  `json:"roomId"`
	Speed  float64 `json:"speed"`
	Angle  float64 `json:"angle"`
	Spin   float64 `json:"spin"`
}
