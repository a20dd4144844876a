package service

import "errors"

// Domain and authorization failures. These are surfaced to the client
// in an ack or an error event; they never cross the store boundary as
// panics or crash a connection.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadyInRoom   = errors.New("already in room")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrPlayerNotFound  = errors.New("player not found in room")
	ErrNotLeaderOrHost = errors.New("only the leader or host can do that")
	ErrGameNotFound    = errors.New("game not found")
	ErrNoGameSelected  = errors.New("no game selected")
	ErrGameInProgress  = errors.New("game already in progress")
	ErrPlayerCount     = errors.New("invalid player count for this game")
	ErrInvalidKey      = errors.New("invalid host key")
	ErrInvalidHostJWT  = errors.New("invalid or expired token")
)
