package model

// Session binds a reconnection token to a player identity within a
// room. Tokens are bearer secrets: they are only ever sent to their
// owner and only authenticate a rejoin after a dropped connection.
type Session struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
	ConnID   string `json:"connId"`
}
