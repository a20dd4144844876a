package model

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	RoomStatusLobby    RoomStatus = "lobby"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// Player is a phone controller joined to a room. The ID is the player's
// current connection id and is rebound on reconnect.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	IsLeader bool   `json:"isLeader"`
}

// RoomState is the authoritative room record. Hosts are display
// connections; a room may have several (multiple screens showing the
// same session).
type RoomState struct {
	ID             string     `json:"id"`
	Players        []Player   `json:"players"`
	Status         RoomStatus `json:"status"`
	SelectedGameID string     `json:"selectedGameId,omitempty"`
	HostConnIDs    []string   `json:"hostConnIds"`
}

// PlayerSlot is a stable small-integer index assigned to each player
// for the duration of a game.
type PlayerSlot = int

// ConnIDs returns every connection attached to the room, players and
// hosts alike. Broadcasts fan out over this set.
func (r *RoomState) ConnIDs() []string {
	ids := make([]string, 0, len(r.Players)+len(r.HostConnIDs))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	ids = append(ids, r.HostConnIDs...)
	return ids
}

// FindPlayer returns the player with the given id, or nil.
func (r *RoomState) FindPlayer(playerID string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// HasHost reports whether connID is one of the room's host connections.
func (r *RoomState) HasHost(connID string) bool {
	for _, id := range r.HostConnIDs {
		if id == connID {
			return true
		}
	}
	return false
}
