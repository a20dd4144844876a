package model

// GameDefinition describes a playable game and its player-count
// constraints. ExactPlayers of 0 means no exact requirement.
type GameDefinition struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	MinPlayers   int    `json:"minPlayers"`
	MaxPlayers   int    `json:"maxPlayers"`
	ExactPlayers int    `json:"exactPlayers,omitempty"`
}

const (
	GameCoopQuest = "coop-quest"
	GameBowling   = "bowling"
)

const MaxPlayersPerRoom = 8

// Games is the catalogue of selectable games.
var Games = []GameDefinition{
	{
		ID:           GameCoopQuest,
		Title:        "Co-op Quest",
		Description:  "A cooperative adventure for exactly 2 players",
		MinPlayers:   2,
		MaxPlayers:   2,
		ExactPlayers: 2,
	},
	{
		ID:          GameBowling,
		Title:       "Cosmic Bowling",
		Description: "Classic bowling for 1-8 players",
		MinPlayers:  1,
		MaxPlayers:  8,
	},
}

// FindGame looks up a game definition by id.
func FindGame(id string) *GameDefinition {
	for i := range Games {
		if Games[i].ID == id {
			return &Games[i]
		}
	}
	return nil
}

// Avatars players can pick from. An unknown avatar falls back to the
// first entry.
var Avatars = []string{"robot", "alien", "cat", "ninja", "wizard", "pirate", "dragon", "ghost"}

// ValidAvatar reports whether id is a known avatar.
func ValidAvatar(id string) bool {
	for _, a := range Avatars {
		if a == id {
			return true
		}
	}
	return false
}
