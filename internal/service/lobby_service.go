package service

import (
	"context"
	"fmt"
	"log"

	"gameion/internal/model"
	"gameion/internal/store"
)

var menuDirections = map[string]bool{
	"up":     true,
	"down":   true,
	"left":   true,
	"right":  true,
	"select": true,
}

// LobbyService handles menu navigation and game selection. Both are
// privileged: only the leader phone or a host display may drive the
// lobby.
type LobbyService struct {
	rooms       store.RoomStore
	broadcaster Broadcaster
}

// NewLobbyService creates a new lobby service.
func NewLobbyService(rooms store.RoomStore) *LobbyService {
	return &LobbyService{rooms: rooms}
}

// SetBroadcaster sets the broadcaster for WebSocket events.
func (s *LobbyService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// NavigateMenu relays a menu direction to the whole room.
func (s *LobbyService) NavigateMenu(ctx context.Context, roomID, connID, direction string) error {
	if !menuDirections[direction] {
		return fmt.Errorf("unknown menu direction %q", direction)
	}

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	if !s.mayControl(room, connID) {
		return ErrNotLeaderOrHost
	}

	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "menu_navigate", direction)
	}
	return nil
}

// SelectGame validates the game's player-count constraints against the
// current room and records the selection.
func (s *LobbyService) SelectGame(ctx context.Context, roomID, connID, gameID string) error {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	if !s.mayControl(room, connID) {
		return ErrNotLeaderOrHost
	}

	game := model.FindGame(gameID)
	if game == nil {
		return ErrGameNotFound
	}

	playerCount := len(room.Players)
	if game.ExactPlayers != 0 && playerCount != game.ExactPlayers {
		return fmt.Errorf("%w: requires exactly %d players", ErrPlayerCount, game.ExactPlayers)
	}
	if playerCount < game.MinPlayers {
		return fmt.Errorf("%w: requires at least %d players", ErrPlayerCount, game.MinPlayers)
	}
	if playerCount > game.MaxPlayers {
		return fmt.Errorf("%w: supports at most %d players", ErrPlayerCount, game.MaxPlayers)
	}

	room, err = s.rooms.SetSelectedGame(ctx, roomID, gameID)
	if err != nil || room == nil {
		return err
	}

	log.Printf("Game %q selected in room %s", game.Title, roomID)
	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "game_selected", gameID)
	}
	return nil
}

func (s *LobbyService) mayControl(room *model.RoomState, connID string) bool {
	if room.HasHost(connID) {
		return true
	}
	p := room.FindPlayer(connID)
	return p != nil && p.IsLeader
}
