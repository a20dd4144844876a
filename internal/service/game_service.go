package service

import (
	"context"
	"log"

	"gameion/internal/model"
	"gameion/internal/store"
)

// GameStarter is implemented by per-game services that need
// authoritative server-side state initialized when their game starts.
type GameStarter interface {
	InitGame(ctx context.Context, roomID string) error
}

// GameService handles game lifecycle (start/exit) and continuous input
// relay.
type GameService struct {
	rooms       store.RoomStore
	broadcaster Broadcaster

	// starters maps a game id to its authoritative state initializer.
	starters map[string]GameStarter
}

// NewGameService creates a new game service.
func NewGameService(rooms store.RoomStore) *GameService {
	return &GameService{
		rooms:    rooms,
		starters: make(map[string]GameStarter),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events.
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// RegisterStarter wires a game-specific initializer, called after the
// start broadcast for that game id.
func (s *GameService) RegisterStarter(gameID string, starter GameStarter) {
	s.starters[gameID] = starter
}

// Start transitions the room to playing, assigns player slots, and
// announces the start. Leader or host only.
func (s *GameService) Start(ctx context.Context, roomID, connID string) error {
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
	if room.SelectedGameID == "" {
		return ErrNoGameSelected
	}
	if room.Status == model.RoomStatusPlaying {
		return ErrGameInProgress
	}

	slots, err := s.rooms.AssignSlots(ctx, roomID)
	if err != nil || slots == nil {
		return ErrRoomNotFound
	}

	room, err = s.rooms.SetStatus(ctx, roomID, model.RoomStatusPlaying)
	if err != nil || room == nil {
		return ErrRoomNotFound
	}

	log.Printf("Game %q started in room %s | slots: %v", room.SelectedGameID, roomID, slots)

	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "game_started", map[string]interface{}{
			"gameId":          room.SelectedGameID,
			"slotAssignments": slots,
		})
	}

	if starter, ok := s.starters[room.SelectedGameID]; ok {
		if err := starter.InitGame(ctx, roomID); err != nil {
			return err
		}
	}
	return nil
}

// Exit returns the room to the lobby. The game's authoritative state,
// if any, is abandoned to its TTL.
func (s *GameService) Exit(ctx context.Context, roomID, connID string) error {
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

	if _, err := s.rooms.SetStatus(ctx, roomID, model.RoomStatusLobby); err != nil {
		return err
	}
	room, err = s.rooms.SetSelectedGame(ctx, roomID, "")
	if err != nil || room == nil {
		return ErrRoomNotFound
	}

	log.Printf("Game ended in room %s, returning to lobby", roomID)

	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "game_ended", nil)
		s.broadcaster.ToRoom(room, "room_state", room)
	}
	return nil
}

// Input relays continuous controller input to every host connection.
// Nothing is persisted; the hosts run their own simulation. Input for a
// room that is not playing is dropped.
func (s *GameService) Input(ctx context.Context, in model.GameInput) error {
	room, err := s.rooms.Get(ctx, in.RoomID)
	if err != nil {
		return err
	}
	if room == nil || room.Status != model.RoomStatusPlaying {
		return nil
	}

	if s.broadcaster != nil {
		s.broadcaster.ToHosts(room, "apply_input", model.ApplyInput{
			PlayerID:  in.PlayerID,
			Slot:      in.Slot,
			Action:    in.Action,
			Seq:       in.Seq,
			Timestamp: in.Timestamp,
		})
	}
	return nil
}

func (s *GameService) mayControl(room *model.RoomState, connID string) bool {
	if room.HasHost(connID) {
		return true
	}
	p := room.FindPlayer(connID)
	return p != nil && p.IsLeader
}
