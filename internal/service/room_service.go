package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"unicode"

	"gameion/internal/model"
	"gameion/internal/store"
)

const maxNameLength = 16

// RoomService handles room lifecycle: creation, joining, reconnection,
// and leave/disconnect cleanup.
type RoomService struct {
	rooms       store.RoomStore
	sessions    store.SessionStore
	broadcaster Broadcaster
}

// NewRoomService creates a new room service.
func NewRoomService(rooms store.RoomStore, sessions store.SessionStore) *RoomService {
	return &RoomService{
		rooms:    rooms,
		sessions: sessions,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events.
func (s *RoomService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateRoom generates a unique room code and creates a room with the
// calling connection as its first host.
func (s *RoomService) CreateRoom(ctx context.Context, hostConnID string) (string, error) {
	roomID, err := s.generateRoomID(ctx)
	if err != nil {
		return "", err
	}
	if _, err := s.rooms.Create(ctx, roomID, hostConnID); err != nil {
		return "", err
	}
	log.Printf("Room %s created by host %s", roomID, hostConnID)
	return roomID, nil
}

// CheckRoom is an existence probe.
func (s *RoomService) CheckRoom(ctx context.Context, roomID string) error {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}
	return nil
}

// HostRejoin attaches an additional display connection to a room.
func (s *RoomService) HostRejoin(ctx context.Context, roomID, connID string) (*model.RoomState, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	room, err = s.rooms.AddHost(ctx, roomID, connID)
	if err != nil || room == nil {
		return nil, err
	}
	log.Printf("Host %s joined room %s (%d hosts total)", connID, roomID, len(room.HostConnIDs))
	return room, nil
}

// Join adds a phone player to a room. The first joiner becomes leader.
// Returns the created player and its reconnection token.
func (s *RoomService) Join(ctx context.Context, roomID, connID, name, avatar string) (*model.Player, string, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, "", err
	}
	if room == nil {
		return nil, "", ErrRoomNotFound
	}
	if len(room.Players) >= model.MaxPlayersPerRoom {
		return nil, "", ErrRoomFull
	}
	if room.FindPlayer(connID) != nil {
		return nil, "", ErrAlreadyInRoom
	}

	if !model.ValidAvatar(avatar) {
		avatar = model.Avatars[0]
	}

	player := model.Player{
		ID:       connID,
		Name:     sanitizeName(name),
		Avatar:   avatar,
		IsLeader: len(room.Players) == 0,
	}

	room, err = s.rooms.AddPlayer(ctx, roomID, player)
	if err != nil || room == nil {
		return nil, "", ErrRoomNotFound
	}

	token, err := s.sessions.CreateToken(ctx, roomID, connID, connID)
	if err != nil {
		return nil, "", err
	}

	leaderTag := ""
	if player.IsLeader {
		leaderTag = " [LEADER]"
	}
	log.Printf("Player %q (%s) joined room %s%s", player.Name, connID, roomID, leaderTag)

	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "room_state", room)
		s.broadcaster.ToConn(connID, "host_list", room.HostConnIDs)
	}
	return &player, token, nil
}

// Rejoin rebinds a disconnected player to a new connection. The caller
// proves identity with the session token issued at join; a fresh token
// is issued and the old one invalidated.
func (s *RoomService) Rejoin(ctx context.Context, roomID, playerID, token, newConnID string) (*model.Player, string, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, "", err
	}
	if room == nil {
		return nil, "", ErrRoomNotFound
	}

	ok, err := s.sessions.Verify(ctx, roomID, playerID, token)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidToken
	}

	player := room.FindPlayer(playerID)
	if player == nil {
		return nil, "", ErrPlayerNotFound
	}

	// Rebind the player identity to the new connection.
	player.ID = newConnID
	if err := s.rooms.Save(ctx, room); err != nil {
		return nil, "", err
	}

	if err := s.sessions.RemovePlayer(ctx, playerID); err != nil {
		return nil, "", err
	}
	newToken, err := s.sessions.CreateToken(ctx, roomID, newConnID, newConnID)
	if err != nil {
		return nil, "", err
	}

	log.Printf("Player %q reconnected to room %s (old: %s, new: %s)", player.Name, roomID, playerID, newConnID)

	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "room_state", room)
		s.broadcaster.ToConn(newConnID, "host_list", room.HostConnIDs)
	}
	return player, newToken, nil
}

// Leave handles explicit leaves and transport disconnects alike. A room
// with no players and no hosts left is deleted together with its
// sessions; any game state is left to expire.
func (s *RoomService) Leave(ctx context.Context, roomID, connID string) error {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil || room == nil {
		return err
	}

	if room.HasHost(connID) {
		room, err = s.rooms.RemoveHost(ctx, roomID, connID)
		if err != nil || room == nil {
			return err
		}
		log.Printf("Host %s disconnected from room %s (%d hosts remain)", connID, roomID, len(room.HostConnIDs))
		return s.deleteIfEmpty(ctx, room)
	}

	if err := s.sessions.RemovePlayer(ctx, connID); err != nil {
		return err
	}
	room, err = s.rooms.RemovePlayer(ctx, roomID, connID)
	if err != nil || room == nil {
		return err
	}

	if len(room.Players) == 0 && len(room.HostConnIDs) == 0 {
		return s.deleteIfEmpty(ctx, room)
	}

	log.Printf("Player %s left room %s", connID, roomID)
	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "room_state", room)
	}
	return nil
}

func (s *RoomService) deleteIfEmpty(ctx context.Context, room *model.RoomState) error {
	if len(room.Players) > 0 || len(room.HostConnIDs) > 0 {
		return nil
	}
	if err := s.rooms.Delete(ctx, room.ID); err != nil {
		return err
	}
	if err := s.sessions.RemoveRoom(ctx, room.ID); err != nil {
		return err
	}
	log.Printf("Room %s deleted (empty)", room.ID)
	return nil
}

// generateRoomID creates a 4-digit numeric code, collision-checked
// against the live room set.
func (s *RoomService) generateRoomID(ctx context.Context) (string, error) {
	live, err := s.rooms.LiveRoomIDs(ctx)
	if err != nil {
		return "", err
	}

	for attempts := 0; attempts < 100; attempts++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9000))
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("%04d", n.Int64()+1000)
		if !live[id] {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique room id")
}

// sanitizeName trims, strips control characters, and caps the display
// name length.
func sanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) > maxNameLength {
		cleaned = string(runes[:maxNameLength])
	}
	if cleaned == "" {
		cleaned = "Player"
	}
	return cleaned
}
