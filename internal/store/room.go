package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gameion/internal/model"
)

// RoomStore owns RoomState records. Every mutation is a read-modify-
// write against the KV backend with a TTL refresh; absent rooms come
// back as (nil, nil).
type RoomStore interface {
	Create(ctx context.Context, roomID, hostConnID string) (*model.RoomState, error)
	Get(ctx context.Context, roomID string) (*model.RoomState, error)
	Save(ctx context.Context, room *model.RoomState) error
	AddPlayer(ctx context.Context, roomID string, player model.Player) (*model.RoomState, error)
	RemovePlayer(ctx context.Context, roomID, playerID string) (*model.RoomState, error)
	AddHost(ctx context.Context, roomID, connID string) (*model.RoomState, error)
	RemoveHost(ctx context.Context, roomID, connID string) (*model.RoomState, error)
	SetStatus(ctx context.Context, roomID string, status model.RoomStatus) (*model.RoomState, error)
	SetSelectedGame(ctx context.Context, roomID, gameID string) (*model.RoomState, error)
	IsLeader(ctx context.Context, roomID, connID string) (bool, error)
	IsHost(ctx context.Context, roomID, connID string) (bool, error)
	AssignSlots(ctx context.Context, roomID string) (map[string]model.PlayerSlot, error)
	Delete(ctx context.Context, roomID string) error
	LiveRoomIDs(ctx context.Context) (map[string]bool, error)
}

type roomStore struct {
	kv  KV
	ttl time.Duration
}

// NewRoomStore creates a room store over the given backend.
func NewRoomStore(kv KV) RoomStore {
	return &roomStore{
		kv:  kv,
		ttl: 24 * time.Hour, // orphaned rooms expire after a day
	}
}

func (s *roomStore) key(roomID string) string {
	return fmt.Sprintf("room:%s", roomID)
}

func (s *roomStore) Create(ctx context.Context, roomID, hostConnID string) (*model.RoomState, error) {
	room := &model.RoomState{
		ID:          roomID,
		Players:     []model.Player{},
		Status:      model.RoomStatusLobby,
		HostConnIDs: []string{hostConnID},
	}
	if err := s.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *roomStore) Get(ctx context.Context, roomID string) (*model.RoomState, error) {
	data, err := s.kv.Get(ctx, s.key(roomID))
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}
	var room model.RoomState
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *roomStore) Save(ctx context.Context, room *model.RoomState) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key(room.ID), string(data), s.ttl)
}

// mutate applies fn to the current room record and persists the result.
// Returns (nil, nil) if the room does not exist.
func (s *roomStore) mutate(ctx context.Context, roomID string, fn func(*model.RoomState)) (*model.RoomState, error) {
	room, err := s.Get(ctx, roomID)
	if err != nil || room == nil {
		return nil, err
	}
	fn(room)
	if err := s.Save(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *roomStore) AddPlayer(ctx context.Context, roomID string, player model.Player) (*model.RoomState, error) {
	return s.mutate(ctx, roomID, func(room *model.RoomState) {
		room.Players = append(room.Players, player)
	})
}

func (s *roomStore) RemovePlayer(ctx context.Context, roomID, playerID string) (*model.RoomState, error) {
	return s.mutate(ctx, roomID, func(room *model.RoomState) {
		players := room.Players[:0]
		for _, p := range room.Players {
			if p.ID != playerID {
				players = append(players, p)
			}
		}
		room.Players = players

		// Leadership passes to the first remaining player.
		if len(room.Players) > 0 {
			hasLeader := false
			for _, p := range room.Players {
				if p.IsLeader {
					hasLeader = true
					break
				}
			}
			if !hasLeader {
				room.Players[0].IsLeader = true
			}
		}
	})
}

func (s *roomStore) AddHost(ctx context.Context, roomID, connID string) (*model.RoomState, error) {
	return s.mutate(ctx, roomID, func(room *model.RoomState) {
		if !room.HasHost(connID) {
			room.HostConnIDs = append(room.HostConnIDs, connID)
		}
	})
}

func (s *roomStore) RemoveHost(ctx context.Context, roomID, connID string) (*model.RoomState, error) {
	return s.mutate(ctx, roomID, func(room *model.RoomState) {
		hosts := room.HostConnIDs[:0]
		for _, id := range room.HostConnIDs {
			if id != connID {
				hosts = append(hosts, id)
			}
		}
		room.HostConnIDs = hosts
	})
}

func (s *roomStore) SetStatus(ctx context.Context, roomID string, status model.RoomStatus) (*model.RoomState, error) {
	return s.mutate(ctx, roomID, func(room *model.RoomState) {
		room.Status = status
	})
}

func (s *roomStore) SetSelectedGame(ctx context.Context, roomID, gameID string) (*model.RoomState, error) {
	return s.mutate(ctx, roomID, func(room *model.RoomState) {
		room.SelectedGameID = gameID
	})
}

func (s *roomStore) IsLeader(ctx context.Context, roomID, connID string) (bool, error) {
	room, err := s.Get(ctx, roomID)
	if err != nil || room == nil {
		return false, err
	}
	p := room.FindPlayer(connID)
	return p != nil && p.IsLeader, nil
}

func (s *roomStore) IsHost(ctx context.Context, roomID, connID string) (bool, error) {
	room, err := s.Get(ctx, roomID)
	if err != nil || room == nil {
		return false, err
	}
	return room.HasHost(connID), nil
}

// AssignSlots maps each player to its index in the current player
// order. Pure read; callers persist the assignment into their own game
// state.
func (s *roomStore) AssignSlots(ctx context.Context, roomID string) (map[string]model.PlayerSlot, error) {
	room, err := s.Get(ctx, roomID)
	if err != nil || room == nil {
		return nil, err
	}
	slots := make(map[string]model.PlayerSlot, len(room.Players))
	for i, p := range room.Players {
		slots[p.ID] = i
	}
	return slots, nil
}

func (s *roomStore) Delete(ctx context.Context, roomID string) error {
	return s.kv.Del(ctx, s.key(roomID))
}

func (s *roomStore) LiveRoomIDs(ctx context.Context) (map[string]bool, error) {
	keys, err := s.kv.Keys(ctx, "room:*")
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(keys))
	for _, k := range keys {
		ids[strings.TrimPrefix(k, "room:")] = true
	}
	return ids, nil
}
