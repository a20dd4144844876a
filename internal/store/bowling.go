package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gameion/internal/bowling"
)

// BowlingStore holds the per-room bowling state. A room has at most
// one game at a time; abandoned games fall out via TTL.
type BowlingStore interface {
	Create(ctx context.Context, roomID string, playerIDs, playerNames []string) (*bowling.State, error)
	Get(ctx context.Context, roomID string) (*bowling.State, error)
	Save(ctx context.Context, roomID string, state *bowling.State) error
	Delete(ctx context.Context, roomID string) error
}

type bowlingStore struct {
	kv  KV
	ttl time.Duration
}

// NewBowlingStore creates a bowling store over the given backend.
func NewBowlingStore(kv KV) BowlingStore {
	return &bowlingStore{
		kv:  kv,
		ttl: 24 * time.Hour,
	}
}

func (s *bowlingStore) key(roomID string) string {
	return fmt.Sprintf("bowling:%s", roomID)
}

func (s *bowlingStore) Create(ctx context.Context, roomID string, playerIDs, playerNames []string) (*bowling.State, error) {
	state := bowling.NewState(playerIDs, playerNames)
	if err := s.Save(ctx, roomID, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *bowlingStore) Get(ctx context.Context, roomID string) (*bowling.State, error) {
	data, err := s.kv.Get(ctx, s.key(roomID))
	if err != nil || data == "" {
		return nil, err
	}
	var state bowling.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *bowlingStore) Save(ctx context.Context, roomID string, state *bowling.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key(roomID), string(data), s.ttl)
}

func (s *bowlingStore) Delete(ctx context.Context, roomID string) error {
	return s.kv.Del(ctx, s.key(roomID))
}
