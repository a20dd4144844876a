package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gameion/internal/model"
)

// SessionStore issues and verifies reconnection tokens. One active
// token per player; issuing a new one invalidates the old. Tokens are
// keyed under their room id so a whole room's sessions can be swept in
// one scan.
type SessionStore interface {
	CreateToken(ctx context.Context, roomID, playerID, connID string) (string, error)
	Verify(ctx context.Context, roomID, playerID, token string) (bool, error)
	UpdateConnID(ctx context.Context, playerID, newConnID string) error
	RemovePlayer(ctx context.Context, playerID string) error
	RemoveRoom(ctx context.Context, roomID string) error
}

type sessionStore struct {
	kv  KV
	ttl time.Duration
}

// NewSessionStore creates a session store over the given backend.
func NewSessionStore(kv KV) SessionStore {
	return &sessionStore{
		kv:  kv,
		ttl: 24 * time.Hour,
	}
}

func (s *sessionStore) tokenKey(roomID, token string) string {
	return fmt.Sprintf("session:%s:%s", roomID, token)
}

func (s *sessionStore) playerKey(playerID string) string {
	return fmt.Sprintf("sessplayer:%s", playerID)
}

func (s *sessionStore) getEntry(ctx context.Context, key string) (*model.Session, error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil || data == "" {
		return nil, err
	}
	var entry model.Session
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// lookupByPlayer resolves the player index to the current token entry.
func (s *sessionStore) lookupByPlayer(ctx context.Context, playerID string) (*model.Session, string, error) {
	tokenKey, err := s.kv.Get(ctx, s.playerKey(playerID))
	if err != nil || tokenKey == "" {
		return nil, "", err
	}
	entry, err := s.getEntry(ctx, tokenKey)
	return entry, tokenKey, err
}

func (s *sessionStore) CreateToken(ctx context.Context, roomID, playerID, connID string) (string, error) {
	// Invalidate any previous token for this player.
	if _, oldKey, err := s.lookupByPlayer(ctx, playerID); err != nil {
		return "", err
	} else if oldKey != "" {
		if err := s.kv.Del(ctx, oldKey); err != nil {
			return "", err
		}
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	entry := model.Session{RoomID: roomID, PlayerID: playerID, Token: token, ConnID: connID}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}

	key := s.tokenKey(roomID, token)
	if err := s.kv.Set(ctx, key, string(data), s.ttl); err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, s.playerKey(playerID), key, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (s *sessionStore) Verify(ctx context.Context, roomID, playerID, token string) (bool, error) {
	entry, err := s.getEntry(ctx, s.tokenKey(roomID, token))
	if err != nil || entry == nil {
		return false, err
	}
	return entry.RoomID == roomID && entry.PlayerID == playerID, nil
}

func (s *sessionStore) UpdateConnID(ctx context.Context, playerID, newConnID string) error {
	entry, key, err := s.lookupByPlayer(ctx, playerID)
	if err != nil || entry == nil {
		return err
	}
	entry.ConnID = newConnID
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, string(data), s.ttl)
}

func (s *sessionStore) RemovePlayer(ctx context.Context, playerID string) error {
	_, key, err := s.lookupByPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	if key != "" {
		if err := s.kv.Del(ctx, key); err != nil {
			return err
		}
	}
	return s.kv.Del(ctx, s.playerKey(playerID))
}

// RemoveRoom sweeps every token issued for the room. O(tokens in the
// room), which is fine at session-store scale.
func (s *sessionStore) RemoveRoom(ctx context.Context, roomID string) error {
	keys, err := s.kv.Keys(ctx, fmt.Sprintf("session:%s:*", roomID))
	if err != nil {
		return err
	}
	for _, key := range keys {
		entry, err := s.getEntry(ctx, key)
		if err != nil {
			return err
		}
		if entry != nil {
			if err := s.kv.Del(ctx, s.playerKey(entry.PlayerID)); err != nil {
				return err
			}
		}
		if err := s.kv.Del(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
