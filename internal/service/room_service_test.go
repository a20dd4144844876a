package service

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameion/internal/model"
	"gameion/internal/store"
)

// fakeBroadcaster records every event for assertion. Safe for use from
// timer goroutines.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []broadcastEvent
}

type broadcastEvent struct {
	target  string // "room", "hosts", or "conn:<id>"
	event   string
	payload interface{}
}

func (b *fakeBroadcaster) ToRoom(room *model.RoomState, event string, payload interface{}) {
	b.record(broadcastEvent{target: "room", event: event, payload: payload})
}

func (b *fakeBroadcaster) ToHosts(room *model.RoomState, event string, payload interface{}) {
	b.record(broadcastEvent{target: "hosts", event: event, payload: payload})
}

func (b *fakeBroadcaster) ToConn(connID, event string, payload interface{}) {
	b.record(broadcastEvent{target: "conn:" + connID, event: event, payload: payload})
}

func (b *fakeBroadcaster) record(e broadcastEvent) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
}

func (b *fakeBroadcaster) named(event string) []broadcastEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []broadcastEvent
	for _, e := range b.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (b *fakeBroadcaster) count(event string) int {
	return len(b.named(event))
}

func (b *fakeBroadcaster) reset() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}

type roomFixture struct {
	rooms    store.RoomStore
	sessions store.SessionStore
	svc      *RoomService
	bc       *fakeBroadcaster
}

func newRoomFixture() *roomFixture {
	kv := store.NewMemoryKV()
	f := &roomFixture{
		rooms:    store.NewRoomStore(kv),
		sessions: store.NewSessionStore(kv),
		bc:       &fakeBroadcaster{},
	}
	f.svc = NewRoomService(f.rooms, f.sessions)
	f.svc.SetBroadcaster(f.bc)
	return f
}

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture()

	roomID, err := f.svc.CreateRoom(ctx, "host-1")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}$`), roomID)

	require.NoError(t, f.svc.CheckRoom(ctx, roomID))
	assert.ErrorIs(t, f.svc.CheckRoom(ctx, "0000"), ErrRoomNotFound)

	room, err := f.rooms.Get(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, []string{"host-1"}, room.HostConnIDs)
	assert.Equal(t, model.RoomStatusLobby, room.Status)
}

func TestCreateRoomCodesUnique(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := f.svc.CreateRoom(ctx, fmt.Sprintf("host-%d", i))
		require.NoError(t, err)
		assert.False(t, seen[id], "room code %s issued twice", id)
		seen[id] = true
	}
}

func TestJoinFirstPlayerBecomesLeader(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture()
	roomID, _ := f.svc.CreateRoom(ctx, "host-1")

	p1, token1, err := f.svc.Join(ctx, roomID, "c1", "Alice", "cat")
	require.NoError(t, err)
	assert.True(t, p1.IsLeader)
	assert.Equal(t, "Alice", p1.Name)
	assert.Equal(t, "cat", p1.Avatar)
	assert.NotEmpty(t, token1)

	p2, _, err := f.svc.Join(ctx, roomID, "c2", "Bob", "not-an-avatar")
	require.NoError(t, err)
	assert.False(t, p2.IsLeader)
	assert.Equal(t, model.Avatars[0], p2.Avatar, "unknown avatar falls back to the first")

	// Each join announces the room and tells the joiner its hosts.
	assert.Equal(t, 2, f.bc.count("room_state"))
	hostLists := f.bc.named("host_list")
	require.Len(t, hostLists, 2)
	assert.Equal(t, "conn:c1", hostLists[0].target)
	assert.Equal(t, "conn:c2", hostLists[1].target)
}

func TestJoinRejections(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture()
	roomID, _ := f.svc.CreateRoom(ctx, "host-1")

	_, _, err := f.svc.Join(ctx, "0000", "c1", "Alice", "cat")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, _, err = f.svc.Join(ctx, roomID, "c1", "Alice", "cat")
	require.NoError(t, err)
	_, _, err = f.svc.Join(ctx, roomID, "c1", "Alice again", "cat")
	assert.ErrorIs(t, err, ErrAlreadyInRoom)

	for i := 2; i <= model.MaxPlayersPerRoom; i++ {
		_, _, err = f.svc.Join(ctx, roomID, fmt.Sprintf("c%d", i), fmt.Sprintf("P%d", i), "cat")
		require.NoError(t, err)
	}
	_, _, err = f.svc.Join(ctx, roomID, "c9", "Late", "cat")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestRejoinRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture()
	roomID, _ := f.svc.CreateRoom(ctx, "host-1")

	_, token, err := f.svc.Join(ctx, roomID, "c1", "Alice", "cat")
	require.NoError(t, err)

	player, newToken, err := f.svc.Rejoin(ctx, roomID, "c1", token, "c1-new")
	require.NoError(t, err)
	assert.Equal(t, "c1-new", player.ID)
	assert.Equal(t, "Alice", player.Name)
	assert.True(t, player.IsLeader)
	assert.NotEqual(t, token, newToken)

	// The room record now carries the new connection id.
	room, _ := f.rooms.Get(ctx, roomID)
	require.NotNil(t, room.FindPlayer("c1-new"))
	assert.Nil(t, room.FindPlayer("c1"))

	// Old token is dead; the new one verifies under the new id.
	ok, _ := f.sessions.Verify(ctx, roomID, "c1", token)
	assert.False(t, ok)
	ok, _ = f.sessions.Verify(ctx, roomID, "c1-new", newToken)
	assert.True(t, ok)
}

func TestRejoinBadToken(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture()
	roomID, _ := f.svc.CreateRoom(ctx, "host-1")
	f.svc.Join(ctx, roomID, "c1", "Alice", "cat")

	_, _, err := f.svc.Rejoin(ctx, roomID, "c1", "bogus-token", "c1-new")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = f.svc.Rejoin(ctx, "0000", "c1", "whatever", "c1-new")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLeaveReassignsLeadership(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture()
	roomID, _ := f.svc.CreateRoom(ctx, "host-1")
	f.svc.Join(ctx, roomID, "c1", "Alice", "cat")
	f.svc.Join(ctx, roomID, "c2", "Bob", "cat")

	require.NoError(t, f.svc.Leave(ctx, roomID, "c1"))

	room, _ := f.rooms.Get(ctx, roomID)
	require.NotNil(t, room)
	require.Len(t, room.Players, 1)
	assert.True(t, room.Players[0].IsLeader)
	assert.Equal(t, "c2", room.Players[0].ID)
}

func TestEmptyRoomIsDeleted(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture()
	roomID, _ := f.svc.CreateRoom(ctx, "host-1")
	_, token, _ := f.svc.Join(ctx, roomID, "c1", "Alice", "cat")

	require.NoError(t, f.svc.Leave(ctx, roomID, "c1"))
	// Host still attached, room survives.
	require.NoError(t, f.svc.CheckRoom(ctx, roomID))

	require.NoError(t, f.svc.Leave(ctx, roomID, "host-1"))
	assert.ErrorIs(t, f.svc.CheckRoom(ctx, roomID), ErrRoomNotFound)

	// Sessions went with the room.
	ok, _ := f.sessions.Verify(ctx, roomID, "c1", token)
	assert.False(t, ok)
}

func TestHostRejoin(t *testing.T) {
	ctx := context.Background()
	f := newRoomFixture()
	roomID, _ := f.svc.CreateRoom(ctx, "host-1")

	room, err := f.svc.HostRejoin(ctx, roomID, "host-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"host-1", "host-2"}, room.HostConnIDs)

	_, err = f.svc.HostRejoin(ctx, "0000", "host-2")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Alice", "Alice"},
		{"trimmed", "  Bob  ", "Bob"},
		{"control chars stripped", "Ca\x00ra\n", "Cara"},
		{"too long", "abcdefghijklmnopqrstuvwxyz", "abcdefghijklmnop"},
		{"empty", "", "Player"},
		{"only whitespace", "   ", "Player"},
		{"unicode kept", "Zoë", "Zoë"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}
