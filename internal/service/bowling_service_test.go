package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameion/internal/bowling"
	"gameion/internal/model"
	"gameion/internal/store"
)

// fakeResultRepo captures archived results. Safe for use from timer
// goroutines.
type fakeResultRepo struct {
	mu    sync.Mutex
	saved []*model.GameResult
}

func (f *fakeResultRepo) Save(_ context.Context, result *model.GameResult) error {
	f.mu.Lock()
	f.saved = append(f.saved, result)
	f.mu.Unlock()
	return nil
}

func (f *fakeResultRepo) ListByRoom(_ context.Context, roomID string) ([]model.GameResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.GameResult
	for _, r := range f.saved {
		if r.RoomID == roomID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResultRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func (f *fakeResultRepo) first() *model.GameResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[0]
}

type bowlingFixture struct {
	rooms   store.RoomStore
	games   store.BowlingStore
	results *fakeResultRepo
	svc     *BowlingService
	bc      *fakeBroadcaster
}

// newBowlingFixture sets up a two-player room already playing bowling,
// with timers collapsed to near-zero so a throw chain resolves quickly.
func newBowlingFixture(t *testing.T) *bowlingFixture {
	t.Helper()
	ctx := context.Background()
	kv := store.NewMemoryKV()
	f := &bowlingFixture{
		rooms:   store.NewRoomStore(kv),
		games:   store.NewBowlingStore(kv),
		results: &fakeResultRepo{},
		bc:      &fakeBroadcaster{},
	}
	f.svc = NewBowlingService(f.rooms, f.games, f.results)
	f.svc.SetBroadcaster(f.bc)
	f.svc.SetDelays(BowlingDelays{
		Travel:   time.Millisecond,
		Settle:   time.Millisecond,
		NextTurn: time.Millisecond,
	})
	f.svc.SetRand(rand.New(rand.NewSource(1)))

	_, err := f.rooms.Create(ctx, "1234", "host-1")
	require.NoError(t, err)
	_, err = f.rooms.AddPlayer(ctx, "1234", model.Player{ID: "c1", Name: "Alice", IsLeader: true})
	require.NoError(t, err)
	_, err = f.rooms.AddPlayer(ctx, "1234", model.Player{ID: "c2", Name: "Bob"})
	require.NoError(t, err)
	_, err = f.rooms.SetSelectedGame(ctx, "1234", model.GameBowling)
	require.NoError(t, err)
	_, err = f.rooms.SetStatus(ctx, "1234", model.RoomStatusPlaying)
	require.NoError(t, err)
	return f
}

func TestInitGameAnnouncesFirstTurn(t *testing.T) {
	ctx := context.Background()
	f := newBowlingFixture(t)

	require.NoError(t, f.svc.InitGame(ctx, "1234"))

	game, err := f.games.Get(ctx, "1234")
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, bowling.PhaseWaiting, game.Phase)
	assert.Equal(t, []string{"c1", "c2"}, game.TurnOrder)

	assert.Equal(t, 1, f.bc.count("bowling_state"))
	turns := f.bc.named("bowling_your_turn")
	require.Len(t, turns, 1)
	payload := turns[0].payload.(map[string]interface{})
	assert.Equal(t, "c1", payload["playerId"])
	assert.Equal(t, "Alice", payload["playerName"])
}

func TestThrowChainResolvesTurn(t *testing.T) {
	ctx := context.Background()
	f := newBowlingFixture(t)
	require.NoError(t, f.svc.InitGame(ctx, "1234"))
	f.bc.reset()

	require.NoError(t, f.svc.Throw(ctx, "1234", "c1", 8.4, 0, 0))

	// Rolling state is persisted and broadcast before any timer fires.
	game, _ := f.games.Get(ctx, "1234")
	assert.Equal(t, bowling.PhaseRolling, game.Phase)

	// Travel, settle, and next-turn timers chain to a fresh waiting
	// state with the throw recorded.
	require.Eventually(t, func() bool {
		g, err := f.games.Get(ctx, "1234")
		if err != nil || g == nil {
			return false
		}
		return g.Phase == bowling.PhaseWaiting && len(g.Scores[0].Frames[0].Throws) == 1
	}, 2*time.Second, 5*time.Millisecond)

	results := f.bc.named("bowling_throw_result")
	require.Len(t, results, 1)
	payload := results[0].payload.(map[string]interface{})
	assert.Equal(t, "c1", payload["playerId"])
	pins := payload["pinsKnocked"].(int)
	assert.GreaterOrEqual(t, pins, 0)
	assert.LessOrEqual(t, pins, bowling.TotalPins)

	game, _ = f.games.Get(ctx, "1234")
	assert.Equal(t, pins, game.Scores[0].Frames[0].Throws[0])
	// rolling, settling, scoring, waiting.
	assert.GreaterOrEqual(t, f.bc.count("bowling_state"), 3)
	assert.Equal(t, 1, f.bc.count("bowling_your_turn"))
}

func TestThrowOutOfTurnDropped(t *testing.T) {
	ctx := context.Background()
	f := newBowlingFixture(t)
	require.NoError(t, f.svc.InitGame(ctx, "1234"))
	f.bc.reset()

	// c2 is not the turn-holder.
	require.NoError(t, f.svc.Throw(ctx, "1234", "c2", 8.4, 0, 0))

	game, _ := f.games.Get(ctx, "1234")
	assert.Equal(t, bowling.PhaseWaiting, game.Phase)
	assert.Equal(t, 0, f.bc.count("bowling_state"))
}

func TestThrowIgnoredOutsidePlaying(t *testing.T) {
	ctx := context.Background()
	f := newBowlingFixture(t)
	require.NoError(t, f.svc.InitGame(ctx, "1234"))
	_, err := f.rooms.SetStatus(ctx, "1234", model.RoomStatusLobby)
	require.NoError(t, err)
	f.bc.reset()

	require.NoError(t, f.svc.Throw(ctx, "1234", "c1", 8.4, 0, 0))

	game, _ := f.games.Get(ctx, "1234")
	assert.Equal(t, bowling.PhaseWaiting, game.Phase)
	assert.Equal(t, 0, f.bc.count("bowling_state"))
}

func TestThrowWhileRollingDropped(t *testing.T) {
	ctx := context.Background()
	f := newBowlingFixture(t)
	require.NoError(t, f.svc.InitGame(ctx, "1234"))
	// Long travel so the first throw is still in flight.
	f.svc.SetDelays(BowlingDelays{Travel: time.Minute, Settle: time.Minute, NextTurn: time.Minute})

	require.NoError(t, f.svc.Throw(ctx, "1234", "c1", 8.4, 0, 0))
	f.bc.reset()

	require.NoError(t, f.svc.Throw(ctx, "1234", "c1", 8.4, 0, 0))

	assert.Equal(t, 0, f.bc.count("bowling_state"), "second tap during the roll is ignored")
}

func TestFinishedGameIsArchived(t *testing.T) {
	ctx := context.Background()
	f := newBowlingFixture(t)
	require.NoError(t, f.svc.InitGame(ctx, "1234"))

	// Hand-craft a state one throw from the end: both players in the
	// tenth frame, c2 on its final throw.
	game, err := f.games.Get(ctx, "1234")
	require.NoError(t, err)
	for fr := 0; fr < 9; fr++ {
		for p := 0; p < 2; p++ {
			game.Scores[p].Frames[fr].Throws = []int{0, 0}
		}
	}
	game.Scores[0].Frames[9].Throws = []int{0, 0}
	game.Scores[1].Frames[9].Throws = []int{3}
	game.CurrentPlayerIndex = 1
	game.CurrentFrame = 9
	game.CurrentThrow = 1
	// Three pins left: the final throw can never convert a spare, so
	// the game ends regardless of the simulated outcome.
	game.StandingPins = []bool{true, true, true, false, false, false, false, false, false, false}
	require.NoError(t, f.games.Save(ctx, "1234", game))
	f.bc.reset()

	require.NoError(t, f.svc.Throw(ctx, "1234", "c2", 2.0, 0.9, 0))

	require.Eventually(t, func() bool {
		return f.results.count() == 1
	}, 2*time.Second, 5*time.Millisecond)

	result := f.results.first()
	assert.Equal(t, "1234", result.RoomID)
	assert.Equal(t, model.GameBowling, result.GameID)
	require.Len(t, result.Standings, 2)
	assert.Equal(t, "Alice", result.Standings[0].PlayerName)
	assert.Equal(t, 0, result.Standings[0].Score)

	g, _ := f.games.Get(ctx, "1234")
	assert.Equal(t, bowling.PhaseFinished, g.Phase)
	// No further turn announced after the game ends.
	assert.Equal(t, 0, f.bc.count("bowling_your_turn"))
}
