package service

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"gameion/internal/bowling"
	"gameion/internal/model"
	"gameion/internal/repository"
	"gameion/internal/store"
)

// BowlingDelays are the chained timer durations for one throw: ball
// travel, pin settling, and the pause before the next turn announce.
type BowlingDelays struct {
	Travel   time.Duration
	Settle   time.Duration
	NextTurn time.Duration
}

// DefaultBowlingDelays matches the client animation lengths.
func DefaultBowlingDelays() BowlingDelays {
	return BowlingDelays{
		Travel:   800 * time.Millisecond,
		Settle:   3 * time.Second,
		NextTurn: 1500 * time.Millisecond,
	}
}

// BowlingService is the authoritative turn engine for bowling. Unlike
// continuous input, discrete throw outcomes must agree on every screen,
// so the server owns the state and every phase change passes through
// the store before it is broadcast.
type BowlingService struct {
	rooms       store.RoomStore
	games       store.BowlingStore
	results     repository.ResultRepo
	broadcaster Broadcaster
	delays      BowlingDelays

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewBowlingService creates a new bowling service. results may be nil
// (archiving disabled).
func NewBowlingService(rooms store.RoomStore, games store.BowlingStore, results repository.ResultRepo) *BowlingService {
	return &BowlingService{
		rooms:   rooms,
		games:   games,
		results: results,
		delays:  DefaultBowlingDelays(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events.
func (s *BowlingService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetDelays overrides the timer durations (tests).
func (s *BowlingService) SetDelays(d BowlingDelays) {
	s.delays = d
}

// SetRand overrides the simulation randomness source (tests).
func (s *BowlingService) SetRand(r *rand.Rand) {
	s.rng = r
}

// InitGame creates the game state for a room that just started bowling
// and announces the first turn. Implements GameStarter.
func (s *BowlingService) InitGame(ctx context.Context, roomID string) error {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	playerIDs := make([]string, len(room.Players))
	playerNames := make([]string, len(room.Players))
	for i, p := range room.Players {
		playerIDs[i] = p.ID
		playerNames[i] = p.Name
	}

	state, err := s.games.Create(ctx, roomID, playerIDs, playerNames)
	if err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "bowling_state", state)
		s.broadcaster.ToRoom(room, "bowling_your_turn", map[string]interface{}{
			"playerId":   state.TurnOrder[0],
			"playerName": playerNames[0],
		})
	}
	return nil
}

// Throw accepts a throw from the current turn-holder. Anything out of
// turn or out of phase is silently dropped: those are expected races
// between fast taps and server state, not errors.
func (s *BowlingService) Throw(ctx context.Context, roomID, playerID string, speed, angle, spin float64) error {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil || room.Status != model.RoomStatusPlaying || room.SelectedGameID != model.GameBowling {
		return nil
	}

	game, err := s.games.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if game == nil || game.Phase != bowling.PhaseWaiting {
		return nil
	}
	if game.CurrentPlayerID() != playerID {
		return nil
	}

	game.Phase = bowling.PhaseRolling
	if err := s.games.Save(ctx, roomID, game); err != nil {
		return err
	}
	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "bowling_state", game)
	}

	// Ball travel time before the pin outcome is known. The callback
	// re-fetches everything: the room or game may be gone by then.
	time.AfterFunc(s.delays.Travel, func() {
		s.settleThrow(roomID, playerID, speed, angle, spin)
	})
	return nil
}

func (s *BowlingService) settleThrow(roomID, playerID string, speed, angle, spin float64) {
	ctx := context.Background()

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil || room == nil {
		return
	}
	game, err := s.games.Get(ctx, roomID)
	if err != nil || game == nil {
		return
	}

	game.Phase = bowling.PhaseSettling

	s.rngMu.Lock()
	result := bowling.SimulateThrow(s.rng, speed, angle, spin, game.StandingPins)
	s.rngMu.Unlock()

	if err := s.games.Save(ctx, roomID, game); err != nil {
		log.Printf("bowling: save settling state for room %s: %v", roomID, err)
		return
	}

	// Intermediate result so hosts can animate the knockdown before the
	// score is official.
	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "bowling_throw_result", map[string]interface{}{
			"playerId":    playerID,
			"pinsKnocked": result.PinsKnocked,
			"pinStates":   result.PinStates,
		})
	}

	time.AfterFunc(s.delays.Settle, func() {
		s.scoreThrow(roomID, result.PinsKnocked)
	})
}

func (s *BowlingService) scoreThrow(roomID string, pinsKnocked int) {
	ctx := context.Background()

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil || room == nil {
		return
	}
	game, err := s.games.Get(ctx, roomID)
	if err != nil || game == nil {
		return
	}

	gameOver := game.RecordThrow(pinsKnocked)
	if !gameOver {
		game.Phase = bowling.PhaseScoring
	}
	if err := s.games.Save(ctx, roomID, game); err != nil {
		log.Printf("bowling: save scored state for room %s: %v", roomID, err)
		return
	}

	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "bowling_state", game)
	}

	if gameOver {
		log.Printf("Bowling game finished in room %s", roomID)
		s.archive(ctx, roomID, game)
		return
	}

	time.AfterFunc(s.delays.NextTurn, func() {
		s.announceNextTurn(roomID)
	})
}

func (s *BowlingService) announceNextTurn(roomID string) {
	ctx := context.Background()

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil || room == nil {
		return
	}
	game, err := s.games.Get(ctx, roomID)
	if err != nil || game == nil {
		return
	}

	game.Phase = bowling.PhaseWaiting
	if err := s.games.Save(ctx, roomID, game); err != nil {
		log.Printf("bowling: save waiting state for room %s: %v", roomID, err)
		return
	}

	nextID := game.CurrentPlayerID()
	nextName := "Player"
	if p := room.FindPlayer(nextID); p != nil {
		nextName = p.Name
	}

	if s.broadcaster != nil {
		s.broadcaster.ToRoom(room, "bowling_state", game)
		s.broadcaster.ToRoom(room, "bowling_your_turn", map[string]interface{}{
			"playerId":   nextID,
			"playerName": nextName,
		})
	}
}

// archive persists the final scoreboard when a results repository is
// configured.
func (s *BowlingService) archive(ctx context.Context, roomID string, game *bowling.State) {
	if s.results == nil {
		return
	}

	standings := make([]model.PlayerStanding, len(game.Scores))
	for i, sc := range game.Scores {
		standings[i] = model.PlayerStanding{
			PlayerID:   sc.PlayerID,
			PlayerName: sc.PlayerName,
			Score:      sc.Total,
		}
	}

	result := &model.GameResult{
		RoomID:     roomID,
		GameID:     model.GameBowling,
		Standings:  standings,
		FinishedAt: time.Now(),
	}
	if err := s.results.Save(ctx, result); err != nil {
		log.Printf("bowling: archive result for room %s: %v", roomID, err)
	}
}
