package bowling

// Phase is the discrete state of the turn-resolution machine.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseRolling  Phase = "rolling"
	PhaseSettling Phase = "settling"
	PhaseScoring  Phase = "scoring"
	PhaseFinished Phase = "finished"
)

const (
	TotalFrames  = 10
	TotalPins    = 10
	MaxBallSpeed = 12.0
)

// Frame holds the throws of one scoring unit. Score stays nil until
// enough future throws exist to resolve it.
type Frame struct {
	Throws []int `json:"throws"`
	Score  *int  `json:"score"`
}

// PlayerScore is one player's scorecard.
type PlayerScore struct {
	PlayerID   string  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	Frames     []Frame `json:"frames"`
	Total      int     `json:"totalScore"`
}

// State is the authoritative bowling game state for one room.
type State struct {
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`
	CurrentFrame       int           `json:"currentFrame"`
	CurrentThrow       int           `json:"currentThrowInFrame"`
	Scores             []PlayerScore `json:"scores"`
	TurnOrder          []string      `json:"turnOrder"`
	Phase              Phase         `json:"phase"`
	StandingPins       []bool        `json:"standingPins"`
}

// NewState creates the initial game state for the given players, in
// turn order.
func NewState(playerIDs, playerNames []string) *State {
	scores := make([]PlayerScore, len(playerIDs))
	for i, id := range playerIDs {
		frames := make([]Frame, TotalFrames)
		for f := range frames {
			frames[f].Throws = []int{}
		}
		scores[i] = PlayerScore{
			PlayerID:   id,
			PlayerName: playerNames[i],
			Frames:     frames,
		}
	}
	return &State{
		Scores:       scores,
		TurnOrder:    append([]string(nil), playerIDs...),
		Phase:        PhaseWaiting,
		StandingPins: allStanding(),
	}
}

func allStanding() []bool {
	pins := make([]bool, TotalPins)
	for i := range pins {
		pins[i] = true
	}
	return pins
}

// CurrentPlayerID returns the id of the player whose turn it is.
func (s *State) CurrentPlayerID() string {
	if s.CurrentPlayerIndex >= len(s.TurnOrder) {
		return ""
	}
	return s.TurnOrder[s.CurrentPlayerIndex]
}

// StandingCount returns how many pins are still up.
func (s *State) StandingCount() int {
	n := 0
	for _, up := range s.StandingPins {
		if up {
			n++
		}
	}
	return n
}

// RecordThrow commits a throw for the current player, rescore all
// frames, and advances turn/frame. Returns true when the game is over.
// On game over Phase becomes finished; otherwise it returns to waiting
// (callers showing an intermediate scoring phase override it before
// persisting).
func (s *State) RecordThrow(pinsKnocked int) (gameOver bool) {
	player := &s.Scores[s.CurrentPlayerIndex]
	frame := &player.Frames[s.CurrentFrame]

	frame.Throws = append(frame.Throws, pinsKnocked)

	pinsStillUp := s.StandingCount() - pinsKnocked
	knocked := 0
	for i := 0; i < TotalPins && knocked < pinsKnocked; i++ {
		if s.StandingPins[i] {
			s.StandingPins[i] = false
			knocked++
		}
	}

	rescore(s.Scores)

	if frameComplete(*frame, s.CurrentFrame) {
		s.CurrentPlayerIndex++

		if s.CurrentPlayerIndex >= len(s.TurnOrder) {
			s.CurrentPlayerIndex = 0
			s.CurrentFrame++

			if s.CurrentFrame >= TotalFrames {
				s.Phase = PhaseFinished
				rescore(s.Scores)
				return true
			}
		}

		s.StandingPins = allStanding()
		s.CurrentThrow = 0
	} else {
		s.CurrentThrow++

		// Tenth frame: a strike clears the lane, so reset for the
		// bonus throws.
		if s.CurrentFrame == TotalFrames-1 && pinsStillUp == 0 {
			s.StandingPins = allStanding()
		}
	}

	s.Phase = PhaseWaiting
	return false
}

// ResetPins restores all ten pins.
func (s *State) ResetPins() {
	s.StandingPins = allStanding()
}

func isStrike(f Frame) bool {
	return len(f.Throws) > 0 && f.Throws[0] == TotalPins
}

func isSpare(f Frame) bool {
	return len(f.Throws) >= 2 && f.Throws[0]+f.Throws[1] == TotalPins
}

func tenthFrameComplete(f Frame) bool {
	switch {
	case len(f.Throws) >= 3:
		return true
	case len(f.Throws) == 2:
		if f.Throws[0] == TotalPins {
			return false // strike, third throw pending
		}
		if f.Throws[0]+f.Throws[1] >= TotalPins {
			return false // spare, third throw pending
		}
		return true
	default:
		return false
	}
}

func frameComplete(f Frame, frameIndex int) bool {
	if frameIndex < TotalFrames-1 {
		return isStrike(f) || len(f.Throws) >= 2
	}
	return tenthFrameComplete(f)
}

// nextThrows collects up to count throw values recorded after
// afterFrame, spanning into later frames.
func nextThrows(frames []Frame, afterFrame, count int) []int {
	throws := make([]int, 0, count)
	for f := afterFrame + 1; f < len(frames) && len(throws) < count; f++ {
		for _, t := range frames[f].Throws {
			throws = append(throws, t)
			if len(throws) >= count {
				break
			}
		}
	}
	return throws
}

// rescore recomputes every frame score from scratch. A frame resolves
// only once its bonus throws exist; the running total therefore lags
// behind play, which is correct ten-pin scoring.
func rescore(scores []PlayerScore) {
	for p := range scores {
		player := &scores[p]
		total := 0
		for f := 0; f < TotalFrames; f++ {
			frame := &player.Frames[f]
			if len(frame.Throws) == 0 {
				frame.Score = nil
				continue
			}

			if f < TotalFrames-1 {
				switch {
				case isStrike(*frame):
					next := nextThrows(player.Frames, f, 2)
					if len(next) >= 2 {
						total += TotalPins + next[0] + next[1]
						frame.Score = intPtr(total)
					} else {
						frame.Score = nil
					}
				case isSpare(*frame):
					next := nextThrows(player.Frames, f, 1)
					if len(next) >= 1 {
						total += TotalPins + next[0]
						frame.Score = intPtr(total)
					} else {
						frame.Score = nil
					}
				case len(frame.Throws) >= 2:
					total += frame.Throws[0] + frame.Throws[1]
					frame.Score = intPtr(total)
				default:
					frame.Score = nil
				}
			} else {
				sum := 0
				for _, t := range frame.Throws {
					sum += t
				}
				if tenthFrameComplete(*frame) {
					total += sum
					frame.Score = intPtr(total)
				} else {
					frame.Score = nil
				}
			}
		}
		player.Total = total
	}
}

func intPtr(v int) *int { return &v }
