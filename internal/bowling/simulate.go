package bowling

import "math/rand"

// hitOrder visits pins center-out: the ball reaches the head pin and
// the middle of the rack before the corners.
var hitOrder = [TotalPins]int{0, 4, 1, 2, 7, 8, 3, 5, 6, 9}

// ThrowResult is the outcome of a simulated throw.
type ThrowResult struct {
	PinsKnocked int    `json:"pinsKnocked"`
	PinStates   []bool `json:"pinStates"`
}

// SimulateThrow computes a pin outcome from throw parameters. Speed has
// a sweet spot around 70% of maximum, angle deviation from center costs
// accuracy linearly, and spin helps a little before it hurts. Each
// standing pin then falls on an independent trial whose probability
// decays as more pins go down in the same throw. Outcomes are
// deliberately random, bounded by the standing-pin count.
func SimulateThrow(r *rand.Rand, speed, angle, spin float64, standingPins []bool) ThrowResult {
	newStates := append([]bool(nil), standingPins...)

	pinsUp := 0
	for _, up := range standingPins {
		if up {
			pinsUp++
		}
	}
	if pinsUp == 0 {
		return ThrowResult{PinsKnocked: 0, PinStates: newStates}
	}

	normalized := speed / MaxBallSpeed
	if normalized > 1 {
		normalized = 1
	}

	speedFactor := 0.3
	if normalized > 0.3 {
		speedFactor = 1 - abs(normalized-0.7)*0.5
	}

	anglePenalty := abs(angle) * 0.3
	spinFactor := 1 - abs(spin)*0.15 + min(abs(spin), 0.3)*0.1

	hitProb := speedFactor*spinFactor - anglePenalty
	if hitProb < 0.1 {
		hitProb = 0.1
	}
	if hitProb > 0.95 {
		hitProb = 0.95
	}

	knocked := 0
	for _, idx := range hitOrder {
		if !newStates[idx] {
			continue
		}
		pinProb := hitProb * (1 - float64(knocked)*0.06)
		if r.Float64() < pinProb {
			newStates[idx] = false
			knocked++
		}
	}

	return ThrowResult{PinsKnocked: knocked, PinStates: newStates}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
