package guild

import "math"

// RoundConfig is the state machine and probability configuration for
// the guild's round simulation. CurrentRound 0 means not started;
// CurrentRound > TotalRounds means completed and awaiting reset.
type RoundConfig struct {
	CurrentRound int `json:"current_round"`
	TotalRounds  int `json:"total_rounds"`

	// Good-outcome probability anchors, integer percentages.
	StartProbability int `json:"round_one_probability"`
	MidProbability   int `json:"mid_round_probability"`
	EndProbability   int `json:"final_round_probability"`

	StartingCurrency int            `json:"starting_currency"`
	DefaultItems     map[string]int `json:"default_items,omitempty"`
}

// Started reports whether the simulation has begun.
func (rc RoundConfig) Started() bool {
	return rc.CurrentRound > 0
}

// Completed reports whether all rounds have been resolved.
func (rc RoundConfig) Completed() bool {
	return rc.TotalRounds > 0 && rc.CurrentRound > rc.TotalRounds
}

// GoodProbability returns the good-outcome probability for a round as
// an integer percentage, interpolating piecewise-linearly across the
// three configured anchors. The short-game cases are handled
// distinctly: one round uses the final anchor only, two rounds use the
// start and end anchors, three rounds hit all three anchors exactly.
// Longer games interpolate start-to-mid before the midpoint round and
// mid-to-end after it.
func (rc RoundConfig) GoodProbability(round int) int {
	n := rc.TotalRounds
	if round < 1 {
		round = 1
	}
	if round > n {
		round = n
	}

	switch {
	case n <= 1:
		return rc.EndProbability
	case n == 2:
		if round == 1 {
			return rc.StartProbability
		}
		return rc.EndProbability
	case n == 3:
		switch round {
		case 1:
			return rc.StartProbability
		case 2:
			return rc.MidProbability
		default:
			return rc.EndProbability
		}
	}

	mid := (n + 1) / 2
	switch {
	case round <= 1:
		return rc.StartProbability
	case round == mid:
		return rc.MidProbability
	case round >= n:
		return rc.EndProbability
	case round < mid:
		frac := float64(round-1) / float64(mid-1)
		return int(math.Round(float64(rc.StartProbability) + frac*float64(rc.MidProbability-rc.StartProbability)))
	default:
		frac := float64(round-mid) / float64(n-mid)
		return int(math.Round(float64(rc.MidProbability) + frac*float64(rc.EndProbability-rc.MidProbability)))
	}
}

// AttackRecord is a scheduled, unresolved attack. Records are created
// at schedule time and consumed and deleted at round resolution.
type AttackRecord struct {
	ID            string `json:"id"`
	Attacker      string `json:"attacker"`
	Defender      string `json:"defender"`
	ItemID        string `json:"item_id"`
	Quantity      int    `json:"quantity"`
	PerUnitDamage int    `json:"per_unit_damage"`
	TotalDamage   int    `json:"total_damage"`
	Round         int    `json:"round"`
}

// maxPlausibleQuantity guards resolution against historically corrupted
// queue entries.
const maxPlausibleQuantity = 10000

// Valid filters structurally broken attack records out of resolution.
func (a AttackRecord) Valid() bool {
	if a.Attacker == "" || a.Defender == "" || a.ItemID == "" {
		return false
	}
	if a.Quantity <= 0 || a.Quantity > maxPlausibleQuantity {
		return false
	}
	if a.TotalDamage < 0 || a.PerUnitDamage < 0 {
		return false
	}
	return true
}
