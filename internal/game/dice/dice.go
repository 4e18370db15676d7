// Package dice provides the seeded randomness abstraction and roll-result
// types for the skirmish combat-rules core. Every roll made anywhere in the
// engine flows through a Source so that a fixed seed reproduces the exact
// same sequence of results across runs and process restarts.
package dice

import "fmt"

// RollMode selects how multiple d20 draws are combined.
type RollMode int

const (
	ModeNormal RollMode = iota
	ModeAdvantage
	ModeDisadvantage
)

// String returns a human-readable mode label.
func (m RollMode) String() string {
	switch m {
	case ModeAdvantage:
		return "advantage"
	case ModeDisadvantage:
		return "disadvantage"
	default:
		return "normal"
	}
}

// RollResult is the immutable audit record of one die-rolling operation.
// It is serialized verbatim into the host's event log, so replay never
// re-rolls: the recorded values are authoritative.
//
// Invariant: len(Rolls) >= 1 and every raw roll lies in [1, Sides].
type RollResult struct {
	Sides    int      `json:"sides"`
	Rolls    []int    `json:"rolls"` // raw values in draw order
	Modifier int      `json:"modifier"`
	Mode     RollMode `json:"mode"`
}

// NaturalTotal returns the sum of all raw rolls, before the modifier.
func (r RollResult) NaturalTotal() int {
	total := 0
	for _, v := range r.Rolls {
		total += v
	}
	return total
}

// Selected returns the value the roll mode picks from the raw rolls:
// the maximum under advantage, the minimum under disadvantage, and the
// natural total otherwise.
//
// Precondition: len(r.Rolls) >= 1.
func (r RollResult) Selected() int {
	if len(r.Rolls) == 0 {
		panic("dice: RollResult.Selected on empty roll list")
	}
	switch r.Mode {
	case ModeAdvantage:
		max := r.Rolls[0]
		for _, v := range r.Rolls[1:] {
			if v > max {
				max = v
			}
		}
		return max
	case ModeDisadvantage:
		min := r.Rolls[0]
		for _, v := range r.Rolls[1:] {
			if v < min {
				min = v
			}
		}
		return min
	default:
		return r.NaturalTotal()
	}
}

// Total returns the final roll value: selected value plus modifier.
func (r RollResult) Total() int {
	return r.Selected() + r.Modifier
}

// String returns an audit string such as "d20 [14 3] adv +2 = 16".
func (r RollResult) String() string {
	mode := ""
	switch r.Mode {
	case ModeAdvantage:
		mode = " adv"
	case ModeDisadvantage:
		mode = " dis"
	}
	return fmt.Sprintf("d%d %v%s %+d = %d", r.Sides, r.Rolls, mode, r.Modifier, r.Total())
}
