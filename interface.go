package cfr

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Chance is the reserved player index returned by CurrentPlayer at states
// where the next transition is random rather than chosen by a player.
const Chance = -1

// An Action identifies one of the choices available at a decision point.
// Actions are plain values: they are compared structurally and may be used
// as map keys. Games should use short, stable labels.
type Action string

// GameState is the interface for one state in an extensive-form game tree.
// States are immutable from the solver's point of view: Apply returns a new
// state and must never modify its receiver.
//
// The solver trusts these contracts and performs no validation of its own;
// a state that violates them produces undefined results.
type GameState interface {
	// IsTerminal returns true if the game is over in this state.
	IsTerminal() bool
	// Utility returns the payoff for the given player. It is meaningful
	// only on terminal states; non-terminal states must return 0.
	Utility(player int) float64
	// CurrentPlayer returns the player to act, or Chance. It is defined
	// only on non-terminal states.
	CurrentPlayer() int
	// InfoSetKey identifies the acting player's information set. It must
	// be identical for, and only for, the histories that player cannot
	// distinguish. Defined only on non-terminal, non-chance states.
	InfoSetKey() string
	// LegalActions returns the ordered set of available actions. It must
	// be non-empty and identically ordered at every state of the same
	// information set.
	LegalActions() []Action
	// Apply returns the successor state reached by taking the given
	// action. Unknown actions fail with *InvalidActionError.
	Apply(a Action) (GameState, error)
	// ChanceProbabilities returns the transition distribution of a chance
	// state. It is non-empty and sums to 1 exactly when CurrentPlayer
	// returns Chance.
	ChanceProbabilities() map[Action]float64
	// Clone returns an independent copy of this state.
	Clone() GameState
}

// sortedActions returns the support of a chance distribution in
// lexicographic order. Map iteration order is randomized in Go; a fixed
// order keeps traversals, and therefore whole training runs, bit-for-bit
// reproducible.
func sortedActions(dist map[Action]float64) []Action {
	actions := maps.Keys(dist)
	slices.Sort(actions)
	return actions
}
