// Package kuhn implements an extensive-form game tree for Kuhn Poker, a
// two-player three-card betting game whose equilibria are known in closed
// form. It is the standard correctness benchmark for CFR implementations.
package kuhn

import (
	"fmt"

	"github.com/gametheorylab/cfr"
)

// Card is the private card held by one of the players.
type Card int

const (
	Jack Card = iota
	Queen
	King
)

var cardStr = [...]string{"J", "Q", "K"}

// String implements fmt.Stringer.
func (c Card) String() string {
	return cardStr[c]
}

// The two betting actions. The history string accumulates one letter per
// action taken.
const (
	Pass = cfr.Action("p")
	Bet  = cfr.Action("b")
)

var bettingActions = []cfr.Action{Pass, Bet}

// deals enumerates the six equally likely ways to give each player one of
// the three cards. Each label names the cards in player order.
var deals = map[cfr.Action][2]Card{
	"JQ": {Jack, Queen},
	"JK": {Jack, King},
	"QJ": {Queen, Jack},
	"QK": {Queen, King},
	"KJ": {King, Jack},
	"KQ": {King, Queen},
}

// PokerState implements cfr.GameState for Kuhn Poker. The root is a single
// chance node that deals both cards at once; betting then alternates
// starting with player 0. Terminal histories are pp, bp, bb, pbp and pbb.
type PokerState struct {
	dealt   bool
	cards   [2]Card
	history string
}

// NewGame returns the root state, prior to the deal.
func NewGame() *PokerState {
	return &PokerState{}
}

// String implements fmt.Stringer.
func (s *PokerState) String() string {
	if !s.dealt {
		return "predeal"
	}

	return fmt.Sprintf("%v%v:%s", s.cards[0], s.cards[1], s.history)
}

// IsTerminal implements cfr.GameState.
func (s *PokerState) IsTerminal() bool {
	switch s.history {
	case "pp", "bp", "bb", "pbp", "pbb":
		return true
	}

	return false
}

// Utility implements cfr.GameState. Non-terminal states are worth 0.
func (s *PokerState) Utility(player int) float64 {
	var p0 float64
	switch s.history {
	case "pp":
		// Showdown with no bet, 1 chip at stake.
		p0 = showdown(s.cards, 1)
	case "bp":
		// Player 1 folded to the bet.
		p0 = 1
	case "pbp":
		// Player 0 folded to the bet.
		p0 = -1
	case "bb", "pbb":
		// Showdown with a called bet, 2 chips at stake.
		p0 = showdown(s.cards, 2)
	default:
		return 0
	}

	if player == 0 {
		return p0
	}

	return -p0
}

func showdown(cards [2]Card, stake float64) float64 {
	if cards[0] > cards[1] {
		return stake
	}

	return -stake
}

// CurrentPlayer implements cfr.GameState.
func (s *PokerState) CurrentPlayer() int {
	if !s.dealt {
		return cfr.Chance
	}

	switch s.history {
	case "", "pb":
		return 0
	case "p", "b":
		return 1
	}

	return cfr.Chance
}

// InfoSetKey implements cfr.GameState: the acting player's private card
// plus the public betting history.
func (s *PokerState) InfoSetKey() string {
	return s.cards[s.CurrentPlayer()].String() + ":" + s.history
}

// LegalActions implements cfr.GameState.
func (s *PokerState) LegalActions() []cfr.Action {
	if !s.dealt {
		return nil
	}

	return bettingActions
}

// Apply implements cfr.GameState.
func (s *PokerState) Apply(a cfr.Action) (cfr.GameState, error) {
	if !s.dealt {
		cards, ok := deals[a]
		if !ok {
			return nil, &cfr.InvalidActionError{Action: a, State: s.String()}
		}

		return &PokerState{dealt: true, cards: cards}, nil
	}

	switch a {
	case Pass, Bet:
		return &PokerState{dealt: true, cards: s.cards, history: s.history + string(a)}, nil
	}

	return nil, &cfr.InvalidActionError{Action: a, State: s.String()}
}

// ChanceProbabilities implements cfr.GameState.
func (s *PokerState) ChanceProbabilities() map[cfr.Action]float64 {
	if s.dealt {
		return nil
	}

	dist := make(map[cfr.Action]float64, len(deals))
	for deal := range deals {
		dist[deal] = 1.0 / float64(len(deals))
	}

	return dist
}

// Clone implements cfr.GameState.
func (s *PokerState) Clone() cfr.GameState {
	clone := *s
	return &clone
}
