package cfr

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// InfoSet accumulates the cumulative regret and cumulative strategy weight
// for a single information set. The owning player and the ordered action
// set are captured when the accumulator is first created and never change
// afterwards.
//
// InfoSets are created and owned by a Trainer; they are not safe for
// concurrent use.
type InfoSet struct {
	key     string
	player  int
	actions []Action
	index   map[Action]int

	regretSum    []float64
	strategySum  []float64
	reachProbSum float64
}

func newInfoSet(key string, player int, actions []Action) *InfoSet {
	captured := make([]Action, len(actions))
	copy(captured, actions)
	index := make(map[Action]int, len(captured))
	for i, a := range captured {
		index[a] = i
	}

	return &InfoSet{
		key:         key,
		player:      player,
		actions:     captured,
		index:       index,
		regretSum:   make([]float64, len(captured)),
		strategySum: make([]float64, len(captured)),
	}
}

// Key returns the information set identifier.
func (is *InfoSet) Key() string { return is.key }

// Player returns the player who acts at this information set.
func (is *InfoSet) Player() int { return is.player }

// NumActions returns the number of actions captured at creation.
func (is *InfoSet) NumActions() int { return len(is.actions) }

// Actions returns a copy of the ordered action set. Slices returned by
// GetStrategy, GetAverageStrategy, and Regrets align with this order.
func (is *InfoSet) Actions() []Action {
	actions := make([]Action, len(is.actions))
	copy(actions, is.actions)
	return actions
}

// Regrets returns a copy of the cumulative regret for each action.
func (is *InfoSet) Regrets() []float64 {
	regrets := make([]float64, len(is.regretSum))
	copy(regrets, is.regretSum)
	return regrets
}

// ReachProbSum returns the total reach weight accumulated by GetStrategy.
// It is diagnostic only and plays no part in strategy derivation.
func (is *InfoSet) ReachProbSum() float64 { return is.reachProbSum }

// GetStrategy derives the current strategy by regret matching: each action
// is played proportionally to the positive part of its cumulative regret,
// or uniformly when no regret is positive.
//
// As a side effect, each action's cumulative strategy weight grows by
// reachWeight times its probability. Weighting each visit by the acting
// player's own reach probability is what makes the average strategy, not
// the current one, converge to an equilibrium.
func (is *InfoSet) GetStrategy(reachWeight float64) []float64 {
	strategy := make([]float64, len(is.regretSum))
	copy(strategy, is.regretSum)
	makePositive(strategy)
	total := floats.Sum(strategy)
	if total > 0 {
		floats.Scale(1/total, strategy)
	} else {
		uniformDist(strategy)
	}

	floats.AddScaled(is.strategySum, reachWeight, strategy)
	is.reachProbSum += reachWeight
	return strategy
}

// GetAverageStrategy returns the strategy averaged over all iterations so
// far, the quantity that approaches a Nash equilibrium. It is uniform when
// no weight has accumulated, and does not modify the accumulator.
func (is *InfoSet) GetAverageStrategy() []float64 {
	avg := make([]float64, len(is.strategySum))
	total := floats.Sum(is.strategySum)
	if total > 0 {
		floats.ScaleTo(avg, 1/total, is.strategySum)
	} else {
		uniformDist(avg)
	}

	return avg
}

// AddRegret adds amount to the given action's cumulative regret. The sum
// is unbounded in both directions. AddRegret panics if the action is not
// part of the captured action set.
func (is *InfoSet) AddRegret(a Action, amount float64) {
	i, ok := is.index[a]
	if !ok {
		panic(fmt.Errorf("cfr: action %q is not in info set %q", a, is.key))
	}

	is.regretSum[i] += amount
}

// addRegret is the index-addressed form used by the traversal.
func (is *InfoSet) addRegret(i int, amount float64) {
	is.regretSum[i] += amount
}

// FloorRegrets clamps every negative cumulative regret to zero.
func (is *InfoSet) FloorRegrets() {
	makePositive(is.regretSum)
}

// DiscountRegrets multiplies each action's cumulative regret by pos if it
// is currently positive, and by neg otherwise.
func (is *InfoSet) DiscountRegrets(pos, neg float64) {
	for i, r := range is.regretSum {
		if r > 0 {
			is.regretSum[i] = r * pos
		} else {
			is.regretSum[i] = r * neg
		}
	}
}

// DiscountStrategy multiplies every cumulative strategy weight, and the
// diagnostic reach counter, by f.
func (is *InfoSet) DiscountStrategy(f float64) {
	floats.Scale(f, is.strategySum)
	is.reachProbSum *= f
}

func uniformDist(v []float64) {
	p := 1.0 / float64(len(v))
	for i := range v {
		v[i] = p
	}
}

func makePositive(v []float64) {
	for i := range v {
		if v[i] < 0 {
			v[i] = 0
		}
	}
}
