package cfr

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
)

// A Profile maps information set keys to average strategies, each aligned
// with the info set's Actions order. Keys missing from a Profile are
// treated as the uniform strategy by the evaluation helpers.
type Profile map[string][]float64

// Progress describes the trainer's state at an iteration boundary.
type Progress struct {
	// Iteration is the cumulative, 1-based iteration number.
	Iteration int
	// NumInfoSets is the current size of the accumulator table.
	NumInfoSets int
	// Checked reports whether a convergence check ran this iteration.
	// StrategyDelta is the total L1 strategy change it measured.
	Checked       bool
	StrategyDelta float64
}

// ProgressFunc observes training after each completed iteration.
type ProgressFunc func(Progress)

// TrainerOption configures a Trainer.
type TrainerOption func(*Trainer)

// WithDiscountParams sets the decay schedule used by the DiscountedCFR
// variant. Trainers default to DefaultDiscountParams.
func WithDiscountParams(p DiscountParams) TrainerOption {
	return func(t *Trainer) { t.discounts = p }
}

// WithConvergenceCheck enables early stopping: every interval iterations,
// Train sums the L1 distance between each info set's current average
// strategy and its value at the previous checkpoint, and stops once the
// total falls below epsilon. Without this option Train always runs all
// maxIterations iterations.
func WithConvergenceCheck(epsilon float64, interval int) TrainerOption {
	return func(t *Trainer) {
		t.epsilon = epsilon
		t.checkInterval = interval
	}
}

// WithProgress registers an observer invoked after every completed
// iteration, including the final one.
func WithProgress(fn ProgressFunc) TrainerOption {
	return func(t *Trainer) { t.progress = fn }
}

// Trainer owns the accumulator table for one game and drives CFR
// iterations over it: one full tree traversal per player per iteration,
// followed by the selected variant's post-iteration update.
//
// The zero value is not usable; construct Trainers with NewTrainer.
// Trainers are not safe for concurrent use.
type Trainer struct {
	numPlayers int
	variant    Variant
	discounts  DiscountParams

	epsilon       float64
	checkInterval int
	progress      ProgressFunc

	iter           int
	infoSets       map[string]*InfoSet
	prevStrategies Profile

	slicePool *floatSlicePool
}

// NewTrainer creates a Trainer for a game with numPlayers players using
// the given variant's update rule. NewTrainer panics if numPlayers < 2.
func NewTrainer(numPlayers int, variant Variant, opts ...TrainerOption) *Trainer {
	if numPlayers < 2 {
		panic(fmt.Sprintf("cfr: need at least 2 players, got %d", numPlayers))
	}

	t := &Trainer{
		numPlayers: numPlayers,
		variant:    variant,
		discounts:  DefaultDiscountParams(),
		infoSets:   make(map[string]*InfoSet),
		slicePool:  &floatSlicePool{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// NumPlayers returns the number of players the Trainer was created with.
func (t *Trainer) NumPlayers() int { return t.numPlayers }

// Variant returns the configured update variant.
func (t *Trainer) Variant() Variant { return t.variant }

// Iteration returns the cumulative number of completed iterations across
// all Train calls. Discount schedules are driven by this counter, so
// training may be resumed with further Train calls.
func (t *Trainer) Iteration() int { return t.iter }

// NumInfoSets returns the number of information sets discovered so far.
func (t *Trainer) NumInfoSets() int { return len(t.infoSets) }

// LookupInfoSet returns the accumulator stored under key, if any.
func (t *Trainer) LookupInfoSet(key string) (*InfoSet, bool) {
	is, ok := t.infoSets[key]
	return is, ok
}

// GetInfoSet returns the accumulator for the information set observed by
// state's acting player, creating it on first sight with the state's
// player and legal action set. Chance and terminal states have no acting
// player; they fail with *InvalidStateError.
func (t *Trainer) GetInfoSet(state GameState) (*InfoSet, error) {
	if state.IsTerminal() {
		return nil, &InvalidStateError{Op: "GetInfoSet", Reason: "terminal state has no acting player"}
	}
	if state.CurrentPlayer() == Chance {
		return nil, &InvalidStateError{Op: "GetInfoSet", Reason: "chance state has no acting player"}
	}

	key := state.InfoSetKey()
	is, ok := t.infoSets[key]
	if !ok {
		is = newInfoSet(key, state.CurrentPlayer(), state.LegalActions())
		t.infoSets[key] = is
		if len(t.infoSets)%100000 == 0 {
			glog.V(2).Infof("%d infosets", len(t.infoSets))
		}
	}

	return is, nil
}

// StrategyProfile returns the current average strategy of every known
// information set. This is the object that approaches a Nash equilibrium
// as training progresses.
func (t *Trainer) StrategyProfile() Profile {
	profile := make(Profile, len(t.infoSets))
	for key, is := range t.infoSets {
		profile[key] = is.GetAverageStrategy()
	}

	return profile
}

// Train runs up to maxIterations iterations of CFR from root and returns
// the number actually executed, which is smaller than maxIterations only
// when a convergence check stops early or ctx is cancelled. Each iteration
// clones root once per player and runs one full tree traversal with that
// player as the updating player, then applies the variant's update.
//
// Cancellation is honored between iterations only, so an iteration's
// traversals and post-iteration update are never left half applied. Errors
// surfaced by the game during a traversal abort the call; the trainer's
// accumulators are not usable afterwards.
func (t *Trainer) Train(ctx context.Context, root GameState, maxIterations int) (int, error) {
	for i := 1; i <= maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return i - 1, errors.Wrap(err, "cfr: training interrupted")
		}

		t.iter++
		for p := 0; p < t.numPlayers; p++ {
			reachProbs := t.slicePool.alloc(t.numPlayers)
			floats.AddConst(1, reachProbs)
			_, err := t.runHelper(root.Clone(), reachProbs, p)
			t.slicePool.free(reachProbs)
			if err != nil {
				return i - 1, errors.Wrapf(err, "cfr: iteration %d: traversal for player %d", t.iter, p)
			}
		}

		t.applyPostIterationUpdate()
		glog.V(2).Infof("iteration %d: %d infosets", t.iter, len(t.infoSets))

		checked, delta := false, 0.0
		if t.checkInterval > 0 && i%t.checkInterval == 0 {
			if t.prevStrategies != nil {
				checked = true
				delta = t.strategyChange()
				glog.V(1).Infof("iteration %d: total strategy change %.6g", t.iter, delta)
			} else {
				t.snapshotStrategies()
			}
		}

		if t.progress != nil {
			t.progress(Progress{
				Iteration:     t.iter,
				NumInfoSets:   len(t.infoSets),
				Checked:       checked,
				StrategyDelta: delta,
			})
		}

		if checked && delta < t.epsilon {
			glog.V(1).Infof("converged after %d iterations: strategy change %.6g < %g",
				t.iter, delta, t.epsilon)
			return i, nil
		}
	}

	return maxIterations, nil
}

// runHelper recursively evaluates state and returns its expected value for
// updatingPlayer under the current strategy profile, accumulating regret
// at every decision point owned by updatingPlayer. reachProbs[q] is the
// probability player q's strategy assigns to the actions on the path to
// state; chance probabilities are folded into the value recursion rather
// than into reachProbs.
func (t *Trainer) runHelper(state GameState, reachProbs []float64, updatingPlayer int) (float64, error) {
	if state.IsTerminal() {
		return state.Utility(updatingPlayer), nil
	}

	if state.CurrentPlayer() == Chance {
		return t.handleChanceNode(state, reachProbs, updatingPlayer)
	}

	return t.handlePlayerNode(state, reachProbs, updatingPlayer)
}

func (t *Trainer) handleChanceNode(state GameState, reachProbs []float64, updatingPlayer int) (float64, error) {
	dist := state.ChanceProbabilities()
	expectedValue := 0.0
	for _, a := range sortedActions(dist) {
		child, err := state.Apply(a)
		if err != nil {
			return 0, err
		}

		v, err := t.runHelper(child, reachProbs, updatingPlayer)
		if err != nil {
			return 0, err
		}

		expectedValue += dist[a] * v
	}

	return expectedValue, nil
}

func (t *Trainer) handlePlayerNode(state GameState, reachProbs []float64, updatingPlayer int) (float64, error) {
	player := state.CurrentPlayer()
	is, err := t.GetInfoSet(state)
	if err != nil {
		return 0, err
	}

	strategy := is.GetStrategy(reachProbs[player])

	actionValues := t.slicePool.alloc(is.NumActions())
	defer t.slicePool.free(actionValues)
	childReach := t.slicePool.alloc(len(reachProbs))
	defer t.slicePool.free(childReach)

	expectedValue := 0.0
	for i, a := range is.actions {
		child, err := state.Apply(a)
		if err != nil {
			return 0, err
		}

		copy(childReach, reachProbs)
		childReach[player] *= strategy[i]
		v, err := t.runHelper(child, childReach, updatingPlayer)
		if err != nil {
			return 0, err
		}

		actionValues[i] = v
		expectedValue += strategy[i] * v
	}

	if player == updatingPlayer {
		cfReach := counterFactualProb(player, reachProbs)
		for i, v := range actionValues {
			is.addRegret(i, cfReach*(v-expectedValue))
		}
	}

	return expectedValue, nil
}

// counterFactualProb is the probability of reaching this node if player
// had tried to reach it: the product of every other player's reach
// probability. Chance's contribution is already folded into the value
// recursion at chance nodes and is deliberately not part of this product.
func counterFactualProb(player int, reachProbs []float64) float64 {
	p := 1.0
	for q, reach := range reachProbs {
		if q != player {
			p *= reach
		}
	}

	return p
}

func (t *Trainer) applyPostIterationUpdate() {
	switch t.variant {
	case Vanilla:
	case CFRPlus:
		for _, is := range t.infoSets {
			is.FloorRegrets()
		}
	case LinearCFR:
		d := float64(t.iter) / float64(t.iter+1)
		for _, is := range t.infoSets {
			is.DiscountRegrets(d, d)
			is.DiscountStrategy(d)
		}
	case DiscountedCFR:
		pos, neg, strat := t.discounts.DiscountFactors(t.iter)
		for _, is := range t.infoSets {
			is.DiscountRegrets(pos, neg)
			is.DiscountStrategy(strat)
		}
	default:
		panic(fmt.Sprintf("cfr: unknown variant %v", t.variant))
	}
}

// strategyChange sums the L1 distance between each info set's current and
// previously snapshotted average strategy, then refreshes the snapshot.
// New info sets with no snapshot yet contribute nothing this round. Keys
// are visited in sorted order so the floating-point total is reproducible
// run to run.
func (t *Trainer) strategyChange() float64 {
	perPlayer := make([]float64, t.numPlayers)
	keys := maps.Keys(t.infoSets)
	slices.Sort(keys)
	for _, key := range keys {
		is := t.infoSets[key]
		current := is.GetAverageStrategy()
		if prev, ok := t.prevStrategies[key]; ok {
			perPlayer[is.player] += floats.Distance(current, prev, 1)
		}
		t.prevStrategies[key] = current
	}

	glog.V(2).Infof("per-player strategy change: %v", perPlayer)
	return floats.Sum(perPlayer)
}

func (t *Trainer) snapshotStrategies() {
	t.prevStrategies = make(Profile, len(t.infoSets))
	for key, is := range t.infoSets {
		t.prevStrategies[key] = is.GetAverageStrategy()
	}
}
