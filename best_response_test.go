package cfr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpectedValue(t *testing.T) {
	root := &penniesState{}

	profile := Profile{
		"p0": {0.6, 0.4},
		"p1": {0.5, 0.5},
	}
	ev0, err := ExpectedValue(root, 0, profile)
	require.NoError(t, err)
	require.InDelta(t, 0.3, ev0, 1e-12)

	// Against a pure heads player 1, heads wins 2 and tails loses 1.
	profile["p1"] = []float64{1, 0}
	ev0, err = ExpectedValue(root, 0, profile)
	require.NoError(t, err)
	require.InDelta(t, 0.8, ev0, 1e-12)

	ev1, err := ExpectedValue(root, 1, profile)
	require.NoError(t, err)
	require.InDelta(t, -0.8, ev1, 1e-12, "the game is zero-sum")
}

func TestBestResponseValue(t *testing.T) {
	root := &penniesState{}
	profile := Profile{
		"p0": {0.6, 0.4},
		"p1": {0.5, 0.5},
	}

	// Player 1 cannot distinguish the two histories behind its single
	// info set, so the response is one action for both: tails, worth
	// 0.6*(+1) + 0.4*(-1) = 0.2. Responding per history would claim 1.0
	// by playing tails against heads and heads against tails.
	br1, err := BestResponseValue(root, 1, profile)
	require.NoError(t, err)
	require.InDelta(t, 0.2, br1, 1e-12)

	// Player 0's best response to uniform is pure heads.
	br0, err := BestResponseValue(root, 0, profile)
	require.NoError(t, err)
	require.InDelta(t, 0.5, br0, 1e-12)
}

func TestNashConvAndExploitability(t *testing.T) {
	root := &penniesState{}
	profile := Profile{
		"p0": {0.6, 0.4},
		"p1": {0.5, 0.5},
	}

	// Player 0 gains 0.5-0.3 by deviating, player 1 gains 0.2-(-0.3).
	nc, err := NashConv(root, 2, profile)
	require.NoError(t, err)
	require.InDelta(t, 0.7, nc, 1e-12)

	exp, err := Exploitability(root, 2, profile)
	require.NoError(t, err)
	require.InDelta(t, 0.35, exp, 1e-12)
}

func TestNashConv_ZeroAtEquilibrium(t *testing.T) {
	root := &penniesState{}
	profile := Profile{
		"p0": {0.4, 0.6},
		"p1": {0.4, 0.6},
	}

	nc, err := NashConv(root, 2, profile)
	require.NoError(t, err)
	require.InDelta(t, 0.0, nc, 1e-9)

	ev0, err := ExpectedValue(root, 0, profile)
	require.NoError(t, err)
	require.InDelta(t, 0.2, ev0, 1e-9, "equilibrium value for player 0")
}

// Keys missing from the profile are read as uniform.
func TestBestResponse_UniformFallback(t *testing.T) {
	root := &penniesState{}

	nc, err := NashConv(root, 2, Profile{})
	require.NoError(t, err)
	require.InDelta(t, 0.5, nc, 1e-12, "uniform play gives up 0.25 per player")
}

func TestExploitability_DecreasesWithTraining(t *testing.T) {
	root := &penniesState{}

	trainer := NewTrainer(2, Vanilla)
	_, err := trainer.Train(context.Background(), root, 5)
	require.NoError(t, err)
	early, err := Exploitability(root, 2, trainer.StrategyProfile())
	require.NoError(t, err)

	_, err = trainer.Train(context.Background(), root, 5000)
	require.NoError(t, err)
	late, err := Exploitability(root, 2, trainer.StrategyProfile())
	require.NoError(t, err)

	require.GreaterOrEqual(t, late, 0.0, "exploitability is nonnegative")
	require.Less(t, late, 0.05)
	require.Less(t, late, early)
}
