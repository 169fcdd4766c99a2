package cfr

import "math"

// profileStrategy returns the profile's strategy for state's information
// set, or the uniform strategy when the profile has no entry for it.
func profileStrategy(profile Profile, state GameState, nActions int) []float64 {
	if strategy, ok := profile[state.InfoSetKey()]; ok {
		return strategy
	}

	strategy := make([]float64, nActions)
	uniformDist(strategy)
	return strategy
}

// ExpectedValue returns player's expected utility when every player
// follows profile from state onward.
func ExpectedValue(state GameState, player int, profile Profile) (float64, error) {
	if state.IsTerminal() {
		return state.Utility(player), nil
	}

	if state.CurrentPlayer() == Chance {
		dist := state.ChanceProbabilities()
		ev := 0.0
		for _, a := range sortedActions(dist) {
			child, err := state.Apply(a)
			if err != nil {
				return 0, err
			}

			v, err := ExpectedValue(child, player, profile)
			if err != nil {
				return 0, err
			}

			ev += dist[a] * v
		}

		return ev, nil
	}

	actions := state.LegalActions()
	strategy := profileStrategy(profile, state, len(actions))
	ev := 0.0
	for i, a := range actions {
		child, err := state.Apply(a)
		if err != nil {
			return 0, err
		}

		v, err := ExpectedValue(child, player, profile)
		if err != nil {
			return 0, err
		}

		ev += strategy[i] * v
	}

	return ev, nil
}

// weightedState is a history together with the probability that chance and
// the non-responding players reach it.
type weightedState struct {
	state GameState
	reach float64
}

// BestResponseValue returns the value player achieves by best-responding
// to profile while every other player follows it. The responder is held to
// one choice per information set: histories the responder cannot
// distinguish are grouped by key and share a single maximizing action,
// which is exact for games with perfect recall.
func BestResponseValue(root GameState, player int, profile Profile) (float64, error) {
	return bestResponseValue([]weightedState{{root, 1}}, player, profile)
}

// bestResponseValue evaluates a front of weighted histories: terminal
// utilities are collected immediately, chance and opponent moves are
// expanded under profile, and the responder's decision points are grouped
// by information set before choosing the action that maximizes each
// group's total value.
func bestResponseValue(front []weightedState, player int, profile Profile) (float64, error) {
	total := 0.0
	var order []string
	groups := make(map[string][]weightedState)

	var expand func(ws weightedState) error
	expand = func(ws weightedState) error {
		state := ws.state
		if state.IsTerminal() {
			total += ws.reach * state.Utility(player)
			return nil
		}

		if state.CurrentPlayer() == Chance {
			dist := state.ChanceProbabilities()
			for _, a := range sortedActions(dist) {
				child, err := state.Apply(a)
				if err != nil {
					return err
				}

				if err := expand(weightedState{child, ws.reach * dist[a]}); err != nil {
					return err
				}
			}

			return nil
		}

		if state.CurrentPlayer() == player {
			key := state.InfoSetKey()
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], ws)
			return nil
		}

		actions := state.LegalActions()
		strategy := profileStrategy(profile, state, len(actions))
		for i, a := range actions {
			child, err := state.Apply(a)
			if err != nil {
				return err
			}

			if err := expand(weightedState{child, ws.reach * strategy[i]}); err != nil {
				return err
			}
		}

		return nil
	}

	for _, ws := range front {
		if err := expand(ws); err != nil {
			return 0, err
		}
	}

	for _, key := range order {
		group := groups[key]
		actions := group[0].state.LegalActions()
		best := math.Inf(-1)
		for _, a := range actions {
			next := make([]weightedState, len(group))
			for j, ws := range group {
				child, err := ws.state.Apply(a)
				if err != nil {
					return 0, err
				}

				next[j] = weightedState{child, ws.reach}
			}

			v, err := bestResponseValue(next, player, profile)
			if err != nil {
				return 0, err
			}

			if v > best {
				best = v
			}
		}

		total += best
	}

	return total, nil
}

// NashConv returns the total gain available across players from deviating
// to a best response against profile. It is zero exactly when profile is a
// Nash equilibrium.
func NashConv(root GameState, numPlayers int, profile Profile) (float64, error) {
	total := 0.0
	for p := 0; p < numPlayers; p++ {
		br, err := BestResponseValue(root, p, profile)
		if err != nil {
			return 0, err
		}

		ev, err := ExpectedValue(root, p, profile)
		if err != nil {
			return 0, err
		}

		total += br - ev
	}

	return total, nil
}

// Exploitability returns NashConv averaged over the players: how much the
// average player could gain by deviating. For two-player zero-sum games
// this is the standard distance-to-equilibrium metric.
func Exploitability(root GameState, numPlayers int, profile Profile) (float64, error) {
	nc, err := NashConv(root, numPlayers, profile)
	if err != nil {
		return 0, err
	}

	return nc / float64(numPlayers), nil
}
