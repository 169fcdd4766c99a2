package cfr

// Visit calls visitor for root and every state reachable from it, parents
// before children. Chance branches are explored in lexicographic action
// order so that visit order is deterministic.
func Visit(root GameState, visitor func(GameState)) error {
	visitor(root)
	if root.IsTerminal() {
		return nil
	}

	var actions []Action
	if root.CurrentPlayer() == Chance {
		actions = sortedActions(root.ChanceProbabilities())
	} else {
		actions = root.LegalActions()
	}

	for _, a := range actions {
		child, err := root.Apply(a)
		if err != nil {
			return err
		}

		if err := Visit(child, visitor); err != nil {
			return err
		}
	}

	return nil
}

// VisitInfoSets calls visitor once per distinct information set in the
// game tree, with the owning player and the information set key.
func VisitInfoSets(root GameState, visitor func(player int, key string)) error {
	seen := make(map[string]struct{})
	return Visit(root, func(state GameState) {
		if state.IsTerminal() || state.CurrentPlayer() == Chance {
			return
		}

		key := state.InfoSetKey()
		if _, ok := seen[key]; ok {
			return
		}

		seen[key] = struct{}{}
		visitor(state.CurrentPlayer(), key)
	})
}

// CountNodes returns the total number of states in the game tree rooted at
// root.
func CountNodes(root GameState) (int, error) {
	total := 0
	err := Visit(root, func(GameState) { total++ })
	return total, err
}

// CountTerminalNodes returns the number of terminal states in the game
// tree rooted at root.
func CountTerminalNodes(root GameState) (int, error) {
	total := 0
	err := Visit(root, func(s GameState) {
		if s.IsTerminal() {
			total++
		}
	})
	return total, err
}

// CountInfoSets returns the number of distinct information sets in the
// game tree rooted at root.
func CountInfoSets(root GameState) (int, error) {
	total := 0
	err := VisitInfoSets(root, func(int, string) { total++ })
	return total, err
}
