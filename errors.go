package cfr

import "fmt"

// InvalidStateError is returned when an operation that needs an acting
// player is invoked on a chance or terminal state.
type InvalidStateError struct {
	// Op is the operation that rejected the state.
	Op string
	// Reason says what was wrong with it.
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cfr: %s: invalid state: %s", e.Op, e.Reason)
}

// InvalidActionError is returned by GameState.Apply when the action is not
// legal in the given state.
type InvalidActionError struct {
	Action Action
	// State describes the rejecting state, typically its history.
	State string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("cfr: action %q is not legal in state %q", e.Action, e.State)
}
