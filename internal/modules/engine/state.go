package engine

import (
	"errors"
	"fmt"
)

var ErrNoTurnMarker = errors.New("state carries no turn marker")

// ActiveSeat reads the seat whose turn is encoded in a state string.
// The engine's encoding ends every state with a single marker rune,
// 'h' for seat 0 and 't' for seat 1. This is the only place the
// coordinator interprets state contents; swap this function to support
// an engine with a different encoding.
func ActiveSeat(state string) (int, error) {
	if state == "" {
		return 0, ErrNoTurnMarker
	}

	switch state[len(state)-1] {
	case 'h':
		return 0, nil
	case 't':
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: trailing %q", ErrNoTurnMarker, state[len(state)-1])
	}
}
