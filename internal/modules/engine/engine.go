package engine

import (
	"context"
	"fmt"
)

// Winner is the engine's verdict for a state. The wire tokens come from
// the engine itself: "h" for the first seat, "t" for the second.
type Winner string

const (
	WinnerNone  Winner = "none"
	WinnerSeat0 Winner = "h"
	WinnerSeat1 Winner = "t"
	WinnerDraw  Winner = "draw"
)

// Seat returns the winning seat for a decisive result.
func (w Winner) Seat() (int, bool) {
	switch w {
	case WinnerSeat0:
		return 0, true
	case WinnerSeat1:
		return 1, true
	default:
		return 0, false
	}
}

// Engine is the external game-rules oracle. States and notations are
// opaque strings; the coordinator never inspects their structure beyond
// ActiveSeat. All calls are synchronous and side-effect free. The log
// return value is the engine's stderr diagnostic output.
type Engine interface {
	InitialState(ctx context.Context) (state string, log string, err error)
	// LegalActions returns the set of playable notations. An empty set
	// signals a terminal state.
	LegalActions(ctx context.Context, state string) (actions []string, log string, err error)
	// Apply is undefined for notations outside LegalActions(state);
	// callers must validate first.
	Apply(ctx context.Context, state, notation string) (after string, log string, err error)
	Winner(ctx context.Context, state string) (winner Winner, log string, err error)
}

// Error is a failed engine invocation. Diagnostic carries the engine's
// stderr output verbatim.
type Error struct {
	Op         string
	Diagnostic string
	Err        error
}

func (e *Error) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("engine %s: %v: %s", e.Op, e.Err, e.Diagnostic)
	}
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
