package play

import (
	"context"
	"time"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/engine"
	"github.com/arenalabs/matchpoint/internal/modules/play/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ActingSeat resolves which seat moves next in a game. Seat 0 opens.
// A pending action pins the turn to its own seat until it is
// submitted; after a submit the turn is re-derived from the post-move
// state's turn marker.
func ActingSeat(game domain.Game, last *domain.Action) (int, error) {
	if last == nil {
		return 0, nil
	}
	if !last.Submitted() {
		return last.Seat, nil
	}
	return engine.ActiveSeat(last.AfterState)
}

// Lifecycle drives a game's turn cycle: handing out actions to the
// side to move and applying submitted notations through the engine.
type Lifecycle struct {
	store  Store
	engine engine.Engine
	clock  core.Clock
}

func NewLifecycle(store Store, eng engine.Engine, clock core.Clock) *Lifecycle {
	return &Lifecycle{store: store, engine: eng, clock: clock}
}

// NextAction returns the game's pending action, creating one for the
// acting seat if none exists. Repeated calls before a submit return
// the same action.
func (l *Lifecycle) NextAction(ctx context.Context, gameID uuid.UUID) (domain.Action, error) {
	return l.store.NextAction(ctx, gameID, func(
		game domain.Game,
		participants []domain.Participant,
		last *domain.Action,
	) (domain.Action, error) {
		seat, err := ActingSeat(game, last)
		if err != nil {
			return domain.Action{}, err
		}

		participant, found := domain.SeatParticipant(participants, seat)
		if !found {
			return domain.Action{}, errors.Errorf("game %s has no participant in seat %d", game.ID, seat)
		}

		number := 1
		before := game.InitialState
		if last != nil {
			number = last.Number + 1
			before = last.AfterState
		}

		return domain.NewAction(game.ID, participant.PlayerID, seat, number, before, l.clock.Now()), nil
	})
}

// SubmitAction validates and applies a notation against a pending
// action. The returned winner is WinnerNone while the game continues.
func (l *Lifecycle) SubmitAction(
	ctx context.Context,
	actionID uuid.UUID,
	player string,
	token string,
	notation string,
) (engine.Winner, error) {
	p, err := l.store.PlayerByName(ctx, player)
	if err != nil {
		return engine.WinnerNone, err
	}

	if err := p.Authenticate(token); err != nil {
		return engine.WinnerNone, err
	}

	action, err := l.store.ActionByID(ctx, actionID)
	if err != nil {
		return engine.WinnerNone, err
	}

	if action.PlayerID != p.ID {
		return engine.WinnerNone, domain.ErrAuthMismatch
	}

	if action.Submitted() {
		return engine.WinnerNone, domain.ErrAlreadySubmitted
	}

	legal, _, err := l.engine.LegalActions(ctx, action.BeforeState)
	if err != nil {
		return engine.WinnerNone, err
	}

	if !core.Contains(legal, notation) {
		return engine.WinnerNone, domain.ErrInvalidAction
	}

	after, _, err := l.engine.Apply(ctx, action.BeforeState, notation)
	if err != nil {
		return engine.WinnerNone, err
	}

	action.Notation = notation
	action.AfterState = after
	submitted := l.clock.Now()
	action.SubmitTimestamp = &submitted

	outcome := Outcome{}

	winner, _, err := l.engine.Winner(ctx, after)
	if err != nil {
		return engine.WinnerNone, err
	}

	if winner != engine.WinnerNone {
		outcome.Terminal = true
		if seat, ok := winner.Seat(); ok {
			outcome.WinnerSeat = &seat
		}
	}

	if err := l.store.CompleteAction(ctx, action, outcome); err != nil {
		return engine.WinnerNone, err
	}

	return winner, nil
}

// ForfeitSeat reports the seat that lost a game on time: the seat
// owning the first submitted action whose think time exceeded the
// limit. Nothing is stored; callers derive this at read time. Returns
// nil when no seat forfeited.
func ForfeitSeat(actions []domain.Action, limit time.Duration) *int {
	if limit <= 0 {
		return nil
	}

	for _, action := range actions {
		think, submitted := action.ThinkTime()
		if submitted && think > limit {
			seat := action.Seat
			return &seat
		}
	}

	return nil
}
