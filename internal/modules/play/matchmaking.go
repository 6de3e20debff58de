package play

import (
	"context"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	eventdomain "github.com/arenalabs/matchpoint/internal/modules/event/domain"
	"github.com/arenalabs/matchpoint/internal/modules/play/domain"
	playerdomain "github.com/arenalabs/matchpoint/internal/modules/player/domain"
)

// Matchmaker picks the game a player should act in next, according to
// the event's pairing policy.
type Matchmaker struct {
	store Store
	clock core.Clock
}

func NewMatchmaker(store Store, clock core.Clock) *Matchmaker {
	return &Matchmaker{store: store, clock: clock}
}

// FindOrCreateGame resolves the player's current game within an event.
//
// Mirror events pair the player against themselves: the player's open
// game is reused, or a fresh one created. Roster events never create
// games on demand; the player's oldest open game where it is their
// turn is returned, and ErrNoPendingTurn when every open game is
// waiting on the opponent.
func (m *Matchmaker) FindOrCreateGame(
	ctx context.Context,
	event eventdomain.Event,
	player playerdomain.Player,
) (domain.Game, error) {
	switch event.Policy {
	case eventdomain.PolicyMirror:
		return m.store.FindOrCreateMirrorGame(ctx, event, player, m.clock.Now())
	default:
		return m.findRosterGame(ctx, event, player)
	}
}

func (m *Matchmaker) findRosterGame(
	ctx context.Context,
	event eventdomain.Event,
	player playerdomain.Player,
) (domain.Game, error) {
	open, err := m.store.OpenGamesForPlayer(ctx, event.ID, player.ID)
	if err != nil {
		return domain.Game{}, err
	}

	for _, candidate := range open {
		seat, err := ActingSeat(candidate.Game, candidate.LastAction)
		if err != nil {
			return domain.Game{}, err
		}

		participant, found := domain.SeatParticipant(candidate.Participants, seat)
		if found && participant.PlayerID == player.ID {
			return candidate.Game, nil
		}
	}

	return domain.Game{}, domain.ErrNoPendingTurn
}
