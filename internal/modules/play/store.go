package play

import (
	"context"
	"time"

	eventdomain "github.com/arenalabs/matchpoint/internal/modules/event/domain"
	"github.com/arenalabs/matchpoint/internal/modules/play/domain"
	playerdomain "github.com/arenalabs/matchpoint/internal/modules/player/domain"

	"github.com/google/uuid"
)

// OpenGame is an unfinished game together with what matchmaking needs
// to derive whose turn it is.
type OpenGame struct {
	Game         domain.Game
	Participants []domain.Participant
	LastAction   *domain.Action
}

// SeatDetail is a participant joined with its player's name, for
// reporting.
type SeatDetail struct {
	Participant domain.Participant
	PlayerName  string
}

// GameDetail is the full read model of one game, used to compute
// standings and forfeits on demand.
type GameDetail struct {
	Game         domain.Game
	Participants []SeatDetail
	Actions      []domain.Action
}

// Outcome is the terminal verdict recorded with a submitted action.
// WinnerSeat is nil for a draw.
type Outcome struct {
	Terminal   bool
	WinnerSeat *int
}

// NextActionFunc builds the next pending action for a game. It is
// invoked by the store inside the transaction that guards the game, and
// only when no pending action exists.
type NextActionFunc func(game domain.Game, participants []domain.Participant, last *domain.Action) (domain.Action, error)

// Store is the entity store for players, events, games, participants
// and actions. Compound find-or-create and submit operations are single
// atomic methods so concurrent callers cannot interleave between the
// read and the write.
type Store interface {
	CreatePlayer(ctx context.Context, player playerdomain.Player) error
	PlayerByName(ctx context.Context, name string) (playerdomain.Player, error)

	EventByName(ctx context.Context, name string) (eventdomain.Event, error)
	// GetOrCreateEvent inserts the event unless one with the same name
	// exists, in which case the existing event is returned.
	GetOrCreateEvent(ctx context.Context, event eventdomain.Event) (eventdomain.Event, error)
	// CreateEvent persists an event with its pre-scheduled games and
	// participants as one unit; a name collision or any row failure
	// leaves nothing behind.
	CreateEvent(
		ctx context.Context,
		event eventdomain.Event,
		games []domain.Game,
		participants []domain.Participant,
	) error

	// FindOrCreateMirrorGame returns the open game in which player
	// occupies a seat, creating one with player in both seats if none
	// exists. Concurrent calls for the same event and player yield the
	// same game.
	FindOrCreateMirrorGame(
		ctx context.Context,
		event eventdomain.Event,
		player playerdomain.Player,
		now time.Time,
	) (domain.Game, error)
	OpenGamesForPlayer(ctx context.Context, eventID, playerID uuid.UUID) ([]OpenGame, error)
	GameByID(ctx context.Context, id uuid.UUID) (domain.Game, error)
	AddParticipant(ctx context.Context, participant domain.Participant) error

	// NextAction returns the game's pending action unchanged, or builds
	// and persists the next one. At most one pending action per game
	// can ever exist.
	NextAction(ctx context.Context, gameID uuid.UUID, build NextActionFunc) (domain.Action, error)
	ActionByID(ctx context.Context, id uuid.UUID) (domain.Action, error)
	// CompleteAction records a submission. It fails with
	// domain.ErrAlreadySubmitted unless the stored action is still
	// pending, and atomically closes the game when the outcome is
	// terminal.
	CompleteAction(ctx context.Context, action domain.Action, outcome Outcome) error

	GamesForEvent(ctx context.Context, eventID uuid.UUID) ([]GameDetail, error)
}
