package commands

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/engine"
	"github.com/arenalabs/matchpoint/internal/modules/event/domain"
	"github.com/arenalabs/matchpoint/internal/modules/play"
	playerdomain "github.com/arenalabs/matchpoint/internal/modules/player/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixedEngine struct {
	initial string
}

var _ engine.Engine = (*fixedEngine)(nil)

func (e *fixedEngine) InitialState(context.Context) (string, string, error) {
	return e.initial, "", nil
}

func (e *fixedEngine) LegalActions(context.Context, string) ([]string, string, error) {
	return nil, "", nil
}

func (e *fixedEngine) Apply(context.Context, string, string) (string, string, error) {
	return "", "", nil
}

func (e *fixedEngine) Winner(context.Context, string) (engine.Winner, string, error) {
	return engine.WinnerNone, "", nil
}

func Test_PlanMatchups_Schedules_Every_Ordered_Pairing(t *testing.T) {
	// Arrange
	players := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	// Act
	matchups, err := PlanMatchups(players, 2, 100)

	// Assert
	require.NoError(t, err)
	// 3 unordered pairs, 2 orderings, 2 games each.
	require.Len(t, matchups, 12)

	ordered := make(map[[2]uuid.UUID]int)
	for _, m := range matchups {
		ordered[m.Seats]++
	}
	require.Len(t, ordered, 6)
	for _, count := range ordered {
		require.Equal(t, 2, count)
	}
}

func Test_PlanMatchups_Fails_Before_Planning_When_Over_Limit(t *testing.T) {
	// Arrange
	players := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	// Act
	matchups, err := PlanMatchups(players, 2, 11)

	// Assert
	require.ErrorIs(t, err, domain.ErrTooManyGames)
	require.Nil(t, matchups)
}

type createEventFixture struct {
	store   *play.MemoryStore
	handler *CreateEventCommandHandler
	clock   *core.MockClock
}

func newCreateEventFixture(t *testing.T, maxGames int) *createEventFixture {
	t.Helper()

	store := play.NewMemoryStore()
	clock := core.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	handler := NewCreateEventCommandHandler(
		store,
		&fixedEngine{initial: "S0-h"},
		nil, // no mail server in unit tests
		clock,
		"noreply@example.com",
		maxGames,
	)

	return &createEventFixture{store: store, handler: handler, clock: clock}
}

func (f *createEventFixture) registerPlayers(t *testing.T, names ...string) {
	t.Helper()

	for _, name := range names {
		player, err := playerdomain.New(name, "", f.clock.Now())
		require.NoError(t, err)
		require.NoError(t, f.store.CreatePlayer(context.Background(), player))
	}
}

func Test_CreateEvent_Creates_Schedule_With_Both_Seating_Orders(t *testing.T) {
	// Arrange
	f := newCreateEventFixture(t, 100)
	f.registerPlayers(t, "bot-a", "bot-b")
	ctx := context.Background()

	// Act
	response, err := f.handler.Handle(ctx, CreateEventCommand{
		Name:      "league",
		Players:   []string{"bot-a", "bot-b"},
		GamePairs: 3,
	})

	// Assert
	require.NoError(t, err)
	require.Equal(t, 6, response.Games)
	require.NotEmpty(t, response.DashboardToken)

	event, err := f.store.EventByName(ctx, "league")
	require.NoError(t, err)
	require.Equal(t, domain.PolicyRoster, event.Policy)
	require.Equal(t, "S0-h", event.InitialState)

	details, err := f.store.GamesForEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, details, 6)

	aFirst := 0
	for _, detail := range details {
		require.Len(t, detail.Participants, 2)
		require.Equal(t, "S0-h", detail.Game.InitialState)
		if detail.Participants[0].PlayerName == "bot-a" {
			aFirst++
		}
	}
	require.Equal(t, 3, aFirst)
}

func Test_CreateEvent_Fails_On_Duplicate_Name_Without_Creating_Games(t *testing.T) {
	// Arrange
	f := newCreateEventFixture(t, 100)
	f.registerPlayers(t, "bot-a", "bot-b")
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, CreateEventCommand{
		Name:      "league",
		Players:   []string{"bot-a", "bot-b"},
		GamePairs: 3,
	})
	require.NoError(t, err)

	// Act
	_, err = f.handler.Handle(ctx, CreateEventCommand{
		Name:      "league",
		Players:   []string{"bot-a", "bot-b"},
		GamePairs: 3,
	})

	// Assert
	require.ErrorIs(t, err, domain.ErrNameTaken)

	var commandErr core.CommandError
	require.ErrorAs(t, err, &commandErr)
	require.Equal(t, http.StatusForbidden, commandErr.StatusCode)

	event, err := f.store.EventByName(ctx, "league")
	require.NoError(t, err)
	details, err := f.store.GamesForEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, details, 6)
}

func Test_CreateEvent_Fails_With_TooManyGames_And_Writes_Nothing(t *testing.T) {
	// Arrange
	f := newCreateEventFixture(t, 5)
	f.registerPlayers(t, "bot-a", "bot-b")
	ctx := context.Background()

	// Act
	_, err := f.handler.Handle(ctx, CreateEventCommand{
		Name:      "league",
		Players:   []string{"bot-a", "bot-b"},
		GamePairs: 3,
	})

	// Assert
	require.ErrorIs(t, err, domain.ErrTooManyGames)

	_, err = f.store.EventByName(ctx, "league")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_CreateEvent_Fails_When_Player_Unknown(t *testing.T) {
	// Arrange
	f := newCreateEventFixture(t, 100)
	f.registerPlayers(t, "bot-a")

	// Act
	_, err := f.handler.Handle(context.Background(), CreateEventCommand{
		Name:      "league",
		Players:   []string{"bot-a", "bot-b"},
		GamePairs: 1,
	})

	// Assert
	var commandErr core.CommandError
	require.ErrorAs(t, err, &commandErr)
	require.Equal(t, http.StatusNotFound, commandErr.StatusCode)
}

func Test_CreateEventCommand_Validate_Rejects_Bad_Input(t *testing.T) {
	require.Error(t, CreateEventCommand{Name: "", Players: []string{"a", "b"}, GamePairs: 1}.Validate())
	require.Error(t, CreateEventCommand{Name: "e", Players: []string{"a"}, GamePairs: 1}.Validate())
	require.Error(t, CreateEventCommand{Name: "e", Players: []string{"a", "b"}, GamePairs: 0}.Validate())
	require.Error(t, CreateEventCommand{Name: "e", Players: []string{"a", "a"}, GamePairs: 1}.Validate())
	require.NoError(t, CreateEventCommand{Name: "e", Players: []string{"a", "b"}, GamePairs: 1}.Validate())
}
