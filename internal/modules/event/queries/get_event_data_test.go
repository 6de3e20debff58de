package queries

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/event/domain"
	"github.com/arenalabs/matchpoint/internal/modules/play"
	playdomain "github.com/arenalabs/matchpoint/internal/modules/play/domain"
	playerdomain "github.com/arenalabs/matchpoint/internal/modules/player/domain"

	"github.com/stretchr/testify/require"
)

type eventDataFixture struct {
	store *play.MemoryStore
	event domain.Event
	a     playerdomain.Player
	b     playerdomain.Player
	game  playdomain.Game

	base time.Time
}

func newEventDataFixture(t *testing.T) *eventDataFixture {
	t.Helper()

	ctx := context.Background()
	store := play.NewMemoryStore()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	a, err := playerdomain.New("bot-a", "", base)
	require.NoError(t, err)
	require.NoError(t, store.CreatePlayer(ctx, a))

	b, err := playerdomain.New("bot-b", "", base)
	require.NoError(t, err)
	require.NoError(t, store.CreatePlayer(ctx, b))

	event := domain.New("league", domain.PolicyRoster, "S0-h", "dash-token", base)
	game := playdomain.NewGame(event.ID, event.InitialState, base)

	err = store.CreateEvent(ctx, event, []playdomain.Game{game}, []playdomain.Participant{
		playdomain.NewParticipant(game.ID, a.ID, 0),
		playdomain.NewParticipant(game.ID, b.ID, 1),
	})
	require.NoError(t, err)

	return &eventDataFixture{store: store, event: event, a: a, b: b, game: game, base: base}
}

// submitMove creates and immediately completes one action taking
// thinkTime, optionally closing the game with the given winner seat.
func (f *eventDataFixture) submitMove(
	t *testing.T,
	seat int,
	thinkTime time.Duration,
	outcome play.Outcome,
) {
	t.Helper()

	ctx := context.Background()
	player := f.a
	if seat == 1 {
		player = f.b
	}

	action, err := f.store.NextAction(ctx, f.game.ID, func(
		game playdomain.Game,
		_ []playdomain.Participant,
		last *playdomain.Action,
	) (playdomain.Action, error) {
		number := 1
		before := game.InitialState
		if last != nil {
			number = last.Number + 1
			before = last.AfterState
		}
		return playdomain.NewAction(game.ID, player.ID, seat, number, before, f.base), nil
	})
	require.NoError(t, err)

	submitted := action.CreateTimestamp.Add(thinkTime)
	action.Notation = "m"
	action.AfterState = "S1-t"
	action.SubmitTimestamp = &submitted

	require.NoError(t, f.store.CompleteAction(ctx, action, outcome))
}

func Test_GetEventData_Rejects_Wrong_Dashboard_Token(t *testing.T) {
	// Arrange
	f := newEventDataFixture(t)
	handler := NewGetEventDataQueryHandler(f.store, 5*time.Minute)

	// Act
	_, err := handler.Handle(context.Background(), GetEventDataQuery{
		Name:           "league",
		DashboardToken: "guessed",
	})

	// Assert
	var commandErr core.CommandError
	require.ErrorAs(t, err, &commandErr)
	require.Equal(t, http.StatusForbidden, commandErr.StatusCode)
}

func Test_GetEventData_Fails_For_Unknown_Event(t *testing.T) {
	// Arrange
	f := newEventDataFixture(t)
	handler := NewGetEventDataQueryHandler(f.store, 5*time.Minute)

	// Act
	_, err := handler.Handle(context.Background(), GetEventDataQuery{
		Name:           "nope",
		DashboardToken: "dash-token",
	})

	// Assert
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_GetEventData_Counts_Ongoing_Games(t *testing.T) {
	// Arrange
	f := newEventDataFixture(t)
	handler := NewGetEventDataQueryHandler(f.store, 5*time.Minute)

	// Act
	response, err := handler.Handle(context.Background(), GetEventDataQuery{
		Name:           "league",
		DashboardToken: "dash-token",
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, response.Standings, 2)
	for _, standing := range response.Standings {
		require.Equal(t, 1, standing.Ongoing)
		require.Zero(t, standing.Wins+standing.Losses+standing.Draws)
	}
	require.Len(t, response.Games, 1)
	require.False(t, response.Games[0].Finished)
}

func Test_GetEventData_Counts_Decisive_Result(t *testing.T) {
	// Arrange
	f := newEventDataFixture(t)
	winnerSeat := 0
	f.submitMove(t, 0, time.Second, play.Outcome{Terminal: true, WinnerSeat: &winnerSeat})

	handler := NewGetEventDataQueryHandler(f.store, 5*time.Minute)

	// Act
	response, err := handler.Handle(context.Background(), GetEventDataQuery{
		Name:           "league",
		DashboardToken: "dash-token",
	})

	// Assert
	require.NoError(t, err)

	byName := map[string]Standing{}
	for _, s := range response.Standings {
		byName[s.Player] = s
	}

	require.Equal(t, 1, byName["bot-a"].Wins)
	require.Equal(t, 1, byName["bot-b"].Losses)
	require.Zero(t, byName["bot-a"].ForfeitWins)

	require.Len(t, response.Games, 1)
	require.True(t, response.Games[0].Finished)
	require.NotNil(t, response.Games[0].WinnerSeat)
	require.Equal(t, 0, *response.Games[0].WinnerSeat)
}

func Test_GetEventData_Counts_Draw(t *testing.T) {
	// Arrange
	f := newEventDataFixture(t)
	f.submitMove(t, 0, time.Second, play.Outcome{Terminal: true})

	handler := NewGetEventDataQueryHandler(f.store, 5*time.Minute)

	// Act
	response, err := handler.Handle(context.Background(), GetEventDataQuery{
		Name:           "league",
		DashboardToken: "dash-token",
	})

	// Assert
	require.NoError(t, err)
	for _, standing := range response.Standings {
		require.Equal(t, 1, standing.Draws)
		require.Zero(t, standing.Wins)
		require.Zero(t, standing.Losses)
	}
}

func Test_GetEventData_Overdue_Move_In_Open_Game_Counts_As_Ongoing(t *testing.T) {
	// Arrange
	f := newEventDataFixture(t)

	// Seat 0 blows the limit but the game is still being played.
	f.submitMove(t, 0, time.Hour, play.Outcome{})

	handler := NewGetEventDataQueryHandler(f.store, 5*time.Minute)

	// Act
	response, err := handler.Handle(context.Background(), GetEventDataQuery{
		Name:           "league",
		DashboardToken: "dash-token",
	})

	// Assert
	require.NoError(t, err)
	for _, standing := range response.Standings {
		require.Equal(t, 1, standing.Ongoing)
		require.Zero(t, standing.ForfeitWins)
		require.Zero(t, standing.ForfeitLosses)
	}
	require.False(t, response.Games[0].Finished)
	require.Nil(t, response.Games[0].ForfeitSeat)
}

func Test_GetEventData_Forfeit_Overrides_Oracle_Result(t *testing.T) {
	// Arrange
	f := newEventDataFixture(t)

	// Seat 0 takes far too long but still "wins" on the board.
	winnerSeat := 0
	f.submitMove(t, 0, time.Hour, play.Outcome{Terminal: true, WinnerSeat: &winnerSeat})

	handler := NewGetEventDataQueryHandler(f.store, 5*time.Minute)

	// Act
	response, err := handler.Handle(context.Background(), GetEventDataQuery{
		Name:           "league",
		DashboardToken: "dash-token",
	})

	// Assert
	require.NoError(t, err)

	byName := map[string]Standing{}
	for _, s := range response.Standings {
		byName[s.Player] = s
	}

	require.Equal(t, 1, byName["bot-a"].ForfeitLosses)
	require.Equal(t, 1, byName["bot-b"].ForfeitWins)
	require.Zero(t, byName["bot-a"].Wins)
	require.Zero(t, byName["bot-b"].Losses)

	require.NotNil(t, response.Games[0].ForfeitSeat)
	require.Equal(t, 0, *response.Games[0].ForfeitSeat)
}
