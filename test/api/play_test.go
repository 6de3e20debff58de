package api

import (
	"net/http"
	"net/url"
	"testing"

	playcommands "github.com/arenalabs/matchpoint/internal/modules/play/commands"
	playercommands "github.com/arenalabs/matchpoint/internal/modules/player/commands"
	statequeries "github.com/arenalabs/matchpoint/internal/modules/state/queries"

	"github.com/stretchr/testify/require"
)

func registerPlayer(t *testing.T) (string, string) {
	t.Helper()

	name := uniqueName("bot")
	resp, body := postJSON[playercommands.RegisterPlayerResponse](
		t,
		"/player/create",
		playercommands.RegisterPlayerCommand{Name: name},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return name, body.Token
}

func Test_PlayState_Auto_Creates_Mirror_Game(t *testing.T) {
	// Arrange
	name, token := registerPlayer(t)

	// Act
	resp, body := postJSON[playcommands.RequestTurnResponse](
		t,
		"/aivai/play-state",
		playcommands.RequestTurnCommand{Event: "mirror", Player: name, Token: token},
	)

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, body.Waiting)
	require.NotNil(t, body.ActionID)
	require.Equal(t, "S0-h", body.State)
}

func Test_PlayState_Returns_403_When_Token_Wrong(t *testing.T) {
	// Arrange
	name, _ := registerPlayer(t)

	// Act
	resp, _ := postJSON[playcommands.RequestTurnResponse](
		t,
		"/aivai/play-state",
		playcommands.RequestTurnCommand{Event: "mirror", Player: name, Token: "wrong"},
	)

	// Assert
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func Test_Full_Mirror_Game_Plays_To_Decisive_End(t *testing.T) {
	// Arrange
	name, token := registerPlayer(t)
	request := playcommands.RequestTurnCommand{Event: "mirror", Player: name, Token: token}

	// Act: seat 0 plays "a".
	resp, turn := postJSON[playcommands.RequestTurnResponse](t, "/aivai/play-state", request)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "S0-h", turn.State)

	resp, submitted := postJSON[playcommands.SubmitActionResponse](t, "/aivai/submit-action",
		playcommands.SubmitActionCommand{Player: name, Token: token, ActionID: *turn.ActionID, Action: "a"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "none", submitted.Winner)

	// Seat 1 plays "b" into the terminal state.
	resp, turn = postJSON[playcommands.RequestTurnResponse](t, "/aivai/play-state", request)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "S1-t", turn.State)

	resp, submitted = postJSON[playcommands.SubmitActionResponse](t, "/aivai/submit-action",
		playcommands.SubmitActionCommand{Player: name, Token: token, ActionID: *turn.ActionID, Action: "b"})

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "h", submitted.Winner)
}

func Test_SubmitAction_Returns_422_When_Notation_Illegal(t *testing.T) {
	// Arrange
	name, token := registerPlayer(t)

	resp, turn := postJSON[playcommands.RequestTurnResponse](t, "/aivai/play-state",
		playcommands.RequestTurnCommand{Event: "mirror", Player: name, Token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Act
	resp, _ = postJSON[playcommands.SubmitActionResponse](t, "/aivai/submit-action",
		playcommands.SubmitActionCommand{Player: name, Token: token, ActionID: *turn.ActionID, Action: "teleport"})

	// Assert
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func Test_State_Endpoints_Pass_Through_To_Engine(t *testing.T) {
	// Act
	resp, initial := getJSON[statequeries.StateResponse](t, "/state/initial")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "S0-h", initial.State)

	state := url.PathEscape(initial.State)

	resp, actions := getJSON[statequeries.GetLegalActionsResponse](t, "/state/"+state+"/actions")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"a"}, actions.Actions)
	require.False(t, actions.Terminal)

	resp, after := getJSON[statequeries.StateResponse](t, "/state/"+state+"/act/"+url.PathEscape("a"))

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "S1-t", after.State)
}
