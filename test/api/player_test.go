package api

import (
	"net/http"
	"testing"

	playercommands "github.com/arenalabs/matchpoint/internal/modules/player/commands"

	"github.com/stretchr/testify/require"
)

func Test_RegisterPlayer_Returns_Token_When_Name_Unique(t *testing.T) {
	// Arrange
	name := uniqueName("bot")

	// Act
	resp, body := postJSON[playercommands.RegisterPlayerResponse](
		t,
		"/player/create",
		playercommands.RegisterPlayerCommand{Name: name, Email: name + "@example.com"},
	)

	// Assert
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body.Token)
}

func Test_RegisterPlayer_Returns_403_When_Name_Taken(t *testing.T) {
	// Arrange
	name := uniqueName("bot")

	resp, _ := postJSON[playercommands.RegisterPlayerResponse](
		t,
		"/player/create",
		playercommands.RegisterPlayerCommand{Name: name},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Act
	resp, _ = postJSON[playercommands.RegisterPlayerResponse](
		t,
		"/player/create",
		playercommands.RegisterPlayerCommand{Name: name},
	)

	// Assert
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func Test_RegisterPlayer_Returns_400_When_Name_Empty(t *testing.T) {
	// Act
	resp, _ := postJSON[playercommands.RegisterPlayerResponse](
		t,
		"/player/create",
		playercommands.RegisterPlayerCommand{},
	)

	// Assert
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
