package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/player/domain"

	"github.com/eskrenkovic/mediator-go"
)

// PlayerStore is the slice of the entity store this command needs.
type PlayerStore interface {
	CreatePlayer(ctx context.Context, player domain.Player) error
}

type RegisterPlayerCommand struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c RegisterPlayerCommand) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("invalid Name - '%s'", c.Name)
	}

	return nil
}

type RegisterPlayerResponse struct {
	Token string `json:"token"`
}

func HandleRegisterPlayer(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[RegisterPlayerCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	response, err := mediator.Send[RegisterPlayerCommand, RegisterPlayerResponse](
		r.Context(),
		command,
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type RegisterPlayerCommandHandler struct {
	store PlayerStore
	clock core.Clock
}

func NewRegisterPlayerCommandHandler(store PlayerStore, clock core.Clock) *RegisterPlayerCommandHandler {
	return &RegisterPlayerCommandHandler{store: store, clock: clock}
}

func (h *RegisterPlayerCommandHandler) Handle(
	ctx context.Context,
	request RegisterPlayerCommand,
) (RegisterPlayerResponse, error) {
	player, err := domain.New(request.Name, request.Email, h.clock.Now())
	if err != nil {
		return RegisterPlayerResponse{}, core.NewCommandError(http.StatusInternalServerError, err)
	}

	if err := h.store.CreatePlayer(ctx, player); err != nil {
		if errors.Is(err, domain.ErrNameTaken) {
			return RegisterPlayerResponse{}, core.NewCommandError(
				http.StatusForbidden,
				err,
				core.WithReason(fmt.Sprintf("player name '%s' is taken", request.Name)),
			)
		}
		return RegisterPlayerResponse{}, err
	}

	// The token is shown exactly once. It never rotates, so a lost
	// token means a new player.
	return RegisterPlayerResponse{Token: player.Token}, nil
}
