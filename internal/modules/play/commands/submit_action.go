package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/play"

	"github.com/eskrenkovic/mediator-go"
	"github.com/google/uuid"
)

type SubmitActionCommand struct {
	Player   string    `json:"player"`
	Token    string    `json:"token"`
	ActionID uuid.UUID `json:"action_id"`
	Action   string    `json:"action"`
}

func (c SubmitActionCommand) Validate() error {
	if c.Player == "" {
		return fmt.Errorf("invalid Player - '%s'", c.Player)
	}

	if c.Token == "" {
		return fmt.Errorf("invalid Token - empty")
	}

	if c.ActionID == uuid.Nil {
		return fmt.Errorf("invalid ActionID - '%s'", c.ActionID)
	}

	if c.Action == "" {
		return fmt.Errorf("invalid Action - '%s'", c.Action)
	}

	return nil
}

// SubmitActionResponse reports the game result as of this move:
// "none" while the game continues, otherwise the winner marker or
// "draw".
type SubmitActionResponse struct {
	Winner string `json:"winner"`
}

func HandleSubmitAction(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[SubmitActionCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	response, err := mediator.Send[SubmitActionCommand, SubmitActionResponse](
		r.Context(),
		command,
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type SubmitActionCommandHandler struct {
	lifecycle *play.Lifecycle
}

func NewSubmitActionCommandHandler(lifecycle *play.Lifecycle) *SubmitActionCommandHandler {
	return &SubmitActionCommandHandler{lifecycle: lifecycle}
}

func (h *SubmitActionCommandHandler) Handle(
	ctx context.Context,
	request SubmitActionCommand,
) (SubmitActionResponse, error) {
	winner, err := h.lifecycle.SubmitAction(
		ctx,
		request.ActionID,
		request.Player,
		request.Token,
		request.Action,
	)
	if err != nil {
		return SubmitActionResponse{}, statusFor(err)
	}

	return SubmitActionResponse{Winner: string(winner)}, nil
}
