package queries

import (
	"context"
	"net/http"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/engine"

	"github.com/eskrenkovic/mediator-go"
)

type GetInitialStateQuery struct{}

// StateResponse is shared by the engine passthrough queries. Log
// carries whatever the engine printed on stderr.
type StateResponse struct {
	State string `json:"state"`
	Log   string `json:"log,omitempty"`
}

func HandleGetInitialState(w http.ResponseWriter, r *http.Request) {
	response, err := mediator.Send[GetInitialStateQuery, StateResponse](
		r.Context(),
		GetInitialStateQuery{},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetInitialStateQueryHandler struct {
	engine engine.Engine
}

func NewGetInitialStateQueryHandler(eng engine.Engine) *GetInitialStateQueryHandler {
	return &GetInitialStateQueryHandler{engine: eng}
}

func (h *GetInitialStateQueryHandler) Handle(
	ctx context.Context,
	_ GetInitialStateQuery,
) (StateResponse, error) {
	state, log, err := h.engine.InitialState(ctx)
	if err != nil {
		return StateResponse{}, engineError(err)
	}

	return StateResponse{State: state, Log: log}, nil
}
