package queries

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/engine"
	"github.com/arenalabs/matchpoint/internal/modules/play/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

type ApplyActionQuery struct {
	State  string
	Action string
}

func (q ApplyActionQuery) Validate() error {
	if q.State == "" {
		return fmt.Errorf("invalid State - empty")
	}

	if q.Action == "" {
		return fmt.Errorf("invalid Action - empty")
	}

	return nil
}

func HandleApplyAction(w http.ResponseWriter, r *http.Request) {
	state, err := statePathParam(r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	action, err := url.PathUnescape(chi.URLParam(r, "action"))
	if err != nil || action == "" {
		core.WriteBadRequest(w, r, fmt.Errorf("invalid format for path param 'action'"))
		return
	}

	response, err := mediator.Send[ApplyActionQuery, StateResponse](
		r.Context(),
		ApplyActionQuery{State: state, Action: action},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type ApplyActionQueryHandler struct {
	engine engine.Engine
}

func NewApplyActionQueryHandler(eng engine.Engine) *ApplyActionQueryHandler {
	return &ApplyActionQueryHandler{engine: eng}
}

func (h *ApplyActionQueryHandler) Handle(
	ctx context.Context,
	request ApplyActionQuery,
) (StateResponse, error) {
	legal, _, err := h.engine.LegalActions(ctx, request.State)
	if err != nil {
		return StateResponse{}, engineError(err)
	}

	if !core.Contains(legal, request.Action) {
		return StateResponse{}, core.NewCommandError(
			http.StatusUnprocessableEntity,
			domain.ErrInvalidAction,
			core.WithReason(fmt.Sprintf("action '%s' is not legal in the given state", request.Action)),
		)
	}

	after, log, err := h.engine.Apply(ctx, request.State, request.Action)
	if err != nil {
		return StateResponse{}, engineError(err)
	}

	return StateResponse{State: after, Log: log}, nil
}
