package queries

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/engine"

	"github.com/eskrenkovic/mediator-go"
	"github.com/go-chi/chi"
)

func engineError(err error) error {
	var engineErr *engine.Error
	if errors.As(err, &engineErr) {
		return core.NewCommandError(
			http.StatusUnprocessableEntity,
			err,
			core.WithReason(engineErr.Diagnostic),
		)
	}
	return err
}

// statePathParam decodes the {state} segment. State strings routinely
// contain characters that only survive a URL percent-encoded.
func statePathParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "state")
	if raw == "" {
		return "", fmt.Errorf("missing required path param 'state'")
	}

	state, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid format for path param 'state'")
	}

	return state, nil
}

type GetLegalActionsQuery struct {
	State string
}

func (q GetLegalActionsQuery) Validate() error {
	if q.State == "" {
		return fmt.Errorf("invalid State - empty")
	}

	return nil
}

type GetLegalActionsResponse struct {
	Actions  []string `json:"actions"`
	Terminal bool     `json:"terminal"`
	Log      string   `json:"log,omitempty"`
}

func HandleGetLegalActions(w http.ResponseWriter, r *http.Request) {
	state, err := statePathParam(r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	response, err := mediator.Send[GetLegalActionsQuery, GetLegalActionsResponse](
		r.Context(),
		GetLegalActionsQuery{State: state},
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetLegalActionsQueryHandler struct {
	engine engine.Engine
}

func NewGetLegalActionsQueryHandler(eng engine.Engine) *GetLegalActionsQueryHandler {
	return &GetLegalActionsQueryHandler{engine: eng}
}

func (h *GetLegalActionsQueryHandler) Handle(
	ctx context.Context,
	request GetLegalActionsQuery,
) (GetLegalActionsResponse, error) {
	actions, log, err := h.engine.LegalActions(ctx, request.State)
	if err != nil {
		return GetLegalActionsResponse{}, engineError(err)
	}

	return GetLegalActionsResponse{
		Actions:  actions,
		Terminal: len(actions) == 0,
		Log:      log,
	}, nil
}
