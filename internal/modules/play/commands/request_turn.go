package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/engine"
	eventdomain "github.com/arenalabs/matchpoint/internal/modules/event/domain"
	"github.com/arenalabs/matchpoint/internal/modules/play"
	"github.com/arenalabs/matchpoint/internal/modules/play/domain"
	playerdomain "github.com/arenalabs/matchpoint/internal/modules/player/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/google/uuid"
)

type RequestTurnCommand struct {
	Event  string `json:"event"`
	Player string `json:"player"`
	Token  string `json:"token"`
}

func (c RequestTurnCommand) Validate() error {
	if c.Event == "" {
		return fmt.Errorf("invalid Event - '%s'", c.Event)
	}

	if c.Player == "" {
		return fmt.Errorf("invalid Player - '%s'", c.Player)
	}

	if c.Token == "" {
		return fmt.Errorf("invalid Token - empty")
	}

	return nil
}

// RequestTurnResponse carries the pending action's id and pre-move
// state. Waiting is set, with no action attached, when every one of
// the player's open games is waiting on the opponent.
type RequestTurnResponse struct {
	GameID   *uuid.UUID `json:"game_id,omitempty"`
	ActionID *uuid.UUID `json:"action_id,omitempty"`
	State    string     `json:"state,omitempty"`
	Waiting  bool       `json:"waiting"`
}

func HandleRequestTurn(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[RequestTurnCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	response, err := mediator.Send[RequestTurnCommand, RequestTurnResponse](
		r.Context(),
		command,
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type RequestTurnCommandHandler struct {
	store      play.Store
	matchmaker *play.Matchmaker
	lifecycle  *play.Lifecycle
	engine     engine.Engine
	clock      core.Clock

	// Event names matched against incoming requests; an unknown event
	// with one of these names is created on first use with the
	// self-play policy.
	autoCreate map[string]struct{}
}

func NewRequestTurnCommandHandler(
	store play.Store,
	matchmaker *play.Matchmaker,
	lifecycle *play.Lifecycle,
	eng engine.Engine,
	clock core.Clock,
	autoCreateEvents []string,
) *RequestTurnCommandHandler {
	autoCreate := make(map[string]struct{}, len(autoCreateEvents))
	for _, name := range autoCreateEvents {
		autoCreate[name] = struct{}{}
	}

	return &RequestTurnCommandHandler{
		store:      store,
		matchmaker: matchmaker,
		lifecycle:  lifecycle,
		engine:     eng,
		clock:      clock,
		autoCreate: autoCreate,
	}
}

func (h *RequestTurnCommandHandler) Handle(
	ctx context.Context,
	request RequestTurnCommand,
) (RequestTurnResponse, error) {
	player, err := h.store.PlayerByName(ctx, request.Player)
	if err != nil {
		return RequestTurnResponse{}, statusFor(err)
	}

	if err := player.Authenticate(request.Token); err != nil {
		return RequestTurnResponse{}, statusFor(err)
	}

	event, err := h.resolveEvent(ctx, request.Event)
	if err != nil {
		return RequestTurnResponse{}, statusFor(err)
	}

	game, err := h.matchmaker.FindOrCreateGame(ctx, event, player)
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingTurn) {
			return RequestTurnResponse{Waiting: true}, nil
		}
		return RequestTurnResponse{}, statusFor(err)
	}

	action, err := h.lifecycle.NextAction(ctx, game.ID)
	if err != nil {
		// The game can close under a concurrent submit between
		// matchmaking and the turn read. Report waiting so the client
		// polls again and matches into a live game.
		if errors.Is(err, domain.ErrGameFinished) {
			return RequestTurnResponse{Waiting: true}, nil
		}
		return RequestTurnResponse{}, statusFor(err)
	}

	return RequestTurnResponse{
		GameID:   &game.ID,
		ActionID: &action.ID,
		State:    action.BeforeState,
	}, nil
}

func (h *RequestTurnCommandHandler) resolveEvent(
	ctx context.Context,
	name string,
) (eventdomain.Event, error) {
	event, err := h.store.EventByName(ctx, name)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, eventdomain.ErrNotFound) {
		return eventdomain.Event{}, err
	}

	if _, ok := h.autoCreate[name]; !ok {
		return eventdomain.Event{}, err
	}

	initialState, _, err := h.engine.InitialState(ctx)
	if err != nil {
		return eventdomain.Event{}, err
	}

	dashboardToken, err := playerdomain.NewToken()
	if err != nil {
		return eventdomain.Event{}, err
	}

	return h.store.GetOrCreateEvent(
		ctx,
		eventdomain.New(name, eventdomain.PolicyMirror, initialState, dashboardToken, h.clock.Now()),
	)
}
