package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/engine"
	"github.com/arenalabs/matchpoint/internal/modules/event/domain"
	playdomain "github.com/arenalabs/matchpoint/internal/modules/play/domain"
	playerdomain "github.com/arenalabs/matchpoint/internal/modules/player/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventStore is the slice of the entity store this command needs.
type EventStore interface {
	PlayerByName(ctx context.Context, name string) (playerdomain.Player, error)
	CreateEvent(
		ctx context.Context,
		event domain.Event,
		games []playdomain.Game,
		participants []playdomain.Participant,
	) error
}

type CreateEventCommand struct {
	Name      string   `json:"name"`
	Players   []string `json:"players"`
	GamePairs int      `json:"game_pairs"`
}

func (c CreateEventCommand) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("invalid Name - '%s'", c.Name)
	}

	if len(c.Players) < 2 {
		return fmt.Errorf("invalid Players - need at least 2, got %d", len(c.Players))
	}

	if c.GamePairs < 1 {
		return fmt.Errorf("invalid GamePairs - '%d'", c.GamePairs)
	}

	seen := make(map[string]struct{}, len(c.Players))
	for _, name := range c.Players {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("duplicate player '%s'", name)
		}
		seen[name] = struct{}{}
	}

	return nil
}

type CreateEventResponse struct {
	DashboardToken string `json:"dashboard_token"`
	Games          int    `json:"games"`
}

func HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	command, err := core.RequestBody[CreateEventCommand](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	response, err := mediator.Send[CreateEventCommand, CreateEventResponse](
		r.Context(),
		command,
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

// Matchup is one planned game of a roster schedule. Seats lists the
// two players in seating order.
type Matchup struct {
	Seats [2]uuid.UUID
}

// PlanMatchups expands a roster into the full schedule: every
// unordered pair of distinct players gets gamePairs games per seating
// order. ErrTooManyGames when the schedule would exceed limit; nothing
// is planned partially.
func PlanMatchups(players []uuid.UUID, gamePairs, limit int) ([]Matchup, error) {
	n := len(players)
	total := n * (n - 1) / 2 * 2 * gamePairs
	if total > limit {
		return nil, domain.ErrTooManyGames
	}

	matchups := make([]Matchup, 0, total)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := 0; k < gamePairs; k++ {
				matchups = append(matchups,
					Matchup{Seats: [2]uuid.UUID{players[i], players[j]}},
					Matchup{Seats: [2]uuid.UUID{players[j], players[i]}},
				)
			}
		}
	}

	return matchups, nil
}

type CreateEventCommandHandler struct {
	store    EventStore
	engine   engine.Engine
	email    *core.EmailClient
	clock    core.Clock
	sender   string
	maxGames int
}

func NewCreateEventCommandHandler(
	store EventStore,
	eng engine.Engine,
	email *core.EmailClient,
	clock core.Clock,
	sender string,
	maxGames int,
) *CreateEventCommandHandler {
	return &CreateEventCommandHandler{
		store:    store,
		engine:   eng,
		email:    email,
		clock:    clock,
		sender:   sender,
		maxGames: maxGames,
	}
}

func (h *CreateEventCommandHandler) Handle(
	ctx context.Context,
	request CreateEventCommand,
) (CreateEventResponse, error) {
	players := make([]playerdomain.Player, 0, len(request.Players))
	for _, name := range request.Players {
		player, err := h.store.PlayerByName(ctx, name)
		if err != nil {
			if errors.Is(err, playerdomain.ErrNotFound) {
				return CreateEventResponse{}, core.NewCommandError(
					http.StatusNotFound,
					err,
					core.WithReason(fmt.Sprintf("player '%s' not found", name)),
				)
			}
			return CreateEventResponse{}, err
		}
		players = append(players, player)
	}

	matchups, err := PlanMatchups(
		core.Map(players, func(p playerdomain.Player) uuid.UUID { return p.ID }),
		request.GamePairs,
		h.maxGames,
	)
	if err != nil {
		return CreateEventResponse{}, core.NewCommandError(http.StatusForbidden, err)
	}

	initialState, _, err := h.engine.InitialState(ctx)
	if err != nil {
		return CreateEventResponse{}, asEngineCommandError(err)
	}

	dashboardToken, err := playerdomain.NewToken()
	if err != nil {
		return CreateEventResponse{}, err
	}

	now := h.clock.Now()
	event := domain.New(request.Name, domain.PolicyRoster, initialState, dashboardToken, now)

	games := make([]playdomain.Game, 0, len(matchups))
	participants := make([]playdomain.Participant, 0, 2*len(matchups))
	for _, matchup := range matchups {
		game := playdomain.NewGame(event.ID, initialState, now)
		games = append(games, game)
		for seat, playerID := range matchup.Seats {
			participants = append(participants, playdomain.NewParticipant(game.ID, playerID, seat))
		}
	}

	if err := h.store.CreateEvent(ctx, event, games, participants); err != nil {
		if errors.Is(err, domain.ErrNameTaken) {
			return CreateEventResponse{}, core.NewCommandError(
				http.StatusForbidden,
				err,
				core.WithReason(fmt.Sprintf("event name '%s' is taken", request.Name)),
			)
		}
		return CreateEventResponse{}, err
	}

	h.notify(ctx, event, players, len(games))

	return CreateEventResponse{DashboardToken: dashboardToken, Games: len(games)}, nil
}

// notify is best effort. Event creation already committed.
func (h *CreateEventCommandHandler) notify(
	ctx context.Context,
	event domain.Event,
	players []playerdomain.Player,
	games int,
) {
	if h.email == nil {
		return
	}

	to := make([]string, 0, len(players))
	for _, player := range players {
		if player.Email != "" {
			to = append(to, player.Email)
		}
	}
	if len(to) == 0 {
		return
	}

	message := core.MailMessage{
		Subject: fmt.Sprintf("Event '%s' is open", event.Name),
		From:    h.sender,
		To:      to,
		BodyString: fmt.Sprintf(
			"Event '%s' has been created with %d scheduled games. Poll play-state to take your turns.",
			event.Name,
			games,
		),
	}
	if err := h.email.Send(message); err != nil {
		core.LogError(ctx, "failed to send event created email",
			zap.String("event", event.Name), zap.Error(err))
	}
}

func asEngineCommandError(err error) error {
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
