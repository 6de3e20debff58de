package queries

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/event/domain"
	"github.com/arenalabs/matchpoint/internal/modules/play"
	playdomain "github.com/arenalabs/matchpoint/internal/modules/play/domain"

	"github.com/eskrenkovic/mediator-go"
	"github.com/google/uuid"
)

// EventReader is the slice of the entity store this query needs.
type EventReader interface {
	EventByName(ctx context.Context, name string) (domain.Event, error)
	GamesForEvent(ctx context.Context, eventID uuid.UUID) ([]play.GameDetail, error)
}

type GetEventDataQuery struct {
	Name           string `json:"name"`
	DashboardToken string `json:"dashboard_token"`
}

func (q GetEventDataQuery) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("invalid Name - '%s'", q.Name)
	}

	if q.DashboardToken == "" {
		return fmt.Errorf("invalid DashboardToken - empty")
	}

	return nil
}

// Standing is one player's running score within an event. Forfeits are
// reported separately from oracle results and take precedence over
// them.
type Standing struct {
	Player        string `json:"player"`
	Ongoing       int    `json:"ongoing"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Draws         int    `json:"draws"`
	ForfeitWins   int    `json:"forfeit_wins"`
	ForfeitLosses int    `json:"forfeit_losses"`
}

type GameSummary struct {
	ID          uuid.UUID  `json:"id"`
	Players     []string   `json:"players"`
	Actions     int        `json:"actions"`
	Finished    bool       `json:"finished"`
	WinnerSeat  *int       `json:"winner_seat,omitempty"`
	ForfeitSeat *int       `json:"forfeit_seat,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
}

type GetEventDataResponse struct {
	Event     string        `json:"event"`
	Standings []Standing    `json:"standings"`
	Games     []GameSummary `json:"games"`
}

func HandleGetEventData(w http.ResponseWriter, r *http.Request) {
	query, err := core.RequestBody[GetEventDataQuery](r)
	if err != nil {
		core.WriteBadRequest(w, r, err)
		return
	}

	response, err := mediator.Send[GetEventDataQuery, GetEventDataResponse](
		r.Context(),
		query,
	)
	if err != nil {
		core.WriteCommandError(w, r, err)
		return
	}

	core.WriteOK(w, r, response)
}

type GetEventDataQueryHandler struct {
	store        EventReader
	forfeitLimit time.Duration
}

func NewGetEventDataQueryHandler(store EventReader, forfeitLimit time.Duration) *GetEventDataQueryHandler {
	return &GetEventDataQueryHandler{store: store, forfeitLimit: forfeitLimit}
}

func (h *GetEventDataQueryHandler) Handle(
	ctx context.Context,
	request GetEventDataQuery,
) (GetEventDataResponse, error) {
	event, err := h.store.EventByName(ctx, request.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return GetEventDataResponse{}, core.NewCommandError(http.StatusNotFound, err)
		}
		return GetEventDataResponse{}, err
	}

	if request.DashboardToken != event.DashboardToken {
		return GetEventDataResponse{}, core.NewCommandError(
			http.StatusForbidden,
			playdomain.ErrAuthMismatch,
			core.WithReason("dashboard token does not match"),
		)
	}

	games, err := h.store.GamesForEvent(ctx, event.ID)
	if err != nil {
		return GetEventDataResponse{}, err
	}

	standings := make(map[string]*Standing)
	tally := func(playerName string) *Standing {
		s, ok := standings[playerName]
		if !ok {
			s = &Standing{Player: playerName}
			standings[playerName] = s
		}
		return s
	}

	summaries := make([]GameSummary, 0, len(games))
	order := make([]string, 0)

	for _, detail := range games {
		summary := GameSummary{
			ID: detail.Game.ID,
			Players: core.Map(detail.Participants, func(s play.SeatDetail) string {
				return s.PlayerName
			}),
			Actions:  len(detail.Actions),
			Finished: detail.Game.Finished(),
			EndedAt:  detail.Game.EndTimestamp,
		}

		for _, seat := range detail.Participants {
			if _, ok := standings[seat.PlayerName]; !ok {
				order = append(order, seat.PlayerName)
			}
			tally(seat.PlayerName)
		}

		// Forfeits are settled only once a game finishes; an open game
		// with an over-limit move still counts as ongoing.
		var forfeit *int
		if detail.Game.Finished() {
			forfeit = play.ForfeitSeat(detail.Actions, h.forfeitLimit)
			summary.ForfeitSeat = forfeit
		}

		switch {
		case forfeit != nil:
			// A forfeit decides the game regardless of what the oracle
			// said about the final state.
			for _, seat := range detail.Participants {
				if seat.Participant.Seat == playdomain.OpponentSeat(*forfeit) {
					tally(seat.PlayerName).ForfeitWins++
				} else {
					tally(seat.PlayerName).ForfeitLosses++
				}
			}
		case !detail.Game.Finished():
			for _, seat := range detail.Participants {
				tally(seat.PlayerName).Ongoing++
			}
		default:
			decisive := false
			for _, seat := range detail.Participants {
				if seat.Participant.Winner {
					decisive = true
					winnerSeat := seat.Participant.Seat
					summary.WinnerSeat = &winnerSeat
				}
			}
			for _, seat := range detail.Participants {
				switch {
				case !decisive:
					tally(seat.PlayerName).Draws++
				case seat.Participant.Winner:
					tally(seat.PlayerName).Wins++
				default:
					tally(seat.PlayerName).Losses++
				}
			}
		}

		summaries = append(summaries, summary)
	}

	response := GetEventDataResponse{
		Event:     event.Name,
		Standings: make([]Standing, 0, len(order)),
		Games:     summaries,
	}
	for _, name := range order {
		response.Standings = append(response.Standings, *standings[name])
	}

	return response, nil
}
