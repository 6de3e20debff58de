package domain

import (
	"time"

	"github.com/google/uuid"
)

// Game is one match between two seats within an event. It is open while
// end_timestamp is null and closed once the engine reports a terminal
// state.
type Game struct {
	ID             uuid.UUID  `db:"id"`
	EventID        uuid.UUID  `db:"event_id"`
	InitialState   string     `db:"initial_state"`
	StartTimestamp time.Time  `db:"start_timestamp"`
	EndTimestamp   *time.Time `db:"end_timestamp"`
}

func NewGame(eventID uuid.UUID, initialState string, now time.Time) Game {
	return Game{
		ID:             uuid.New(),
		EventID:        eventID,
		InitialState:   initialState,
		StartTimestamp: now,
	}
}

func (g Game) Finished() bool {
	return g.EndTimestamp != nil
}

// Participant binds a player to one of the two fixed seats of a game.
// Winner is set only when the game is over and that seat won.
type Participant struct {
	ID       uuid.UUID `db:"id"`
	GameID   uuid.UUID `db:"game_id"`
	PlayerID uuid.UUID `db:"player_id"`
	Seat     int       `db:"seat"`
	Winner   bool      `db:"winner"`
}

func NewParticipant(gameID, playerID uuid.UUID, seat int) Participant {
	return Participant{
		ID:       uuid.New(),
		GameID:   gameID,
		PlayerID: playerID,
		Seat:     seat,
	}
}

// OpponentSeat is the other of the two seats.
func OpponentSeat(seat int) int {
	return 1 - seat
}

// SeatParticipant finds the participant occupying the given seat.
func SeatParticipant(participants []Participant, seat int) (Participant, bool) {
	for _, p := range participants {
		if p.Seat == seat {
			return p, true
		}
	}
	return Participant{}, false
}
