package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action is one half-move. It is created pending, with only the
// pre-move state, and completed exactly once on submission. Sequence
// numbers within a game are dense, starting at 1.
type Action struct {
	ID              uuid.UUID  `db:"id"`
	GameID          uuid.UUID  `db:"game_id"`
	PlayerID        uuid.UUID  `db:"player_id"`
	Seat            int        `db:"seat"`
	Number          int        `db:"number"`
	BeforeState     string     `db:"before_state"`
	Notation        string     `db:"notation"`
	AfterState      string     `db:"after_state"`
	CreateTimestamp time.Time  `db:"create_timestamp"`
	SubmitTimestamp *time.Time `db:"submit_timestamp"`
}

func NewAction(gameID, playerID uuid.UUID, seat, number int, beforeState string, now time.Time) Action {
	return Action{
		ID:              uuid.New(),
		GameID:          gameID,
		PlayerID:        playerID,
		Seat:            seat,
		Number:          number,
		BeforeState:     beforeState,
		CreateTimestamp: now,
	}
}

func (a Action) Submitted() bool {
	return a.SubmitTimestamp != nil
}

// ThinkTime is the elapsed time between creation and submission. It is
// only defined for submitted actions.
func (a Action) ThinkTime() (time.Duration, bool) {
	if a.SubmitTimestamp == nil {
		return 0, false
	}
	return a.SubmitTimestamp.Sub(a.CreateTimestamp), true
}
