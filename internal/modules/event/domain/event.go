package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("event not found")
	ErrNameTaken    = errors.New("event name already exists")
	ErrTooManyGames = errors.New("event exceeds the maximum game count")
)

// Policy decides how players are matched into games within an event.
type Policy string

const (
	// PolicyMirror seats a player against themself, producing a
	// self-contained sequence of turns for automated self-testing.
	PolicyMirror Policy = "mirror"
	// PolicyRoster pre-schedules games between distinct players.
	PolicyRoster Policy = "roster"
)

// Event is a named competition context that scopes games. The initial
// state is captured from the engine when the event is created, so every
// game in the event starts from the same position.
type Event struct {
	ID             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	Policy         Policy    `db:"policy"`
	InitialState   string    `db:"initial_state"`
	DashboardToken string    `db:"dashboard_token"`
	CreatedAt      time.Time `db:"created_at"`
}

func New(name string, policy Policy, initialState, dashboardToken string, now time.Time) Event {
	return Event{
		ID:             uuid.New(),
		Name:           name,
		Policy:         policy,
		InitialState:   initialState,
		DashboardToken: dashboardToken,
		CreatedAt:      now,
	}
}
