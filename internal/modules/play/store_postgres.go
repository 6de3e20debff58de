package play

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	eventdomain "github.com/arenalabs/matchpoint/internal/modules/event/domain"
	"github.com/arenalabs/matchpoint/internal/modules/play/domain"
	playerdomain "github.com/arenalabs/matchpoint/internal/modules/player/domain"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore implements Store on Postgres. Compound operations take
// row locks on the owning event or game so concurrent find-or-create
// calls serialize; the schema's unique constraints are the backstop.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *PostgresStore) CreatePlayer(ctx context.Context, player playerdomain.Player) error {
	const stmt = `
		INSERT INTO
			player (id, name, email, token, created_at)
		VALUES
			(:id, :name, :email, :token, :created_at);`
	_, err := tql.Exec(ctx, s.db, stmt, player)
	if isUniqueViolation(err) {
		return playerdomain.ErrNameTaken
	}
	return err
}

func (s *PostgresStore) PlayerByName(ctx context.Context, name string) (playerdomain.Player, error) {
	const query = `
		SELECT
			id, name, email, token, created_at
		FROM
			player
		WHERE
			name = $1;`
	player, err := tql.QueryFirst[playerdomain.Player](ctx, s.db, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return playerdomain.Player{}, playerdomain.ErrNotFound
	}
	return player, err
}

func (s *PostgresStore) EventByName(ctx context.Context, name string) (eventdomain.Event, error) {
	return eventByName(ctx, s.db, name)
}

func eventByName(ctx context.Context, q tql.Querier, name string) (eventdomain.Event, error) {
	const query = `
		SELECT
			id, name, policy, initial_state, dashboard_token, created_at
		FROM
			event
		WHERE
			name = $1;`
	event, err := tql.QueryFirst[eventdomain.Event](ctx, q, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return eventdomain.Event{}, eventdomain.ErrNotFound
	}
	return event, err
}

func (s *PostgresStore) GetOrCreateEvent(ctx context.Context, event eventdomain.Event) (eventdomain.Event, error) {
	const stmt = `
		INSERT INTO
			event (id, name, policy, initial_state, dashboard_token, created_at)
		VALUES
			(:id, :name, :policy, :initial_state, :dashboard_token, :created_at)
		ON CONFLICT (name) DO NOTHING;`
	if _, err := tql.Exec(ctx, s.db, stmt, event); err != nil {
		return eventdomain.Event{}, err
	}

	return s.EventByName(ctx, event.Name)
}

func (s *PostgresStore) CreateEvent(
	ctx context.Context,
	event eventdomain.Event,
	games []domain.Game,
	participants []domain.Participant,
) error {
	return core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		const eventStmt = `
			INSERT INTO
				event (id, name, policy, initial_state, dashboard_token, created_at)
			VALUES
				(:id, :name, :policy, :initial_state, :dashboard_token, :created_at);`
		if _, err := tql.Exec(ctx, tx, eventStmt, event); err != nil {
			if isUniqueViolation(err) {
				return eventdomain.ErrNameTaken
			}
			return err
		}

		for _, game := range games {
			if err := insertGame(ctx, tx, game); err != nil {
				return err
			}
		}

		for _, participant := range participants {
			if err := insertParticipant(ctx, tx, participant); err != nil {
				return err
			}
		}

		return nil
	})
}

func insertGame(ctx context.Context, tx *sql.Tx, game domain.Game) error {
	const stmt = `
		INSERT INTO
			game (id, event_id, initial_state, start_timestamp, end_timestamp)
		VALUES
			(:id, :event_id, :initial_state, :start_timestamp, :end_timestamp);`
	_, err := tql.Exec(ctx, tx, stmt, game)
	return err
}

func insertParticipant(ctx context.Context, tx *sql.Tx, participant domain.Participant) error {
	const stmt = `
		INSERT INTO
			game_participant (id, game_id, player_id, seat, winner)
		VALUES
			(:id, :game_id, :player_id, :seat, :winner);`
	_, err := tql.Exec(ctx, tx, stmt, participant)
	if isUniqueViolation(err) {
		return domain.ErrGameFull
	}
	return err
}

const gameColumns = `g.id, g.event_id, g.initial_state, g.start_timestamp, g.end_timestamp`

func (s *PostgresStore) FindOrCreateMirrorGame(
	ctx context.Context,
	event eventdomain.Event,
	player playerdomain.Player,
	now time.Time,
) (domain.Game, error) {
	var game domain.Game

	err := core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		// Serialize matchmaking per event: concurrent read-then-create
		// for the same event queues up on this lock.
		const lockStmt = `SELECT id FROM event WHERE id = $1 FOR UPDATE;`
		if _, err := tql.QueryFirst[uuid.UUID](ctx, tx, lockStmt, event.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return eventdomain.ErrNotFound
			}
			return err
		}

		const openQuery = `
			SELECT DISTINCT
				` + gameColumns + `
			FROM
				game g
				JOIN game_participant p ON p.game_id = g.id
			WHERE
				g.event_id = $1
				AND g.end_timestamp IS NULL
				AND p.player_id = $2
			ORDER BY
				g.start_timestamp, g.id
			LIMIT 1;`
		existing, err := tql.QueryFirst[domain.Game](ctx, tx, openQuery, event.ID, player.ID)
		switch {
		case err == nil:
			game = existing
			return nil
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		game = domain.NewGame(event.ID, event.InitialState, now)
		if err := insertGame(ctx, tx, game); err != nil {
			return err
		}

		for seat := 0; seat < 2; seat++ {
			if err := insertParticipant(ctx, tx, domain.NewParticipant(game.ID, player.ID, seat)); err != nil {
				return err
			}
		}

		return nil
	})

	return game, err
}

func (s *PostgresStore) OpenGamesForPlayer(ctx context.Context, eventID, playerID uuid.UUID) ([]OpenGame, error) {
	const query = `
		SELECT DISTINCT
			` + gameColumns + `
		FROM
			game g
			JOIN game_participant p ON p.game_id = g.id
		WHERE
			g.event_id = $1
			AND g.end_timestamp IS NULL
			AND p.player_id = $2
		ORDER BY
			g.start_timestamp, g.id;`
	games, err := tql.Query[domain.Game](ctx, s.db, query, eventID, playerID)
	if err != nil {
		return nil, err
	}

	open := make([]OpenGame, 0, len(games))
	for _, game := range games {
		participants, err := s.participantsForGame(ctx, s.db, game.ID)
		if err != nil {
			return nil, err
		}

		last, err := lastAction(ctx, s.db, game.ID)
		if err != nil {
			return nil, err
		}

		open = append(open, OpenGame{Game: game, Participants: participants, LastAction: last})
	}

	return open, nil
}

func (s *PostgresStore) participantsForGame(
	ctx context.Context,
	q tql.Querier,
	gameID uuid.UUID,
) ([]domain.Participant, error) {
	const query = `
		SELECT
			id, game_id, player_id, seat, winner
		FROM
			game_participant
		WHERE
			game_id = $1
		ORDER BY
			seat;`
	return tql.Query[domain.Participant](ctx, q, query, gameID)
}

func lastAction(ctx context.Context, q tql.Querier, gameID uuid.UUID) (*domain.Action, error) {
	const query = `
		SELECT
			id, game_id, player_id, seat, number, before_state,
			notation, after_state, create_timestamp, submit_timestamp
		FROM
			action
		WHERE
			game_id = $1
		ORDER BY
			number DESC
		LIMIT 1;`
	action, err := tql.QueryFirst[domain.Action](ctx, q, query, gameID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &action, nil
}

func (s *PostgresStore) GameByID(ctx context.Context, id uuid.UUID) (domain.Game, error) {
	const query = `
		SELECT
			id, event_id, initial_state, start_timestamp, end_timestamp
		FROM
			game
		WHERE
			id = $1;`
	game, err := tql.QueryFirst[domain.Game](ctx, s.db, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, err
}

func (s *PostgresStore) AddParticipant(ctx context.Context, participant domain.Participant) error {
	return core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := lockGame(ctx, tx, participant.GameID); err != nil {
			return err
		}

		const countQuery = `SELECT count(id) FROM game_participant WHERE game_id = $1;`
		count, err := tql.QueryFirst[int](ctx, tx, countQuery, participant.GameID)
		if err != nil {
			return err
		}
		if count >= 2 {
			return domain.ErrGameFull
		}

		return insertParticipant(ctx, tx, participant)
	})
}

func lockGame(ctx context.Context, tx *sql.Tx, gameID uuid.UUID) error {
	const lockStmt = `SELECT id FROM game WHERE id = $1 FOR UPDATE;`
	if _, err := tql.QueryFirst[uuid.UUID](ctx, tx, lockStmt, gameID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrGameNotFound
		}
		return err
	}
	return nil
}

func (s *PostgresStore) NextAction(
	ctx context.Context,
	gameID uuid.UUID,
	build NextActionFunc,
) (domain.Action, error) {
	var action domain.Action

	err := core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := lockGame(ctx, tx, gameID); err != nil {
			return err
		}

		const gameQuery = `
			SELECT
				id, event_id, initial_state, start_timestamp, end_timestamp
			FROM
				game
			WHERE
				id = $1;`
		game, err := tql.QueryFirst[domain.Game](ctx, tx, gameQuery, gameID)
		if err != nil {
			return err
		}

		if game.Finished() {
			return domain.ErrGameFinished
		}

		last, err := lastAction(ctx, tx, gameID)
		if err != nil {
			return err
		}

		if last != nil && !last.Submitted() {
			action = *last
			return nil
		}

		participants, err := s.participantsForGame(ctx, tx, gameID)
		if err != nil {
			return err
		}

		action, err = build(game, participants, last)
		if err != nil {
			return err
		}

		const stmt = `
			INSERT INTO
				action (id, game_id, player_id, seat, number, before_state,
					notation, after_state, create_timestamp, submit_timestamp)
			VALUES
				(:id, :game_id, :player_id, :seat, :number, :before_state,
					:notation, :after_state, :create_timestamp, :submit_timestamp);`
		_, err = tql.Exec(ctx, tx, stmt, action)
		return err
	})

	return action, err
}

func (s *PostgresStore) ActionByID(ctx context.Context, id uuid.UUID) (domain.Action, error) {
	const query = `
		SELECT
			id, game_id, player_id, seat, number, before_state,
			notation, after_state, create_timestamp, submit_timestamp
		FROM
			action
		WHERE
			id = $1;`
	action, err := tql.QueryFirst[domain.Action](ctx, s.db, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Action{}, domain.ErrActionNotFound
	}
	return action, err
}

type pendingRow struct {
	SubmitTimestamp *time.Time `db:"submit_timestamp"`
}

func (s *PostgresStore) CompleteAction(ctx context.Context, action domain.Action, outcome Outcome) error {
	return core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		const pendingQuery = `SELECT submit_timestamp FROM action WHERE id = $1 FOR UPDATE;`
		stored, err := tql.QueryFirst[pendingRow](ctx, tx, pendingQuery, action.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return domain.ErrActionNotFound
		case err != nil:
			return err
		case stored.SubmitTimestamp != nil:
			return domain.ErrAlreadySubmitted
		}

		const stmt = `
			UPDATE
				action
			SET
				notation = $2, after_state = $3, submit_timestamp = $4
			WHERE
				id = $1;`
		if _, err := tql.Exec(ctx, tx, stmt, action.ID, action.Notation, action.AfterState, action.SubmitTimestamp); err != nil {
			return err
		}

		if !outcome.Terminal {
			return nil
		}

		const endStmt = `UPDATE game SET end_timestamp = $2 WHERE id = $1;`
		if _, err := tql.Exec(ctx, tx, endStmt, action.GameID, action.SubmitTimestamp); err != nil {
			return err
		}

		if outcome.WinnerSeat != nil {
			const winnerStmt = `
				UPDATE
					game_participant
				SET
					winner = true
				WHERE
					game_id = $1 AND seat = $2;`
			if _, err := tql.Exec(ctx, tx, winnerStmt, action.GameID, *outcome.WinnerSeat); err != nil {
				return err
			}
		}

		return nil
	})
}

type seatRow struct {
	ID         uuid.UUID `db:"id"`
	GameID     uuid.UUID `db:"game_id"`
	PlayerID   uuid.UUID `db:"player_id"`
	Seat       int       `db:"seat"`
	Winner     bool      `db:"winner"`
	PlayerName string    `db:"player_name"`
}

func (s *PostgresStore) GamesForEvent(ctx context.Context, eventID uuid.UUID) ([]GameDetail, error) {
	var details []GameDetail

	// Repeatable read keeps the standings snapshot consistent across
	// the per-game queries.
	err := core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		const gamesQuery = `
			SELECT
				id, event_id, initial_state, start_timestamp, end_timestamp
			FROM
				game
			WHERE
				event_id = $1
			ORDER BY
				start_timestamp, id;`
		games, err := tql.Query[domain.Game](ctx, tx, gamesQuery, eventID)
		if err != nil {
			return err
		}

		details = make([]GameDetail, 0, len(games))
		for _, game := range games {
			const seatsQuery = `
				SELECT
					p.id, p.game_id, p.player_id, p.seat, p.winner, pl.name AS player_name
				FROM
					game_participant p
					JOIN player pl ON pl.id = p.player_id
				WHERE
					p.game_id = $1
				ORDER BY
					p.seat;`
			rows, err := tql.Query[seatRow](ctx, tx, seatsQuery, game.ID)
			if err != nil {
				return err
			}

			seats := make([]SeatDetail, 0, len(rows))
			for _, row := range rows {
				seats = append(seats, SeatDetail{
					Participant: domain.Participant{
						ID:       row.ID,
						GameID:   row.GameID,
						PlayerID: row.PlayerID,
						Seat:     row.Seat,
						Winner:   row.Winner,
					},
					PlayerName: row.PlayerName,
				})
			}

			const actionsQuery = `
				SELECT
					id, game_id, player_id, seat, number, before_state,
					notation, after_state, create_timestamp, submit_timestamp
				FROM
					action
				WHERE
					game_id = $1
				ORDER BY
					number;`
			actions, err := tql.Query[domain.Action](ctx, tx, actionsQuery, game.ID)
			if err != nil {
				return err
			}

			details = append(details, GameDetail{Game: game, Participants: seats, Actions: actions})
		}

		return nil
	}, core.WithIsolationLevel(sql.LevelRepeatableRead), core.WithReadOnly())

	return details, err
}
