package play

import (
	"context"
	"sort"
	"sync"
	"time"

	eventdomain "github.com/arenalabs/matchpoint/internal/modules/event/domain"
	"github.com/arenalabs/matchpoint/internal/modules/play/domain"
	playerdomain "github.com/arenalabs/matchpoint/internal/modules/player/domain"

	"github.com/google/uuid"
)

// MemoryStore keeps the entity store in process memory behind a single
// mutex, so every method is one atomic unit. It backs unit tests and
// local runs without Postgres.
type MemoryStore struct {
	mu sync.Mutex

	players      map[uuid.UUID]playerdomain.Player
	events       map[uuid.UUID]eventdomain.Event
	games        map[uuid.UUID]domain.Game
	participants map[uuid.UUID][]domain.Participant
	actions      map[uuid.UUID][]domain.Action
	actionGames  map[uuid.UUID]uuid.UUID
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:      make(map[uuid.UUID]playerdomain.Player),
		events:       make(map[uuid.UUID]eventdomain.Event),
		games:        make(map[uuid.UUID]domain.Game),
		participants: make(map[uuid.UUID][]domain.Participant),
		actions:      make(map[uuid.UUID][]domain.Action),
		actionGames:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *MemoryStore) CreatePlayer(_ context.Context, player playerdomain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.players {
		if existing.Name == player.Name {
			return playerdomain.ErrNameTaken
		}
	}

	s.players[player.ID] = player
	return nil
}

func (s *MemoryStore) PlayerByName(_ context.Context, name string) (playerdomain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, player := range s.players {
		if player.Name == name {
			return player, nil
		}
	}

	return playerdomain.Player{}, playerdomain.ErrNotFound
}

func (s *MemoryStore) EventByName(_ context.Context, name string) (eventdomain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventByNameLocked(name)
}

func (s *MemoryStore) eventByNameLocked(name string) (eventdomain.Event, error) {
	for _, event := range s.events {
		if event.Name == name {
			return event, nil
		}
	}
	return eventdomain.Event{}, eventdomain.ErrNotFound
}

func (s *MemoryStore) GetOrCreateEvent(_ context.Context, event eventdomain.Event) (eventdomain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, err := s.eventByNameLocked(event.Name); err == nil {
		return existing, nil
	}

	s.events[event.ID] = event
	return event, nil
}

func (s *MemoryStore) CreateEvent(
	_ context.Context,
	event eventdomain.Event,
	games []domain.Game,
	participants []domain.Participant,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.eventByNameLocked(event.Name); err == nil {
		return eventdomain.ErrNameTaken
	}

	staged := make(map[uuid.UUID][]domain.Participant, len(games))
	for _, p := range participants {
		if len(staged[p.GameID]) >= 2 {
			return domain.ErrGameFull
		}
		staged[p.GameID] = append(staged[p.GameID], p)
	}

	s.events[event.ID] = event
	for _, g := range games {
		s.games[g.ID] = g
		s.participants[g.ID] = staged[g.ID]
	}

	return nil
}

func (s *MemoryStore) FindOrCreateMirrorGame(
	_ context.Context,
	event eventdomain.Event,
	player playerdomain.Player,
	now time.Time,
) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, game := range s.openGamesLocked(event.ID, player.ID) {
		return game, nil
	}

	game := domain.NewGame(event.ID, event.InitialState, now)
	s.games[game.ID] = game
	s.participants[game.ID] = []domain.Participant{
		domain.NewParticipant(game.ID, player.ID, 0),
		domain.NewParticipant(game.ID, player.ID, 1),
	}

	return game, nil
}

func (s *MemoryStore) openGamesLocked(eventID, playerID uuid.UUID) []domain.Game {
	var open []domain.Game
	for _, game := range s.games {
		if game.EventID != eventID || game.Finished() {
			continue
		}
		for _, p := range s.participants[game.ID] {
			if p.PlayerID == playerID {
				open = append(open, game)
				break
			}
		}
	}

	sort.Slice(open, func(i, j int) bool {
		if open[i].StartTimestamp.Equal(open[j].StartTimestamp) {
			return open[i].ID.String() < open[j].ID.String()
		}
		return open[i].StartTimestamp.Before(open[j].StartTimestamp)
	})

	return open
}

func (s *MemoryStore) OpenGamesForPlayer(_ context.Context, eventID, playerID uuid.UUID) ([]OpenGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	games := s.openGamesLocked(eventID, playerID)
	open := make([]OpenGame, 0, len(games))
	for _, game := range games {
		open = append(open, OpenGame{
			Game:         game,
			Participants: append([]domain.Participant(nil), s.participants[game.ID]...),
			LastAction:   s.lastActionLocked(game.ID),
		})
	}

	return open, nil
}

func (s *MemoryStore) GameByID(_ context.Context, id uuid.UUID) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (s *MemoryStore) AddParticipant(_ context.Context, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[participant.GameID]; !ok {
		return domain.ErrGameNotFound
	}

	existing := s.participants[participant.GameID]
	if len(existing) >= 2 {
		return domain.ErrGameFull
	}
	if _, taken := domain.SeatParticipant(existing, participant.Seat); taken {
		return domain.ErrGameFull
	}

	s.participants[participant.GameID] = append(existing, participant)
	return nil
}

func (s *MemoryStore) lastActionLocked(gameID uuid.UUID) *domain.Action {
	actions := s.actions[gameID]
	if len(actions) == 0 {
		return nil
	}

	last := actions[0]
	for _, a := range actions[1:] {
		if a.Number > last.Number {
			last = a
		}
	}
	return &last
}

func (s *MemoryStore) NextAction(_ context.Context, gameID uuid.UUID, build NextActionFunc) (domain.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return domain.Action{}, domain.ErrGameNotFound
	}

	if game.Finished() {
		return domain.Action{}, domain.ErrGameFinished
	}

	if last := s.lastActionLocked(gameID); last != nil && !last.Submitted() {
		return *last, nil
	}

	participants := append([]domain.Participant(nil), s.participants[gameID]...)
	action, err := build(game, participants, s.lastActionLocked(gameID))
	if err != nil {
		return domain.Action{}, err
	}

	s.actions[gameID] = append(s.actions[gameID], action)
	s.actionGames[action.ID] = gameID
	return action, nil
}

func (s *MemoryStore) ActionByID(_ context.Context, id uuid.UUID) (domain.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, _, err := s.actionByIDLocked(id)
	if err != nil {
		return domain.Action{}, err
	}
	return action, nil
}

func (s *MemoryStore) actionByIDLocked(id uuid.UUID) (domain.Action, int, error) {
	gameID, ok := s.actionGames[id]
	if !ok {
		return domain.Action{}, 0, domain.ErrActionNotFound
	}

	for i, a := range s.actions[gameID] {
		if a.ID == id {
			return a, i, nil
		}
	}

	return domain.Action{}, 0, domain.ErrActionNotFound
}

func (s *MemoryStore) CompleteAction(_ context.Context, action domain.Action, outcome Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, idx, err := s.actionByIDLocked(action.ID)
	if err != nil {
		return err
	}

	if stored.Submitted() {
		return domain.ErrAlreadySubmitted
	}

	s.actions[stored.GameID][idx] = action

	if !outcome.Terminal {
		return nil
	}

	game := s.games[stored.GameID]
	game.EndTimestamp = action.SubmitTimestamp
	s.games[stored.GameID] = game

	if outcome.WinnerSeat != nil {
		for i, p := range s.participants[stored.GameID] {
			if p.Seat == *outcome.WinnerSeat {
				p.Winner = true
				s.participants[stored.GameID][i] = p
			}
		}
	}

	return nil
}

func (s *MemoryStore) GamesForEvent(_ context.Context, eventID uuid.UUID) ([]GameDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var details []GameDetail
	for _, game := range s.games {
		if game.EventID != eventID {
			continue
		}

		seats := make([]SeatDetail, 0, 2)
		for _, p := range s.participants[game.ID] {
			seats = append(seats, SeatDetail{
				Participant: p,
				PlayerName:  s.players[p.PlayerID].Name,
			})
		}

		actions := append([]domain.Action(nil), s.actions[game.ID]...)
		sort.Slice(actions, func(i, j int) bool { return actions[i].Number < actions[j].Number })

		details = append(details, GameDetail{
			Game:         game,
			Participants: seats,
			Actions:      actions,
		})
	}

	sort.Slice(details, func(i, j int) bool {
		if details[i].Game.StartTimestamp.Equal(details[j].Game.StartTimestamp) {
			return details[i].Game.ID.String() < details[j].Game.ID.String()
		}
		return details[i].Game.StartTimestamp.Before(details[j].Game.StartTimestamp)
	})

	return details, nil
}
