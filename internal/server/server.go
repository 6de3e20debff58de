package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"strconv"

	"github.com/arenalabs/matchpoint/internal/config"
	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/engine"
	eventcommands "github.com/arenalabs/matchpoint/internal/modules/event/commands"
	eventqueries "github.com/arenalabs/matchpoint/internal/modules/event/queries"
	"github.com/arenalabs/matchpoint/internal/modules/play"
	playcommands "github.com/arenalabs/matchpoint/internal/modules/play/commands"
	playercommands "github.com/arenalabs/matchpoint/internal/modules/player/commands"
	statequeries "github.com/arenalabs/matchpoint/internal/modules/state/queries"

	"github.com/eskrenkovic/mediator-go"
	"github.com/eskrenkovic/migrate-go"
	"github.com/go-chi/chi"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Server interface {
	Start() error
	Stop() error
}

var _ Server = &HTTPServer{}

// HTTPServer acts as the composition root for an application.
type HTTPServer struct {
	server *http.Server
	db     *sql.DB
}

func NewHTTPServer(config config.Config) (Server, error) {
	baseCtx := context.Background()

	zap.ReplaceGlobals(config.Logger)

	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := migrate.Run(baseCtx, db, config.MigrationsPath); err != nil {
		return nil, err
	}

	requestLoggingBehavior := core.RequestLoggingBehavior{Logger: config.Logger}
	handlerErrorLoggingBehavior := core.HandlerErrorLoggingBehavior{Logger: config.Logger}
	requestValidationBehavior := core.RequestValidationBehavior{}

	mediator.RegisterPipelineBehavior(&requestLoggingBehavior)
	mediator.RegisterPipelineBehavior(&handlerErrorLoggingBehavior)
	mediator.RegisterPipelineBehavior(&requestValidationBehavior)

	store := play.NewPostgresStore(db)
	oracle := engine.NewExecEngine(config.EnginePath, config.EngineTimeout)
	clock := core.NewSystemClock()

	matchmaker := play.NewMatchmaker(store, clock)
	lifecycle := play.NewLifecycle(store, oracle, clock)
	emailClient := core.NewEmailClient(config.Email.Host, config.Email.Username, config.Email.Password)

	// handler registration

	// player

	registerPlayerHandler := playercommands.NewRegisterPlayerCommandHandler(store, clock)
	err = mediator.RegisterRequestHandler[playercommands.RegisterPlayerCommand, playercommands.RegisterPlayerResponse](
		registerPlayerHandler,
	)
	if err != nil {
		return nil, err
	}

	// event

	createEventHandler := eventcommands.NewCreateEventCommandHandler(
		store,
		oracle,
		emailClient,
		clock,
		config.Email.Sender,
		config.MaxEventGames,
	)
	err = mediator.RegisterRequestHandler[eventcommands.CreateEventCommand, eventcommands.CreateEventResponse](
		createEventHandler,
	)
	if err != nil {
		return nil, err
	}

	getEventDataHandler := eventqueries.NewGetEventDataQueryHandler(store, config.ThinkTimeLimit)
	err = mediator.RegisterRequestHandler[eventqueries.GetEventDataQuery, eventqueries.GetEventDataResponse](
		getEventDataHandler,
	)
	if err != nil {
		return nil, err
	}

	// play

	requestTurnHandler := playcommands.NewRequestTurnCommandHandler(
		store,
		matchmaker,
		lifecycle,
		oracle,
		clock,
		config.AutoCreateEvents,
	)
	err = mediator.RegisterRequestHandler[playcommands.RequestTurnCommand, playcommands.RequestTurnResponse](
		requestTurnHandler,
	)
	if err != nil {
		return nil, err
	}

	submitActionHandler := playcommands.NewSubmitActionCommandHandler(lifecycle)
	err = mediator.RegisterRequestHandler[playcommands.SubmitActionCommand, playcommands.SubmitActionResponse](
		submitActionHandler,
	)
	if err != nil {
		return nil, err
	}

	// state

	err = mediator.RegisterRequestHandler[statequeries.GetInitialStateQuery, statequeries.StateResponse](
		statequeries.NewGetInitialStateQueryHandler(oracle),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[statequeries.GetLegalActionsQuery, statequeries.GetLegalActionsResponse](
		statequeries.NewGetLegalActionsQueryHandler(oracle),
	)
	if err != nil {
		return nil, err
	}

	err = mediator.RegisterRequestHandler[statequeries.ApplyActionQuery, statequeries.StateResponse](
		statequeries.NewApplyActionQueryHandler(oracle),
	)
	if err != nil {
		return nil, err
	}

	// http

	router := chi.NewRouter()
	router.Use(core.CorrelationIDHTTPMiddleware)

	router.Post("/player/create", playercommands.HandleRegisterPlayer)
	router.Post("/event/create", eventcommands.HandleCreateEvent)
	router.Post("/event/data", eventqueries.HandleGetEventData)

	router.Post("/aivai/play-state", playcommands.HandleRequestTurn)
	router.Post("/aivai/submit-action", playcommands.HandleSubmitAction)

	router.Get("/state/initial", statequeries.HandleGetInitialState)
	router.Get("/state/{state}/actions", statequeries.HandleGetLegalActions)
	router.Get("/state/{state}/act/{action}", statequeries.HandleApplyAction)

	server := http.Server{
		Addr:        net.JoinHostPort("", strconv.Itoa(config.Port)),
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}

	return &HTTPServer{server: &server, db: db}, nil
}

func (s *HTTPServer) Start() error {
	return s.server.ListenAndServe()
}

func (s *HTTPServer) Stop() error {
	if err := s.server.Close(); err != nil {
		return err
	}
	return s.db.Close()
}
