package config

import (
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/arenalabs/matchpoint/internal/modules/env"

	"go.uber.org/zap"
)

const (
	PortEnv        = "PORT"
	DatabaseUrlEnv = "DATABASE_URL"
	RootPathEnv    = "ROOT_PATH"

	EnginePathEnv    = "ENGINE_PATH"
	EngineTimeoutEnv = "ENGINE_TIMEOUT"

	ThinkTimeLimitEnv   = "THINK_TIME_LIMIT"
	MaxEventGamesEnv    = "MAX_EVENT_GAMES"
	AutoCreateEventsEnv = "AUTO_CREATE_EVENTS"

	EmailServerHostEnv     = "EMAIL_SERVER_HOST"
	EmailServerUsernameEnv = "EMAIL_SERVER_USERNAME"
	EmailServerPasswordEnv = "EMAIL_SERVER_PASSWORD"
	EmailServerSenderEnv   = "EMAIL_SERVER_SENDER"
)

type EmailConfiguration struct {
	Host     *url.URL
	Username string
	Password string
	Sender   string
}

type Config struct {
	Logger *zap.Logger

	Port           int
	DatabaseURL    string
	MigrationsPath string

	EnginePath    string
	EngineTimeout time.Duration

	ThinkTimeLimit   time.Duration
	MaxEventGames    int
	AutoCreateEvents []string

	Email EmailConfiguration
}

func Load() (Config, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return Config{}, err
	}

	port := env.MustGetInt(PortEnv)
	dbURL := env.MustGetString(DatabaseUrlEnv)

	rootPath := env.MustGetString(RootPathEnv)
	migrationsPath := path.Join(rootPath, "db", "migrations")

	enginePath := env.MustGetString(EnginePathEnv)
	engineTimeout := env.GetDurationOrDefault(EngineTimeoutEnv, 10*time.Second)

	thinkTimeLimit := env.GetDurationOrDefault(ThinkTimeLimitEnv, 5*time.Minute)
	maxEventGames := env.GetIntOrDefault(MaxEventGamesEnv, 1000)

	autoCreateEvents := []string{"mirror"}
	if raw, found := os.LookupEnv(AutoCreateEventsEnv); found {
		autoCreateEvents = nil
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				autoCreateEvents = append(autoCreateEvents, name)
			}
		}
	}

	emailServerURL := env.MustGetURL(EmailServerHostEnv)
	emailServerUsername := env.MustGetString(EmailServerUsernameEnv)
	emailServerPassword := env.MustGetString(EmailServerPasswordEnv)
	emailServerSender := env.MustGetString(EmailServerSenderEnv)

	return Config{
		Logger:         logger,
		Port:           port,
		DatabaseURL:    dbURL,
		MigrationsPath: migrationsPath,

		EnginePath:    enginePath,
		EngineTimeout: engineTimeout,

		ThinkTimeLimit:   thinkTimeLimit,
		MaxEventGames:    maxEventGames,
		AutoCreateEvents: autoCreateEvents,

		Email: EmailConfiguration{
			Host:     emailServerURL,
			Username: emailServerUsername,
			Password: emailServerPassword,
			Sender:   emailServerSender,
		},
	}, nil
}
