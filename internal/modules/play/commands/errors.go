package commands

import (
	"errors"
	"net/http"

	"github.com/arenalabs/matchpoint/internal/modules/core"
	"github.com/arenalabs/matchpoint/internal/modules/engine"
	eventdomain "github.com/arenalabs/matchpoint/internal/modules/event/domain"
	"github.com/arenalabs/matchpoint/internal/modules/play/domain"
	playerdomain "github.com/arenalabs/matchpoint/internal/modules/player/domain"
)

// statusFor translates domain failures into transport status codes.
// Token mismatches are 403; acting on someone else's action or a spent
// action is 401. Engine failures surface as 422 with the engine's
// stderr attached so bot authors can see what the referee said.
func statusFor(err error) error {
	var engineErr *engine.Error
	if errors.As(err, &engineErr) {
		return core.NewCommandError(
			http.StatusUnprocessableEntity,
			err,
			core.WithReason(engineErr.Diagnostic),
		)
	}

	switch {
	case errors.Is(err, playerdomain.ErrNotFound),
		errors.Is(err, eventdomain.ErrNotFound),
		errors.Is(err, domain.ErrGameNotFound),
		errors.Is(err, domain.ErrActionNotFound):
		return core.NewCommandError(http.StatusNotFound, err)
	case errors.Is(err, playerdomain.ErrTokenInvalid):
		return core.NewCommandError(http.StatusForbidden, err)
	case errors.Is(err, domain.ErrAuthMismatch),
		errors.Is(err, domain.ErrAlreadySubmitted):
		return core.NewCommandError(http.StatusUnauthorized, err)
	case errors.Is(err, domain.ErrInvalidAction):
		return core.NewCommandError(http.StatusUnprocessableEntity, err)
	case errors.Is(err, domain.ErrGameFull):
		return core.NewCommandError(http.StatusForbidden, err)
	default:
		return err
	}
}
