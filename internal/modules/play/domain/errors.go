package domain

import "errors"

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameFinished     = errors.New("game already finished")
	ErrGameFull         = errors.New("game already has two participants")
	ErrActionNotFound   = errors.New("action not found")
	ErrAlreadySubmitted = errors.New("action has already been submitted")
	ErrInvalidAction    = errors.New("invalid action")
	ErrAuthMismatch     = errors.New("action does not belong to player")
	ErrNoPendingTurn    = errors.New("no game is awaiting an action from player")
)
