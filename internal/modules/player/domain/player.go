package domain

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("player not found")
	ErrNameTaken    = errors.New("player name already exists")
	ErrTokenInvalid = errors.New("invalid token for player")
)

// Player is a registered client identity. The name is immutable and the
// token is issued once at creation; there is no rotation.
type Player struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}

func New(name, email string, now time.Time) (Player, error) {
	token, err := NewToken()
	if err != nil {
		return Player{}, err
	}

	return Player{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Token:     token,
		CreatedAt: now,
	}, nil
}

// Authenticate compares the supplied token against the stored one.
func (p Player) Authenticate(token string) error {
	if token == "" || token != p.Token {
		return ErrTokenInvalid
	}
	return nil
}

func NewToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
