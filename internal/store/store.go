// internal/store/store.go
//
// Session persistence between frame requests.
// A frame client echoes back whatever state string the previous response
// carried, so every backend hands out an opaque token from Save and accepts
// it again in Update. Two backends exist:
//   - token.go:  the state is embedded in a signed JWT (no server-side table).
//   - memory.go: the token is a session ID into a process-local map.

package store

import (
	"context"
	"errors"

	"github.com/robalobadob/rps-frame/internal/game"
)

// ErrNotFound is returned when a token does not reference a live session:
// empty, malformed, expired, badly signed or unknown.
var ErrNotFound = errors.New("session not found")

// Session is one logical game: a stable ID plus its current state.
type Session struct {
	ID    string
	State game.State
}

// TransitionFunc derives the next state from the previous one.
type TransitionFunc func(prev game.State) (game.State, error)

// Store defines how session state travels between requests.
type Store interface {
	// Save persists s and returns the token the next request must present.
	// An empty s.ID is replaced by a fresh session ID.
	Save(ctx context.Context, s *Session) (string, error)

	// Update loads the session behind token, applies fn and saves the result
	// as one step: two updates never run against the same prior state.
	// ErrNotFound is returned (and fn not called) when token references nothing.
	Update(ctx context.Context, token string, fn TransitionFunc) (*Session, string, error)
}
