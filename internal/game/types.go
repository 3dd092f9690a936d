// internal/game/types.go
//
// Core type definitions for the rock-paper-scissors engine.
// Defines:
//   - Move: one of the three hand shapes (closed set).
//   - Outcome: result of a resolved round from the player's point of view.
//   - State: the per-session game record threaded through every request.
//   - Intent: a selectable action offered to the player.

package game

import "strings"

// Move is a hand shape. Only the three constants below are valid.
type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// DefaultMove is used whenever the player's move is absent or unrecognised.
const DefaultMove = Rock

// Moves lists the valid moves in their fixed order. The opponent index and the
// intent order both depend on it.
var Moves = [3]Move{Rock, Paper, Scissors}

// ParseMove normalises s and reports whether it names a valid move.
func ParseMove(s string) (Move, bool) {
	switch m := Move(strings.ToLower(strings.TrimSpace(s))); m {
	case Rock, Paper, Scissors:
		return m, true
	}
	return DefaultMove, false
}

// Valid reports whether m is one of the three moves.
func (m Move) Valid() bool {
	switch m {
	case Rock, Paper, Scissors:
		return true
	}
	return false
}

// beats reports whether m wins against other.
func (m Move) beats(other Move) bool {
	switch m {
	case Rock:
		return other == Scissors
	case Scissors:
		return other == Paper
	case Paper:
		return other == Rock
	}
	return false
}

// Outcome is the result of a round for the player.
type Outcome string

const (
	Win  Outcome = "WIN"
	Lose Outcome = "LOSE"
	Draw Outcome = "DRAW"
)

// ParseOutcome maps s onto an Outcome; anything unknown becomes Draw.
func ParseOutcome(s string) (Outcome, bool) {
	switch o := Outcome(strings.ToUpper(strings.TrimSpace(s))); o {
	case Win, Lose, Draw:
		return o, true
	}
	return Draw, false
}

// State is the single mutable record of one game session.
// It is never mutated in place; transitions return a new value.
type State struct {
	Score    int     `json:"score"`    // cumulative wins, reset with the session
	UserMove Move    `json:"userMove"` // last move submitted by the player
	AIMove   Move    `json:"aiMove"`   // last move chosen by the opponent
	Outcome  Outcome `json:"outcome"`  // result of the last resolved round
	Seed     int     `json:"seed"`     // selects the opponent's next move
}

// Normalize coerces every field back into its domain: unknown moves become
// DefaultMove, unknown outcomes become Draw, negative counters become zero.
// Used on state decoded from untrusted tokens.
func (s State) Normalize() State {
	s.UserMove, _ = ParseMove(string(s.UserMove))
	s.AIMove, _ = ParseMove(string(s.AIMove))
	s.Outcome, _ = ParseOutcome(string(s.Outcome))
	if s.Score < 0 {
		s.Score = 0
	}
	if s.Seed < 0 {
		s.Seed = 0
	}
	return s
}

// IntentKind distinguishes a move submission from a restart.
type IntentKind string

const (
	IntentPlay    IntentKind = "play"
	IntentRestart IntentKind = "restart"
)

// Intent is one clickable action. Value carries the move for IntentPlay.
type Intent struct {
	Kind  IntentKind
	Label string
	Value Move
}
