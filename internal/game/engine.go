// internal/game/engine.go
//
// Core engine for a single rock-paper-scissors session.
// Responsibilities:
//   - Resolve a player move against an opponent move picked from a random draw.
//   - Derive the next session State from the previous one (pure transition).
//   - Build the list of intents offered after a round.
//   - Map moves to the glyphs shown on the scoreboard.
//
// Notes:
//   - Nothing in this file touches a random source; draws are passed in by
//     the caller so every function here is deterministic.
//   - Unrecognised moves entering state are normalised to DefaultMove.
package game

import "fmt"

// Glyphs shown for each move, plus the fallback for raw values that are not
// moves at all.
const (
	GlyphRock     = "✊"
	GlyphPaper    = "✋"
	GlyphScissors = "✌"
	GlyphUnknown  = "❓"
)

// RestartLabel is the label of the single intent offered after a loss.
const RestartLabel = "Play again 💀"

// Resolve plays user against the opponent move selected by draw.
// The opponent is Moves[draw mod 3]; negative draws are folded into range.
//
// Outcome table (user vs opponent):
//
//	          rock   paper  scissors
//	rock      DRAW   LOSE   WIN
//	paper     WIN    DRAW   LOSE
//	scissors  LOSE   WIN    DRAW
func Resolve(user Move, draw int) (Outcome, Move) {
	if !user.Valid() {
		user = DefaultMove
	}
	idx := draw % len(Moves)
	if idx < 0 {
		idx += len(Moves)
	}
	ai := Moves[idx]

	switch {
	case user == ai:
		return Draw, ai
	case user.beats(ai):
		return Win, ai
	default:
		return Lose, ai
	}
}

// RoundInput is what a play request contributes to a transition.
type RoundInput struct {
	// Identified is false for pre-interaction renders that carry no player id.
	Identified bool
	// Move is the raw submitted move; empty means absent.
	Move string
}

// Initial returns the state a brand-new session starts from.
func Initial(seed int) State {
	return State{
		Score:    0,
		UserMove: DefaultMove,
		AIMove:   DefaultMove,
		Outcome:  Draw,
		Seed:     seed,
	}
}

// ResetSession discards prev's progress: score back to zero, a fresh seed,
// moves and outcome at their defaults.
func ResetSession(freshDraw int) State {
	return Initial(freshDraw)
}

// ApplyRound derives the next state from prev.
//
//   - Without a player identity the state is returned unchanged.
//   - Otherwise the submitted move (or DefaultMove when absent/invalid) is
//     resolved against prev.Seed, a WIN bumps the score, and the seed is
//     replaced by freshDraw so it never resolves two rounds.
func ApplyRound(prev State, in RoundInput, freshDraw int) State {
	if !in.Identified {
		return prev
	}
	move, _ := ParseMove(in.Move)
	outcome, ai := Resolve(move, prev.Seed)

	next := prev
	if outcome == Win {
		next.Score++
	}
	next.UserMove = move
	next.AIMove = ai
	next.Outcome = outcome
	next.Seed = freshDraw
	return next
}

// BuildIntents returns the actions to present after a round with outcome o.
// A loss offers only a restart; anything else offers the three moves in order.
func BuildIntents(o Outcome) []Intent {
	if o == Lose {
		return []Intent{{Kind: IntentRestart, Label: RestartLabel}}
	}
	return MoveIntents()
}

// MoveIntents returns one play intent per move, in Moves order.
func MoveIntents() []Intent {
	out := make([]Intent, 0, len(Moves))
	for _, m := range Moves {
		out = append(out, Intent{Kind: IntentPlay, Label: m.Glyph(), Value: m})
	}
	return out
}

// Glyph returns the emoji for m.
func (m Move) Glyph() string {
	switch m {
	case Rock:
		return GlyphRock
	case Paper:
		return GlyphPaper
	case Scissors:
		return GlyphScissors
	}
	return GlyphUnknown
}

// FormatMove maps a raw move string to its glyph. It is total: values that
// are not moves get GlyphUnknown.
func FormatMove(s string) string {
	m, ok := ParseMove(s)
	if !ok {
		return GlyphUnknown
	}
	return m.Glyph()
}

// Scoreboard is the text drawn on the play screen. Moves are raw strings so
// the image endpoint can render query values without a State.
func Scoreboard(user, ai string, score int) string {
	return fmt.Sprintf("(🎮: %s, 🤖: %s) 🎲: %d", FormatMove(user), FormatMove(ai), score)
}
