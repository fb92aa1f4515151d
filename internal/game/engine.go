// internal/game/engine.go
//
// Core game engine for a single Hangman session.
// Responsibilities:
//   - Create new games with a caller-chosen attempts budget.
//   - Validate and apply guesses (alphabetic, single letter or whole word).
//   - Track state transitions: in progress → won/lost.
//   - Record every accepted guess in the move history.
//
// Notes:
//   - Targets are stored uppercase and guesses are uppercased before comparison.
//   - The engine never touches storage; callers load and save games.
package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// New constructs a new game for userName with the given target and budget.
func New(id, userName, target string, attempts int) (*Game, error) {
	if attempts < 1 {
		return nil, &InputError{Msg: "Attempts must be a positive number!"}
	}
	target = strings.ToUpper(strings.TrimSpace(target))
	if target == "" {
		return nil, errors.New("game: empty target word")
	}
	return &Game{
		ID:                id,
		UserName:          userName,
		Target:            target,
		GuessedLetters:    []int{},
		AttemptsRemaining: attempts,
		History:           []Move{},
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// ApplyGuess validates a guess and mutates the game state.
// Returns: the message for the caller, the new state, or an error.
//
// Validation rules:
//   - Game must not be over (ErrGameOver).
//   - Guess must be non-empty and all letters.
//   - Guess must be a single letter or the whole target.
//
// State transitions:
//   - Whole word matches → won.
//   - Every position revealed → won.
//   - A miss that exhausts the budget → lost.
//
// Rejected guesses leave the game untouched and add no history.
func (g *Game) ApplyGuess(raw string) (string, State, error) {
	if g.GameOver {
		return "", g.State(), ErrGameOver
	}
	if !isAlpha(raw) {
		return "", g.State(), errNotLetters
	}

	guess := strings.ToUpper(raw)
	if guess == g.Target {
		msg := fmt.Sprintf("You win! Word was %s", g.Target)
		g.finish(raw, msg, true)
		return msg, g.State(), nil
	}
	letters := []rune(guess)
	if len(letters) != 1 {
		return "", g.State(), errSingleOrWhole
	}

	revealed := false
	for i, c := range []rune(g.Target) {
		if c == letters[0] && !g.isGuessed(i) {
			g.GuessedLetters = append(g.GuessedLetters, i)
			revealed = true
		}
	}

	if len(g.GuessedLetters) == len([]rune(g.Target)) {
		msg := fmt.Sprintf("You win! Word was %s", g.WordProgress())
		g.finish(raw, msg, true)
		return msg, g.State(), nil
	}

	var msg string
	if revealed {
		msg = "Letter was in the word! Word progress: " + g.WordProgress()
	} else {
		g.AttemptsRemaining--
		msg = "Letter was not in the word! Word progress: " + g.WordProgress()
	}

	if g.AttemptsRemaining < 1 {
		msg = "Game over!"
		g.finish(raw, msg, false)
		return msg, g.State(), nil
	}
	g.record(raw, msg)
	return msg, g.State(), nil
}

// WordProgress renders the target with unrevealed positions masked.
func (g *Game) WordProgress() string {
	target := []rune(g.Target)
	out := make([]rune, len(target))
	for i := range out {
		out[i] = Placeholder
	}
	for _, i := range g.GuessedLetters {
		if i >= 0 && i < len(target) {
			out[i] = target[i]
		}
	}
	return string(out)
}

// State reports the lifecycle state derived from the game flags.
func (g *Game) State() State {
	if g.GameOver {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StateInProgress
}

func (g *Game) finish(raw, msg string, won bool) {
	g.record(raw, msg)
	g.GameOver, g.Won = true, won
}

func (g *Game) record(raw, msg string) {
	g.History = append(g.History, Move{Guess: raw, Message: msg})
}

func (g *Game) isGuessed(i int) bool {
	for _, x := range g.GuessedLetters {
		if x == i {
			return true
		}
	}
	return false
}

// isAlpha reports whether s is non-empty and made only of letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
