// internal/game/types.go
//
// Core type definitions for the Hangman game engine.
// Defines:
//   - State: coarse lifecycle of a game (in progress, won, lost).
//   - Move: one accepted guess and the message it produced.
//   - Game: state for a single in-progress or finished game.
//   - User, Score: the records the ranking engine works over.

package game

import "time"

// State is the lifecycle state of a game.
type State string

const (
	StateInProgress State = "IN_PROGRESS"
	StateWon        State = "WON"
	StateLost       State = "LOST"
)

// Placeholder masks unrevealed positions in WordProgress.
const Placeholder = '_'

// Move is one entry of a game's history.
type Move struct {
	Guess   string `json:"guess"`
	Message string `json:"message"`
}

// Game holds the state of a single Hangman session.
type Game struct {
	ID                string    // Unique game key.
	UserName          string    // Owning user.
	Target            string    // The hidden word (always uppercase).
	GuessedLetters    []int     // Revealed positions into Target.
	AttemptsRemaining int       // Misses left before the game is lost.
	GameOver          bool      // True once the game is won or lost.
	Won               bool      // Meaningful only when GameOver.
	History           []Move    // Accepted guesses, oldest first.
	CreatedAt         time.Time // Creation time (UTC).
}

// User is a registered player.
type User struct {
	Name          string
	Email         string
	RankingPoints float64 // Lower is better. Zero until a game is completed.
	CreatedAt     time.Time
}

// Score is the immutable outcome of one finished game.
type Score struct {
	ID        string
	UserName  string
	GameID    string
	Won       bool
	Guesses   int
	CreatedAt time.Time
}

// Clone returns a deep copy of g.
func (g *Game) Clone() *Game {
	c := *g
	if g.GuessedLetters != nil {
		c.GuessedLetters = make([]int, len(g.GuessedLetters))
		copy(c.GuessedLetters, g.GuessedLetters)
	}
	if g.History != nil {
		c.History = make([]Move, len(g.History))
		copy(c.History, g.History)
	}
	return &c
}

// Clone returns a copy of u.
func (u *User) Clone() *User {
	c := *u
	return &c
}

// Clone returns a copy of s.
func (s *Score) Clone() *Score {
	c := *s
	return &c
}
