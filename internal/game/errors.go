package game

import "errors"

var (
	// ErrInvalidInput is matched by every InputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGameOver rejects moves and cancellation on a finished game.
	ErrGameOver = errors.New("Game is already over!")

	// ErrNotOver is returned when a score is requested for a game still in play.
	ErrNotOver = errors.New("game is not over")
)

// InputError carries a user-facing validation message.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// Is makes errors.Is(err, ErrInvalidInput) true for any InputError.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

var (
	errNotLetters    = &InputError{Msg: "Guess must be all letters!"}
	errSingleOrWhole = &InputError{Msg: "Guess must be a single character or the word!"}
)
