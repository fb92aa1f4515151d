// internal/store/store.go
//
// Persistence interface for users, games and scores.
// Implementations: in-memory (memory.go) and SQLite (sqlite.go).
//
// All implementations hand out copies, so callers may mutate what they load
// and must Save it back for the change to stick.

package store

import (
	"context"
	"errors"

	"github.com/robalobadob/hangman/internal/game"
)

var (
	// ErrNotFound is returned for a missing user, game or score key.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a user name is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// GameFilter narrows ListGames. Zero value lists every game.
type GameFilter struct {
	UserName   string // only games owned by this user
	ActiveOnly bool   // only games that are not over
}

// ScoreQuery narrows ListScores. Zero value lists every score in creation order.
type ScoreQuery struct {
	UserName       string // only scores of this user
	OrderByGuesses bool   // fewest guesses first
	Limit          int    // 0 means no limit
}

// Store defines the persistence interface for the game service.
type Store interface {
	// CreateUser inserts a new user. Fails with ErrAlreadyExists on a name collision.
	CreateUser(ctx context.Context, u *game.User) error

	// GetUser retrieves a user by name. Fails with ErrNotFound.
	GetUser(ctx context.Context, name string) (*game.User, error)

	// ListUsers returns every user ordered by name.
	ListUsers(ctx context.Context) ([]*game.User, error)

	// UpdateRankingPoints overwrites a user's ranking points.
	UpdateRankingPoints(ctx context.Context, name string, points float64) error

	// SaveGame persists or updates a game.
	SaveGame(ctx context.Context, g *game.Game) error

	// GetGame retrieves a game by key. Fails with ErrNotFound.
	GetGame(ctx context.Context, id string) (*game.Game, error)

	// DeleteGame removes a game. Fails with ErrNotFound.
	DeleteGame(ctx context.Context, id string) error

	// ListGames returns games matching f, oldest first.
	ListGames(ctx context.Context, f GameFilter) ([]*game.Game, error)

	// FinishGame persists a terminal game together with its score.
	FinishGame(ctx context.Context, g *game.Game, s *game.Score) error

	// ListScores returns scores matching q.
	ListScores(ctx context.Context, q ScoreQuery) ([]*game.Score, error)

	// Close releases any resources held by the store.
	Close() error
}
