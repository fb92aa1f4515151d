// internal/hangman/service.go
//
// Game service: the operations the API exposes, on top of the store and the
// game engine.
// Responsibilities:
//   - User registration and lookup.
//   - Game creation with a random target, moves, cancellation, history.
//   - Turning a terminal move into a Score, persisted with the game.
//   - Leaderboard recomputation with write-through of ranking points.
//   - The average-attempts aggregate served from a background-refreshed cache.
//
// Moves and cancellation on the same game are serialized with a keyed lock,
// so each call works on a consistent snapshot of the game.

package hangman

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/cache"
	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/store"
)

// ErrForbidden is returned when a player acts on another user's game.
var ErrForbidden = errors.New("game belongs to another user")

// WordSource supplies target words for new games.
type WordSource interface {
	Random() string
}

// Options tunes a Service. Zero fields take defaults.
type Options struct {
	DefaultAttempts int              // budget when the caller passes 0 (default 6)
	MaxAttempts     int              // upper bound of the budget (default 26)
	Now             func() time.Time // clock (default time.Now)
	NewID           func() string    // key generator (default uuid.NewString)
}

// Service implements the game operations.
type Service struct {
	store    store.Store
	words    WordSource
	opts     Options
	locks    *keyedMutex
	average  cache.Cell[string]
	onChange func()
}

// New constructs a Service.
func New(st store.Store, ws WordSource, opts Options) *Service {
	if opts.DefaultAttempts <= 0 {
		opts.DefaultAttempts = 6
	}
	if opts.MaxAttempts < opts.DefaultAttempts {
		opts.MaxAttempts = max(26, opts.DefaultAttempts)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Service{
		store:    st,
		words:    ws,
		opts:     opts,
		locks:    newKeyedMutex(),
		onChange: func() {},
	}
}

// OnChange registers fn to be called whenever the set of open games or their
// attempts change. Used to schedule the average-attempts refresh.
func (s *Service) OnChange(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	s.onChange = fn
}

// ------------------------------- users -------------------------------------

// CreateUser registers a new user. Names are unique.
func (s *Service) CreateUser(ctx context.Context, name, email string) (*game.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &game.InputError{Msg: "A user name is required!"}
	}
	u := &game.User{
		Name:      name,
		Email:     strings.TrimSpace(email),
		CreatedAt: s.opts.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("user", name).Msg("user created")
	return u, nil
}

// FindUser looks a user up by name.
func (s *Service) FindUser(ctx context.Context, name string) (*game.User, error) {
	return s.store.GetUser(ctx, strings.TrimSpace(name))
}

// ------------------------------- games -------------------------------------

// NewGame starts a game for userName with a random target. attempts == 0
// selects the default budget.
func (s *Service) NewGame(ctx context.Context, userName string, attempts int) (*game.Game, error) {
	u, err := s.FindUser(ctx, userName)
	if err != nil {
		return nil, err
	}
	if attempts == 0 {
		attempts = s.opts.DefaultAttempts
	}
	if attempts < 1 || attempts > s.opts.MaxAttempts {
		return nil, &game.InputError{Msg: fmt.Sprintf("Attempts must be between 1 and %d!", s.opts.MaxAttempts)}
	}

	g, err := game.New(s.opts.NewID(), u.Name, s.words.Random(), attempts)
	if err != nil {
		return nil, err
	}
	g.CreatedAt = s.opts.Now().UTC()
	if err := s.store.SaveGame(ctx, g); err != nil {
		return nil, err
	}
	log.Info().Str("game", g.ID).Str("user", u.Name).Int("attempts", attempts).Msg("game created")
	s.onChange()
	return g, nil
}

// GetGame returns the current state of a game.
func (s *Service) GetGame(ctx context.Context, id string) (*game.Game, error) {
	return s.store.GetGame(ctx, id)
}

// GameHistory returns the moves of a game, oldest first.
func (s *Service) GameHistory(ctx context.Context, id string) ([]game.Move, error) {
	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.History, nil
}

// MakeMove applies a guess and persists the result. player, when non-empty,
// must be the game's owner. On a terminal move the Score is created and
// stored together with the game.
func (s *Service) MakeMove(ctx context.Context, id, guess, player string) (*game.Game, string, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if player != "" && player != g.UserName {
		return nil, "", ErrForbidden
	}

	msg, state, err := g.ApplyGuess(guess)
	if err != nil {
		return nil, "", err
	}

	if g.GameOver {
		score, err := game.FinalizeScore(g, s.opts.NewID(), s.opts.Now())
		if err != nil {
			return nil, "", err
		}
		if err := s.store.FinishGame(ctx, g, score); err != nil {
			return nil, "", err
		}
		log.Info().Str("game", g.ID).Str("user", g.UserName).Str("state", string(state)).
			Int("guesses", score.Guesses).Msg("game finished")
	} else if err := s.store.SaveGame(ctx, g); err != nil {
		return nil, "", err
	}
	s.onChange()
	return g, msg, nil
}

// CancelGame deletes a game that is still in progress.
func (s *Service) CancelGame(ctx context.Context, id, player string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	g, err := s.store.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if player != "" && player != g.UserName {
		return ErrForbidden
	}
	if g.GameOver {
		return game.ErrGameOver
	}
	if err := s.store.DeleteGame(ctx, id); err != nil {
		return err
	}
	log.Info().Str("game", id).Str("user", g.UserName).Msg("game cancelled")
	s.onChange()
	return nil
}

// UserGames returns the keys of the user's games that are not over.
func (s *Service) UserGames(ctx context.Context, userName string) ([]string, error) {
	u, err := s.FindUser(ctx, userName)
	if err != nil {
		return nil, err
	}
	games, err := s.store.ListGames(ctx, store.GameFilter{UserName: u.Name, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(games))
	for _, g := range games {
		keys = append(keys, g.ID)
	}
	return keys, nil
}

// ------------------------------- scores ------------------------------------

// Scores lists scores. A non-empty q.UserName must name an existing user.
func (s *Service) Scores(ctx context.Context, q store.ScoreQuery) ([]*game.Score, error) {
	if q.Limit < 0 {
		return nil, &game.InputError{Msg: "Number of results must not be negative!"}
	}
	if q.UserName != "" {
		if _, err := s.FindUser(ctx, q.UserName); err != nil {
			return nil, err
		}
	}
	return s.store.ListScores(ctx, q)
}

// Rankings recomputes every user's ranking points from all scores, writes
// changed points back to the store, and returns the leaderboard best first.
func (s *Service) Rankings(ctx context.Context) ([]game.Ranking, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := s.store.ListScores(ctx, store.ScoreQuery{})
	if err != nil {
		return nil, err
	}

	before := make(map[string]float64, len(users))
	for _, u := range users {
		before[u.Name] = u.RankingPoints
	}
	rankings := game.RecomputeRankings(users, scores)
	for _, r := range rankings {
		if before[r.User.Name] == r.Points {
			continue
		}
		if err := s.store.UpdateRankingPoints(ctx, r.User.Name, r.Points); err != nil {
			return nil, err
		}
	}
	return rankings, nil
}

// ------------------------- average attempts cache --------------------------

// RefreshAverageAttempts recomputes the average attempts remaining over open
// games and stores the message in the cache. With no open game the cache is
// cleared, so readers see "absent" rather than a stale value.
func (s *Service) RefreshAverageAttempts(ctx context.Context) error {
	games, err := s.store.ListGames(ctx, store.GameFilter{ActiveOnly: true})
	if err != nil {
		return fmt.Errorf("list open games: %w", err)
	}
	now := s.opts.Now().UTC()
	avg, ok := game.AverageAttemptsRemaining(games)
	if !ok {
		s.average.Clear(now)
		return nil
	}
	s.average.Set(fmt.Sprintf("The average moves remaining is %.2f", avg), now)
	return nil
}

// CachedAverageAttempts returns the last computed message, when it was
// computed, and whether a value is present.
func (s *Service) CachedAverageAttempts() (string, time.Time, bool) {
	return s.average.Get()
}
