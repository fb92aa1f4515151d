// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Used when no database path is configured, and in tests.
//
// Characteristics:
//   - Users, games and scores kept in maps/slices keyed by their IDs.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are cloned on the way in and out.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/robalobadob/hangman/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex
	users  map[string]*game.User // keyed by User.Name
	games  map[string]*game.Game // keyed by Game.ID
	scores []*game.Score         // creation order
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		users: make(map[string]*game.User),
		games: make(map[string]*game.Game),
	}
}

func (m *memory) CreateUser(ctx context.Context, u *game.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Name]; ok {
		return fmt.Errorf("user %q: %w", u.Name, ErrAlreadyExists)
	}
	m.users[u.Name] = u.Clone()
	return nil
}

func (m *memory) GetUser(ctx context.Context, name string) (*game.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[name]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	return u.Clone(), nil
}

func (m *memory) ListUsers(ctx context.Context) ([]*game.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*game.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memory) UpdateRankingPoints(ctx context.Context, name string, points float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[name]
	if !ok {
		return fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	u.RankingPoints = points
	return nil
}

// SaveGame adds or updates the game in the map.
func (m *memory) SaveGame(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g.Clone()
	return nil
}

// GetGame looks up a game by ID and returns a copy.
func (m *memory) GetGame(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g.Clone(), nil
	}
	return nil, fmt.Errorf("game %q: %w", id, ErrNotFound)
}

func (m *memory) DeleteGame(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return fmt.Errorf("game %q: %w", id, ErrNotFound)
	}
	delete(m.games, id)
	return nil
}

func (m *memory) ListGames(ctx context.Context, f GameFilter) ([]*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*game.Game
	for _, g := range m.games {
		if f.UserName != "" && g.UserName != f.UserName {
			continue
		}
		if f.ActiveOnly && g.GameOver {
			continue
		}
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *memory) FinishGame(ctx context.Context, g *game.Game, s *game.Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g.Clone()
	m.scores = append(m.scores, s.Clone())
	return nil
}

func (m *memory) ListScores(ctx context.Context, q ScoreQuery) ([]*game.Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*game.Score
	for _, s := range m.scores {
		if q.UserName != "" && s.UserName != q.UserName {
			continue
		}
		out = append(out, s.Clone())
	}
	if q.OrderByGuesses {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Guesses < out[j].Guesses })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memory) Close() error { return nil }
