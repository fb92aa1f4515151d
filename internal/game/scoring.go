// internal/game/scoring.go
//
// Scoring and ranking over finished games.
//
// Ranking points for a user are the mean number of guesses per finished game,
// where a lost game counts its guesses plus LossPenalty. Lower is better.
// Users without any finished game get zero points and rank after everyone
// who has played.
package game

import (
	"sort"
	"time"
)

// LossPenalty is added to the guess count of every lost game.
const LossPenalty = 10

// Ranking is one leaderboard row.
type Ranking struct {
	User   *User
	Points float64
	Games  int
	Wins   int
	Ranked bool // false when the user has no finished games
}

// FinalizeScore builds the Score for a finished game.
// It must be called exactly once per game, when the game turns terminal.
func FinalizeScore(g *Game, id string, now time.Time) (*Score, error) {
	if !g.GameOver {
		return nil, ErrNotOver
	}
	return &Score{
		ID:        id,
		UserName:  g.UserName,
		GameID:    g.ID,
		Won:       g.Won,
		Guesses:   len(g.History),
		CreatedAt: now.UTC(),
	}, nil
}

// RankingPoints aggregates one user's scores into ranking points.
func RankingPoints(scores []*Score) float64 {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, s := range scores {
		total += s.Guesses
		if !s.Won {
			total += LossPenalty
		}
	}
	return float64(total) / float64(len(scores))
}

// RecomputeRankings derives points for every user from all scores, writes the
// points back onto each User, and returns the leaderboard ordered best first.
// Scores of unknown users are ignored.
func RecomputeRankings(users []*User, scores []*Score) []Ranking {
	byUser := make(map[string][]*Score, len(users))
	for _, s := range scores {
		byUser[s.UserName] = append(byUser[s.UserName], s)
	}

	out := make([]Ranking, 0, len(users))
	for _, u := range users {
		own := byUser[u.Name]
		wins := 0
		for _, s := range own {
			if s.Won {
				wins++
			}
		}
		u.RankingPoints = RankingPoints(own)
		out = append(out, Ranking{
			User:   u,
			Points: u.RankingPoints,
			Games:  len(own),
			Wins:   wins,
			Ranked: len(own) > 0,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Ranked != b.Ranked {
			return a.Ranked
		}
		if a.Points != b.Points {
			return a.Points < b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.User.Name < b.User.Name
	})
	return out
}

// AverageAttemptsRemaining is the mean AttemptsRemaining over open games.
// ok is false when no game is open.
func AverageAttemptsRemaining(games []*Game) (avg float64, ok bool) {
	total, n := 0, 0
	for _, g := range games {
		if g.GameOver {
			continue
		}
		total += g.AttemptsRemaining
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(total) / float64(n), true
}
