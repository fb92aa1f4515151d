package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeScore(t *testing.T) {
	g := newTestGame(t, "PERU", 5)
	_, err := FinalizeScore(g, "s0", time.Now())
	assert.ErrorIs(t, err, ErrNotOver)

	for _, guess := range []string{"P", "X", "peru"} {
		_, _, err := g.ApplyGuess(guess)
		require.NoError(t, err)
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s, err := FinalizeScore(g, "s1", now)
	require.NoError(t, err)
	assert.Equal(t, &Score{
		ID:        "s1",
		UserName:  "alice",
		GameID:    "g1",
		Won:       true,
		Guesses:   3,
		CreatedAt: now,
	}, s)
}

func TestRankingPoints(t *testing.T) {
	assert.Equal(t, 0.0, RankingPoints(nil))
	assert.Equal(t, 4.0, RankingPoints([]*Score{{Won: true, Guesses: 3}, {Won: true, Guesses: 5}}))
	assert.Equal(t, 9.0, RankingPoints([]*Score{{Won: true, Guesses: 2}, {Won: false, Guesses: 6}}))
}

func TestRecomputeRankings(t *testing.T) {
	users := []*User{{Name: "carol"}, {Name: "alice"}, {Name: "bob"}, {Name: "dave"}}
	scores := []*Score{
		{UserName: "alice", Won: true, Guesses: 6},
		{UserName: "bob", Won: true, Guesses: 4},
		{UserName: "bob", Won: true, Guesses: 2},
		{UserName: "carol", Won: false, Guesses: 2},
		{UserName: "ghost", Won: true, Guesses: 1},
	}

	got := RecomputeRankings(users, scores)
	require.Len(t, got, 4)

	names := make([]string, len(got))
	for i, r := range got {
		names[i] = r.User.Name
	}
	assert.Equal(t, []string{"bob", "alice", "carol", "dave"}, names)

	assert.Equal(t, 3.0, got[0].Points)
	assert.Equal(t, 2, got[0].Wins)
	assert.Equal(t, 12.0, got[2].Points)
	assert.False(t, got[3].Ranked)

	// points are written back onto the users
	assert.Equal(t, 6.0, users[1].RankingPoints)
	assert.Equal(t, 12.0, users[0].RankingPoints)
}

func TestRecomputeRankings_TieBreak(t *testing.T) {
	users := []*User{{Name: "zed"}, {Name: "amy"}, {Name: "kim"}}
	scores := []*Score{
		{UserName: "zed", Won: true, Guesses: 4},
		{UserName: "zed", Won: true, Guesses: 4},
		{UserName: "amy", Won: true, Guesses: 4},
		{UserName: "kim", Won: true, Guesses: 4},
	}
	got := RecomputeRankings(users, scores)
	assert.Equal(t, "zed", got[0].User.Name)
	assert.Equal(t, "amy", got[1].User.Name)
	assert.Equal(t, "kim", got[2].User.Name)
}

func TestAverageAttemptsRemaining(t *testing.T) {
	_, ok := AverageAttemptsRemaining(nil)
	assert.False(t, ok)

	games := []*Game{
		{AttemptsRemaining: 5},
		{AttemptsRemaining: 2},
		{AttemptsRemaining: 0, GameOver: true},
	}
	avg, ok := AverageAttemptsRemaining(games)
	assert.True(t, ok)
	assert.Equal(t, 3.5, avg)

	_, ok = AverageAttemptsRemaining([]*Game{{GameOver: true}})
	assert.False(t, ok)
}
