package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/auth"
	"github.com/robalobadob/hangman/internal/hangman"
	"github.com/robalobadob/hangman/internal/store"
)

type fixedWords string

func (w fixedWords) Random() string { return string(w) }

type testEnv struct {
	srv       *Server
	svc       *hangman.Service
	refreshes int
}

func newTestEnv(t *testing.T, word string) *testEnv {
	t.Helper()
	env := &testEnv{}
	env.svc = hangman.New(store.NewMemoryStore(), fixedWords(word), hangman.Options{
		DefaultAttempts: 5,
		MaxAttempts:     10,
	})
	env.srv = New(env.svc, auth.NewIssuer("test-secret", time.Hour), Options{
		ClientOrigin: "http://example.test",
		Refresh:      func() { env.refreshes++ },
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) register(t *testing.T, name string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/user", createUserReq{UserName: name, Email: name + "@example.com"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[createUserRes](t, rec).Token
}

func (e *testEnv) newGame(t *testing.T, name string) gameRes {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/game", newGameReq{UserName: name}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[gameRes](t, rec)
}

func TestHealthAndCORS(t *testing.T) {
	env := newTestEnv(t, "PERU")

	rec := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "http://example.test", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.do(t, http.MethodOptions, "/game", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t, "PERU")

	rec := env.do(t, http.MethodPost, "/user", createUserReq{UserName: "alice"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	res := decode[createUserRes](t, rec)
	assert.Equal(t, "User alice created!", res.Message)
	assert.NotEmpty(t, res.Token)

	rec = env.do(t, http.MethodPost, "/user", createUserReq{UserName: "alice"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/user", createUserReq{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/user", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameFlow(t *testing.T) {
	env := newTestEnv(t, "PERU")
	env.register(t, "alice")

	g := env.newGame(t, "alice")
	assert.Equal(t, "Have fun playing Hangman!", g.Message)
	assert.Equal(t, "____", g.WordProgress)
	assert.Equal(t, 5, g.AttemptsRemaining)
	assert.Equal(t, "IN_PROGRESS", string(g.State))

	rec := env.do(t, http.MethodGet, "/game/"+g.Key, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Time to make a move!", decode[gameRes](t, rec).Message)

	rec = env.do(t, http.MethodGet, "/user/alice/games", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{g.Key}, decode[userGamesRes](t, rec).Games)

	var last gameRes
	for _, guess := range []string{"p", "E", "R", "U"} {
		rec = env.do(t, http.MethodPut, "/game/"+g.Key, makeMoveReq{Guess: guess}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		last = decode[gameRes](t, rec)
	}
	assert.Equal(t, "You win! Word was PERU", last.Message)
	assert.True(t, last.GameOver)
	assert.True(t, last.Won)
	assert.Equal(t, "PERU", last.WordProgress)

	rec = env.do(t, http.MethodPut, "/game/"+g.Key, makeMoveReq{Guess: "P"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Game is already over!"}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/game/"+g.Key+"/history", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[historyRes](t, rec).History
	require.Len(t, history, 4)
	assert.Equal(t, "p", history[0].Guess)
	assert.Equal(t, "Letter was in the word! Word progress: P___", history[0].Message)

	rec = env.do(t, http.MethodGet, "/scores/user/alice", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	scores := decode[scoresRes](t, rec).Items
	require.Len(t, scores, 1)
	assert.Equal(t, g.Key, scores[0].GameKey)
	assert.Equal(t, 4, scores[0].Guesses)

	rec = env.do(t, http.MethodGet, "/rankings", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rankings := decode[rankingsRes](t, rec).Rankings
	require.Len(t, rankings, 1)
	assert.Equal(t, 4.0, rankings[0].RankingPoints)
	assert.True(t, rankings[0].Ranked)

	rec = env.do(t, http.MethodGet, "/user/alice/games", nil, "")
	assert.Empty(t, decode[userGamesRes](t, rec).Games)
}

func TestMoveValidation(t *testing.T) {
	env := newTestEnv(t, "PERU")
	env.register(t, "alice")
	g := env.newGame(t, "alice")

	rec := env.do(t, http.MethodPut, "/game/"+g.Key, makeMoveReq{Guess: "12"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Guess must be all letters!"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/game/"+g.Key, makeMoveReq{Guess: "PE"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Guess must be a single character or the word!"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/game/"+g.Key, "{", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/game/missing", makeMoveReq{Guess: "P"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/game", newGameReq{UserName: "alice", Attempts: 11}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/game", newGameReq{UserName: "nobody"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/game/"+g.Key, nil, "")
	assert.Equal(t, 5, decode[gameRes](t, rec).AttemptsRemaining)
}

func TestPlayerTokens(t *testing.T) {
	env := newTestEnv(t, "PERU")
	aliceTok := env.register(t, "alice")
	bobTok := env.register(t, "bob")
	g := env.newGame(t, "alice")

	rec := env.do(t, http.MethodPut, "/game/"+g.Key, makeMoveReq{Guess: "P"}, bobTok)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/game/"+g.Key, makeMoveReq{Guess: "P"}, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPut, "/game/"+g.Key, makeMoveReq{Guess: "P"}, aliceTok)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/game/"+g.Key+"/cancel", nil, bobTok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCancelGame(t *testing.T) {
	env := newTestEnv(t, "PERU")
	env.register(t, "alice")
	g := env.newGame(t, "alice")

	rec := env.do(t, http.MethodDelete, "/game/"+g.Key+"/cancel", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Game deleted."}`, rec.Body.String())

	rec = env.do(t, http.MethodDelete, "/game/"+g.Key+"/cancel", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	done := env.newGame(t, "alice")
	rec = env.do(t, http.MethodPut, "/game/"+done.Key, makeMoveReq{Guess: "PERU"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/game/"+done.Key+"/cancel", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHighScores(t *testing.T) {
	env := newTestEnv(t, "PERU")
	env.register(t, "alice")
	env.register(t, "bob")

	play := func(user string, guesses ...string) {
		g := env.newGame(t, user)
		for _, guess := range guesses {
			rec := env.do(t, http.MethodPut, "/game/"+g.Key, makeMoveReq{Guess: guess}, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}
	}
	play("alice", "X", "Y", "PERU")
	play("bob", "PERU")

	rec := env.do(t, http.MethodGet, "/scores/high?number_of_results=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[scoresRes](t, rec).Items
	require.Len(t, items, 1)
	assert.Equal(t, "bob", items[0].UserName)

	rec = env.do(t, http.MethodGet, "/scores/high?user=alice", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	items = decode[scoresRes](t, rec).Items
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Guesses)

	rec = env.do(t, http.MethodGet, "/scores", nil, "")
	assert.Len(t, decode[scoresRes](t, rec).Items, 2)

	rec = env.do(t, http.MethodGet, "/scores/high?number_of_results=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodGet, "/scores/high?number_of_results=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodGet, "/scores/user/nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAverageAttempts(t *testing.T) {
	env := newTestEnv(t, "PERU")
	env.register(t, "alice")

	rec := env.do(t, http.MethodGet, "/games/average_attempts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":""}`, rec.Body.String())

	env.newGame(t, "alice")
	rec = env.do(t, http.MethodPost, "/tasks/cache_average_attempts", nil, "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, env.refreshes)

	require.NoError(t, env.svc.RefreshAverageAttempts(context.Background()))
	rec = env.do(t, http.MethodGet, "/games/average_attempts", nil, "")
	res := decode[averageRes](t, rec)
	assert.Equal(t, "The average moves remaining is 5.00", res.Message)
	assert.NotNil(t, res.UpdatedAt)
}
