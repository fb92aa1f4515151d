// internal/httpserver/routes.go
//
// Game API routes:
//   - POST   /user                          → register a user, returns a player token
//   - GET    /user/{user}/games             → keys of the user's open games
//   - POST   /game                          → start a game
//   - GET    /game/{key}                    → current game state
//   - PUT    /game/{key}                    → make a move
//   - DELETE /game/{key}/cancel             → cancel a game in progress
//   - GET    /game/{key}/history            → moves so far
//   - GET    /scores                        → all scores
//   - GET    /scores/user/{user}            → one user's scores
//   - GET    /scores/high                   → fewest-guesses scores (number_of_results, user)
//   - GET    /rankings                      → leaderboard
//   - GET    /games/average_attempts        → cached average attempts remaining
//   - POST   /tasks/cache_average_attempts  → schedule a cache refresh

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/store"
)

// mountRoutes registers all game API routes.
func (s *Server) mountRoutes() {
	s.r.Post("/user", s.handleCreateUser)
	s.r.Get("/user/{user}/games", s.handleUserGames)

	s.r.Route("/game", func(r chi.Router) {
		r.Post("/", s.handleNewGame)
		r.Get("/{key}", s.handleGetGame)
		r.Put("/{key}", s.handleMakeMove)
		r.Delete("/{key}/cancel", s.handleCancelGame)
		r.Get("/{key}/history", s.handleHistory)
	})

	s.r.Route("/scores", func(r chi.Router) {
		r.Get("/", s.handleScores)
		r.Get("/user/{user}", s.handleUserScores)
		r.Get("/high", s.handleHighScores)
	})

	s.r.Get("/rankings", s.handleRankings)
	s.r.Get("/games/average_attempts", s.handleAverageAttempts)
	s.r.Post("/tasks/cache_average_attempts", s.handleCacheAverageAttempts)
}

// ------------------------------- payloads ----------------------------------

type messageRes struct {
	Message string `json:"message"`
}

type createUserReq struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
}
type createUserRes struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type newGameReq struct {
	UserName string `json:"userName"`
	Attempts int    `json:"attempts"` // 0 selects the server default
}

type makeMoveReq struct {
	Guess string `json:"guess"`
}

// gameRes is the state of one game as seen by the player.
type gameRes struct {
	Key               string     `json:"urlsafeGameKey"`
	UserName          string     `json:"userName"`
	AttemptsRemaining int        `json:"attemptsRemaining"`
	GameOver          bool       `json:"gameOver"`
	Won               bool       `json:"won"`
	State             game.State `json:"state"`
	WordProgress      string     `json:"wordProgress"`
	Message           string     `json:"message"`
}

type userGamesRes struct {
	Games []string `json:"games"`
}

type historyRes struct {
	History []game.Move `json:"history"`
}

type scoreRes struct {
	UserName string    `json:"userName"`
	GameKey  string    `json:"gameKey"`
	Won      bool      `json:"won"`
	Guesses  int       `json:"guesses"`
	Date     time.Time `json:"date"`
}
type scoresRes struct {
	Items []scoreRes `json:"items"`
}

type rankingRes struct {
	UserName      string  `json:"userName"`
	RankingPoints float64 `json:"rankingPoints"`
	Games         int     `json:"games"`
	Wins          int     `json:"wins"`
	Ranked        bool    `json:"ranked"`
}
type rankingsRes struct {
	Rankings []rankingRes `json:"rankings"`
}

type averageRes struct {
	Message   string     `json:"message"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func toGameRes(g *game.Game, msg string) gameRes {
	return gameRes{
		Key:               g.ID,
		UserName:          g.UserName,
		AttemptsRemaining: g.AttemptsRemaining,
		GameOver:          g.GameOver,
		Won:               g.Won,
		State:             g.State(),
		WordProgress:      g.WordProgress(),
		Message:           msg,
	}
}

func toScoresRes(scores []*game.Score) scoresRes {
	out := scoresRes{Items: make([]scoreRes, 0, len(scores))}
	for _, sc := range scores {
		out.Items = append(out.Items, scoreRes{
			UserName: sc.UserName,
			GameKey:  sc.GameID,
			Won:      sc.Won,
			Guesses:  sc.Guesses,
			Date:     sc.CreatedAt,
		})
	}
	return out
}

// ------------------------------- users -------------------------------------

// handleCreateUser registers a user and returns a player token for it.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	u, err := s.svc.CreateUser(r.Context(), req.UserName, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tok, exp, err := s.tokens.Sign(u.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createUserRes{
		Message:   "User " + u.Name + " created!",
		Token:     tok,
		ExpiresAt: exp,
	})
}

func (s *Server) handleUserGames(w http.ResponseWriter, r *http.Request) {
	keys, err := s.svc.UserGames(r.Context(), chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userGamesRes{Games: keys})
}

// ------------------------------- games -------------------------------------

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	g, err := s.svc.NewGame(r.Context(), req.UserName, req.Attempts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGameRes(g, "Have fun playing Hangman!"))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GetGame(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameRes(g, "Time to make a move!"))
}

func (s *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	var req makeMoveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	g, msg, err := s.svc.MakeMove(r.Context(), chi.URLParam(r, "key"), req.Guess, player(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameRes(g, msg))
}

func (s *Server) handleCancelGame(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.CancelGame(r.Context(), chi.URLParam(r, "key"), player(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageRes{Message: "Game deleted."})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	moves, err := s.svc.GameHistory(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if moves == nil {
		moves = []game.Move{}
	}
	writeJSON(w, http.StatusOK, historyRes{History: moves})
}

// ------------------------------- scores ------------------------------------

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	s.listScores(w, r, store.ScoreQuery{})
}

func (s *Server) handleUserScores(w http.ResponseWriter, r *http.Request) {
	s.listScores(w, r, store.ScoreQuery{UserName: chi.URLParam(r, "user")})
}

// handleHighScores lists scores with the fewest guesses first.
// Query: number_of_results (optional limit), user (optional filter).
func (s *Server) handleHighScores(w http.ResponseWriter, r *http.Request) {
	q := store.ScoreQuery{OrderByGuesses: true, UserName: r.URL.Query().Get("user")}
	if v := r.URL.Query().Get("number_of_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, r, &game.InputError{Msg: "number_of_results must be a number!"})
			return
		}
		q.Limit = n
	}
	s.listScores(w, r, q)
}

func (s *Server) listScores(w http.ResponseWriter, r *http.Request, q store.ScoreQuery) {
	scores, err := s.svc.Scores(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScoresRes(scores))
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := s.svc.Rankings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := rankingsRes{Rankings: make([]rankingRes, 0, len(rankings))}
	for _, rk := range rankings {
		out.Rankings = append(out.Rankings, rankingRes{
			UserName:      rk.User.Name,
			RankingPoints: rk.Points,
			Games:         rk.Games,
			Wins:          rk.Wins,
			Ranked:        rk.Ranked,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ------------------------- average attempts cache --------------------------

// handleAverageAttempts serves the cached aggregate; an empty message means
// no value has been computed or no game is open.
func (s *Server) handleAverageAttempts(w http.ResponseWriter, r *http.Request) {
	msg, at, ok := s.svc.CachedAverageAttempts()
	res := averageRes{Message: msg}
	if ok {
		res.UpdatedAt = &at
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCacheAverageAttempts schedules a refresh and returns immediately.
func (s *Server) handleCacheAverageAttempts(w http.ResponseWriter, r *http.Request) {
	s.refresh()
	writeJSON(w, http.StatusAccepted, messageRes{Message: "Refresh scheduled."})
}
