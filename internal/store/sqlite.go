// internal/store/sqlite.go
//
// SQLite implementation of the Store interface.
// Responsibilities:
//   - Opening the database file with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded goose migrations on open.
//   - Mapping users, games and scores to rows; guessed letters and history
//     are stored as JSON text columns.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/store/migrations"
)

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if missing) the SQLite database at path,
// migrates it, and returns a Store backed by it.
func OpenSQLite(ctx context.Context, path string) (Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

// openDB opens the database with busy timeout, WAL journaling and foreign keys.
// The parent directory is created for relative paths like ./data/hangman.db.
func openDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	return db, nil
}

// migrate applies the embedded migrations with goose.
func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	log.Info().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...any) {
	log.Fatal().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// ------------------------------- users -------------------------------------

func (s *sqliteStore) CreateUser(ctx context.Context, u *game.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, ranking_points, created_at) VALUES (?,?,?,?)`,
		u.Name, u.Email, u.RankingPoints, formatTime(u.CreatedAt))
	if isConstraint(err) {
		return fmt.Errorf("user %q: %w", u.Name, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *sqliteStore) GetUser(ctx context.Context, name string) (*game.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, email, ranking_points, created_at FROM users WHERE name=?`, name)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	return u, err
}

func (s *sqliteStore) ListUsers(ctx context.Context) ([]*game.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, email, ranking_points, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*game.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *sqliteStore) UpdateRankingPoints(ctx context.Context, name string, points float64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET ranking_points=? WHERE name=?`, points, name)
	if err != nil {
		return fmt.Errorf("update ranking points: %w", err)
	}
	return expectRow(res, "user", name)
}

// ------------------------------- games -------------------------------------

const gameColumns = `id, user_name, target, guessed_letters, attempts_remaining, game_over, won, history, created_at`

func (s *sqliteStore) SaveGame(ctx context.Context, g *game.Game) error {
	return saveGame(ctx, s.db, g)
}

func saveGame(ctx context.Context, db DBTX, g *game.Game) error {
	letters, err := json.Marshal(nonNilInts(g.GuessedLetters))
	if err != nil {
		return err
	}
	history, err := json.Marshal(nonNilMoves(g.History))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO games (`+gameColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			guessed_letters=excluded.guessed_letters,
			attempts_remaining=excluded.attempts_remaining,
			game_over=excluded.game_over,
			won=excluded.won,
			history=excluded.history`,
		g.ID, g.UserName, g.Target, string(letters), g.AttemptsRemaining,
		g.GameOver, g.Won, string(history), formatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("save game %s: %w", g.ID, err)
	}
	return nil
}

func (s *sqliteStore) GetGame(ctx context.Context, id string) (*game.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id=?`, id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %q: %w", id, ErrNotFound)
	}
	return g, err
}

func (s *sqliteStore) DeleteGame(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return expectRow(res, "game", id)
}

func (s *sqliteStore) ListGames(ctx context.Context, f GameFilter) ([]*game.Game, error) {
	q := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`
	var args []any
	if f.UserName != "" {
		q += ` AND user_name=?`
		args = append(args, f.UserName)
	}
	if f.ActiveOnly {
		q += ` AND game_over=0`
	}
	q += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []*game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// FinishGame stores the terminal game and its score in one transaction.
func (s *sqliteStore) FinishGame(ctx context.Context, g *game.Game, sc *game.Score) error {
	return WithTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		if err := saveGame(ctx, tx, g); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scores (id, user_name, game_id, won, guesses, created_at)
			VALUES (?,?,?,?,?,?)`,
			sc.ID, sc.UserName, sc.GameID, sc.Won, sc.Guesses, formatTime(sc.CreatedAt))
		if isConstraint(err) {
			return fmt.Errorf("score for game %s: %w", sc.GameID, ErrAlreadyExists)
		}
		if err != nil {
			return fmt.Errorf("insert score: %w", err)
		}
		return nil
	})
}

// ------------------------------- scores ------------------------------------

func (s *sqliteStore) ListScores(ctx context.Context, q ScoreQuery) ([]*game.Score, error) {
	query := `SELECT id, user_name, game_id, won, guesses, created_at FROM scores`
	var args []any
	if q.UserName != "" {
		query += ` WHERE user_name=?`
		args = append(args, q.UserName)
	}
	if q.OrderByGuesses {
		query += ` ORDER BY guesses ASC, rowid ASC`
	} else {
		query += ` ORDER BY rowid ASC`
	}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []*game.Score
	for rows.Next() {
		var sc game.Score
		var created string
		if err := rows.Scan(&sc.ID, &sc.UserName, &sc.GameID, &sc.Won, &sc.Guesses, &created); err != nil {
			return nil, err
		}
		sc.CreatedAt = parseTime(created)
		out = append(out, &sc)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// ------------------------------- helpers -----------------------------------

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*game.User, error) {
	var u game.User
	var created string
	if err := row.Scan(&u.Name, &u.Email, &u.RankingPoints, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}

func scanGame(row rowScanner) (*game.Game, error) {
	var g game.Game
	var letters, history, created string
	if err := row.Scan(&g.ID, &g.UserName, &g.Target, &letters, &g.AttemptsRemaining,
		&g.GameOver, &g.Won, &history, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(letters), &g.GuessedLetters); err != nil {
		return nil, fmt.Errorf("decode guessed letters of %s: %w", g.ID, err)
	}
	if err := json.Unmarshal([]byte(history), &g.History); err != nil {
		return nil, fmt.Errorf("decode history of %s: %w", g.ID, err)
	}
	g.CreatedAt = parseTime(created)
	return &g, nil
}

func expectRow(res sql.Result, kind, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
	}
	return nil
}

// isConstraint reports whether err is a SQLite constraint violation.
func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// parseTime parses RFC3339 timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func nonNilMoves(v []game.Move) []game.Move {
	if v == nil {
		return []game.Move{}
	}
	return v
}
