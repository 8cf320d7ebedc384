// internal/store/sqlite.go
//
// SQLite persistence for the Mastermind server.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Round history: start, record guesses, finish, leaderboard.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/assets"
)

// SQLite wraps the database handle.
type SQLite struct {
	db *sql.DB
}

/**
 * Open opens (and creates if missing) a SQLite database file and applies
 * migrations.
 *
 * - Ensures parent directory exists for relative DSNs (e.g. ./data/app.db).
 * - Configures busy timeout and WAL journaling mode.
 * - Enforces foreign keys.
 */
func Open(dsn string) (*SQLite, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// DB exposes the raw handle for packages with their own tables (daily).
func (s *SQLite) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

/**
 * migrate applies the embedded SQL migrations.
 *
 * - Uses a _migrations table to track applied files.
 * - Executes each file in lexical order inside its own transaction.
 * - Scripts that manage their own transaction run as-is.
 */
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlText, err := assets.ReadMigration(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		if strings.Contains(strings.ToUpper(sqlText), "BEGIN TRANSACTION") {
			if _, err := db.Exec(sqlText); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
			if _, err := db.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
				return fmt.Errorf("record %s: %w", f, err)
			}
			log.Info().Str("migration", f).Msg("applied (self-managed)")
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(sqlText); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/* ------------------------------- Rounds --------------------------------- */

// Owner identifies who played a round: a user account or an anonymous cookie.
type Owner struct {
	UserID string
	AnonID string
}

func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return `user_id=?`, o.UserID
	}
	return `anonymous_id=?`, o.AnonID
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Round is one row of the rounds table.
type Round struct {
	ID         string `json:"id"`
	SessionID  string `json:"sessionId"`
	Scoring    string `json:"scoring"`
	Status     string `json:"status"` // playing | solved
	Guesses    int    `json:"guesses"`
	ElapsedMs  int64  `json:"elapsedMs"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

// StartRound inserts a "playing" row for a new round and counts it toward
// the owner's rounds played.
func (s *SQLite) StartRound(ctx context.Context, o Owner, roundID, sessionID, scoring string) error {
	res, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds (id, session_id, user_id, anonymous_id, scoring, status, guesses, started_at)
        VALUES (?, ?, ?, ?, ?, 'playing', 0, ?)`,
		roundID, sessionID, nullable(o.UserID), nullable(o.AnonID), scoring,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 || o.UserID == "" {
		return nil
	}
	_, err = s.db.ExecContext(ctx, `UPDATE users SET rounds_played = rounds_played + 1 WHERE id=?`, o.UserID)
	return err
}

/**
 * RecordGuess counts one evaluated guess against a round and, when solved,
 * marks it finished and bumps the owner's stats, all in one transaction.
 */
func (s *SQLite) RecordGuess(ctx context.Context, o Owner, roundID string, solved bool, elapsed time.Duration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	where, arg := o.clause()
	if _, err := tx.ExecContext(ctx, `UPDATE rounds SET guesses = guesses + 1 WHERE id=? AND `+where, roundID, arg); err != nil {
		return fmt.Errorf("update guesses: %w", err)
	}
	if solved {
		if _, err := tx.ExecContext(ctx, `UPDATE rounds SET status='solved', finished_at=?, elapsed_ms=? WHERE id=? AND `+where,
			time.Now().UTC().Format(time.RFC3339Nano), elapsed.Milliseconds(), roundID, arg); err != nil {
			return fmt.Errorf("finish round: %w", err)
		}
		if o.UserID != "" {
			var guesses int
			if err := tx.QueryRowContext(ctx, `SELECT guesses FROM rounds WHERE id=?`, roundID).Scan(&guesses); err != nil {
				return fmt.Errorf("read guesses: %w", err)
			}
			if err := bumpStats(ctx, tx, o.UserID, guesses); err != nil {
				return fmt.Errorf("bump stats: %w", err)
			}
		}
	}
	return tx.Commit()
}

// bumpStats increments rounds solved and keeps the best guess count.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, guesses int) error {
	_, err := tx.ExecContext(ctx, `
        UPDATE users SET
            rounds_solved = rounds_solved + 1,
            best_guesses  = CASE WHEN best_guesses = 0 OR ? < best_guesses THEN ? ELSE best_guesses END
        WHERE id=?`, guesses, guesses, userID)
	return err
}

// RecentRounds returns the user's latest rounds, newest first.
func (s *SQLite) RecentRounds(ctx context.Context, userID string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, session_id, scoring, status, guesses, elapsed_ms, started_at, COALESCE(finished_at,'')
        FROM rounds WHERE user_id=? ORDER BY started_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Scoring, &r.Status, &r.Guesses, &r.ElapsedMs, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LeaderboardRow is one entry of the all-time leaderboard.
type LeaderboardRow struct {
	Username  string `json:"username"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
}

/**
 * Leaderboard returns the best solved rounds by registered players.
 *
 * - Ordered by guesses ASC, then elapsed time ASC, then finish time ASC.
 * - Default limit is 20 if not specified.
 */
func (s *SQLite) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT u.username, r.guesses, r.elapsed_ms
        FROM rounds r JOIN users u ON u.id = r.user_id
        WHERE r.status='solved'
        ORDER BY r.guesses ASC, r.elapsed_ms ASC, r.finished_at ASC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardRow, 0, limit)
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.Username, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnonRounds transfers anonymous rounds to a user account after auth.
func (s *SQLite) ClaimAnonRounds(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `UPDATE rounds SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}
