// internal/daily/store.go
//
// Persistence of daily results (table daily_results, see assets/sql).
// One row per (player, date); players are user IDs or anonymous cookie IDs.

package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Result is one finished daily puzzle.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Store reads and writes daily results on a shared *sql.DB.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether the player has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var played bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM daily_results WHERE user_id=? AND date=?)`,
		userID, date,
	).Scan(&played)
	if err != nil {
		return false, fmt.Errorf("daily played: %w", err)
	}
	return played, nil
}

// InsertResult respects UNIQUE(user_id, date): a second result for the same
// day is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, guesses, elapsed_ms)
		VALUES(?,?,?,?)`, r.UserID, r.Date, r.Guesses, r.ElapsedMs,
	)
	if err != nil {
		return fmt.Errorf("daily insert: %w", err)
	}
	return nil
}

// LBRow is one leaderboard line. Guests are listed as "guest" so anonymous
// cookie IDs never leave the server.
type LBRow struct {
	Rank      int    `json:"rank"`
	Player    string `json:"player"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Leaderboard ranks a day's results by fewest guesses, then fastest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(u.username, 'guest'), d.guesses, d.elapsed_ms
		FROM daily_results d
		LEFT JOIN users u ON u.id = d.user_id
		WHERE d.date=?
		ORDER BY d.guesses ASC, d.elapsed_ms ASC, d.created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("daily leaderboard: %w", err)
	}
	defer rows.Close()

	out := []LBRow{}
	for rows.Next() {
		r := LBRow{Rank: len(out) + 1}
		if err := rows.Scan(&r.Player, &r.Guesses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
