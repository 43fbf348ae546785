package results

import (
	"context"
	"database/sql"
	"time"
)

// DefaultLimit is the leaderboard size when none is requested.
const DefaultLimit = 20

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Result is one finished world.
type Result struct {
	WorldID string `json:"worldId"`
	Size    int    `json:"size"`
	Score   int    `json:"score"`
	Won     bool   `json:"won"`
	Moves   int    `json:"moves"`
	Date    string `json:"date"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts r. A world is recorded at most once; repeats are ignored.
func (s *Store) Record(ctx context.Context, r Result) error {
	if r.Date == "" {
		r.Date = DateKey(time.Now())
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results(world_id, size, score, won, moves, date)
		VALUES(?,?,?,?,?,?)`, r.WorldID, r.Size, r.Score, r.Won, r.Moves, r.Date,
	)
	return err
}

// Top returns the best results for date: wins first, then highest score,
// then fewest moves.
func (s *Store) Top(ctx context.Context, date string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT world_id, size, score, won, moves, date
		FROM results
		WHERE date=?
		ORDER BY won DESC, score DESC, moves ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.WorldID, &r.Size, &r.Score, &r.Won, &r.Moves, &r.Date); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
