package persist

import (
	"context"
	"fmt"
	"time"
)

// RunRow is one finished play-through of a stored level.
type RunRow struct {
	ID         int64
	Slug       string
	Moves      string // compact move letters, e.g. "RRUW"
	Turns      int
	Outcome    string
	FinishedAt time.Time
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Record inserts a run. The level row must exist; the check and the insert
// share one transaction.
func (r *RunRepo) Record(ctx context.Context, run RunRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("run begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM levels WHERE slug = $1)`, run.Slug).Scan(&exists); err != nil {
		return fmt.Errorf("run level lookup: %w", err)
	}
	if !exists {
		return fmt.Errorf("record run: level %q not stored", run.Slug)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO level_runs (slug, moves, turns, outcome) VALUES ($1, $2, $3, $4)`,
		run.Slug, run.Moves, run.Turns, run.Outcome,
	); err != nil {
		return fmt.Errorf("run insert: %w", err)
	}

	return tx.Commit(ctx)
}

// Best returns the shortest winning runs of a level.
func (r *RunRepo) Best(ctx context.Context, slug string, limit int) ([]RunRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, slug, moves, turns, outcome, finished_at
		 FROM level_runs WHERE slug = $1 AND outcome = 'win'
		 ORDER BY turns, finished_at LIMIT $2`, slug, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		if err := rows.Scan(&rr.ID, &rr.Slug, &rr.Moves, &rr.Turns, &rr.Outcome, &rr.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
