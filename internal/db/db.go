package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool for the battle archive.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// NewFromPool wraps an existing pool (tests).
func NewFromPool(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// Close closes the database connection pool.
func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// SaveResult inserts a finished battle. Saving the same battle twice is an error.
func (d *DB) SaveResult(ctx context.Context, r BattleResult) error {
	if err := validate(r); err != nil {
		return err
	}
	survivors := r.Survivors
	if survivors == nil {
		survivors = []string{}
	}

	_, err := d.pool.Exec(ctx,
		`INSERT INTO battle_results
		 (battle_id, preset, outcome, turns, winner_side, started_at, finished_at, survivors)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.BattleID, r.Preset, r.Outcome, r.Turns, r.WinnerSide, r.StartedAt, r.FinishedAt, survivors,
	)
	if err != nil {
		return fmt.Errorf("saving battle %s: %w", r.BattleID, err)
	}
	return nil
}

// ListRecent returns up to limit results, most recently finished first.
func (d *DB) ListRecent(ctx context.Context, limit int) ([]BattleResult, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT battle_id, preset, outcome, turns, winner_side, started_at, finished_at, survivors
		 FROM battle_results
		 ORDER BY finished_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying battle results: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (BattleResult, error) {
		var r BattleResult
		err := row.Scan(&r.BattleID, &r.Preset, &r.Outcome, &r.Turns, &r.WinnerSide,
			&r.StartedAt, &r.FinishedAt, &r.Survivors)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning battle results: %w", err)
	}
	return results, nil
}
