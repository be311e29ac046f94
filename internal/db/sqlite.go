package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/udisondev/turnbattle/internal/db/migrations"
)

// SQLite is a file-backed archive for single-machine runs.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if err := Migrate(ctx, sqlDB, "sqlite3", migrations.SQLiteDir); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

// Close releases the connection.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveResult inserts a finished battle.
func (s *SQLite) SaveResult(ctx context.Context, r BattleResult) error {
	if err := validate(r); err != nil {
		return err
	}
	if r.Survivors == nil {
		r.Survivors = []string{}
	}
	survivors, err := json.Marshal(r.Survivors)
	if err != nil {
		return fmt.Errorf("encoding survivors: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO battle_results
		 (battle_id, preset, outcome, turns, winner_side, started_at, finished_at, survivors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BattleID.String(), r.Preset, r.Outcome, r.Turns, r.WinnerSide,
		r.StartedAt.UnixMilli(), r.FinishedAt.UnixMilli(), string(survivors),
	)
	if err != nil {
		return fmt.Errorf("saving battle %s: %w", r.BattleID, err)
	}
	return nil
}

// ListRecent returns up to limit results, most recently finished first.
func (s *SQLite) ListRecent(ctx context.Context, limit int) ([]BattleResult, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT battle_id, preset, outcome, turns, winner_side, started_at, finished_at, survivors
		 FROM battle_results
		 ORDER BY finished_at DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying battle results: %w", err)
	}
	defer rows.Close()

	var results []BattleResult
	for rows.Next() {
		var (
			r                 BattleResult
			id, survivors     string
			started, finished int64
		)
		if err := rows.Scan(&id, &r.Preset, &r.Outcome, &r.Turns, &r.WinnerSide, &started, &finished, &survivors); err != nil {
			return nil, fmt.Errorf("scanning battle result: %w", err)
		}
		if r.BattleID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing battle id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(survivors), &r.Survivors); err != nil {
			return nil, fmt.Errorf("decoding survivors of %s: %w", id, err)
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		r.FinishedAt = time.UnixMilli(finished).UTC()
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battle results: %w", err)
	}
	return results, nil
}
