package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/turnbattle/internal/config"
)

// BattleResult is the archived outcome of one finished battle.
type BattleResult struct {
	BattleID   uuid.UUID
	Preset     string
	Outcome    string // victory, defeat, flee, stalemate
	Turns      int
	WinnerSide string // player, enemy or empty
	StartedAt  time.Time
	FinishedAt time.Time
	Survivors  []string
}

// Archive records finished battles. It is write-once per battle; nothing
// read back is ever used to restore a battle.
type Archive interface {
	SaveResult(ctx context.Context, r BattleResult) error
	ListRecent(ctx context.Context, limit int) ([]BattleResult, error)
	Close() error
}

// OpenArchive opens the archive selected by cfg and applies migrations.
func OpenArchive(ctx context.Context, cfg config.Archive) (Archive, error) {
	switch cfg.Driver {
	case "", config.DriverNone:
		return Discard{}, nil
	case config.DriverPostgres:
		dsn := cfg.PostgresDSN()
		if err := RunMigrations(ctx, dsn); err != nil {
			return nil, err
		}
		database, err := New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return database, nil
	case config.DriverSQLite:
		a, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Driver)
	}
}

// Discard is an Archive that stores nothing.
type Discard struct{}

func (Discard) SaveResult(context.Context, BattleResult) error { return nil }

func (Discard) ListRecent(context.Context, int) ([]BattleResult, error) { return nil, nil }

func (Discard) Close() error { return nil }

func validate(r BattleResult) error {
	if r.BattleID == uuid.Nil {
		return fmt.Errorf("battle id is required")
	}
	if r.Outcome == "" {
		return fmt.Errorf("outcome is required")
	}
	if r.FinishedAt.IsZero() {
		return fmt.Errorf("finished_at is required")
	}
	return nil
}
