// Package simulate plays battles without a human: the player side is driven
// by the autopilot and time is advanced on a virtual clock.
package simulate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/turnbattle/internal/ai"
	"github.com/udisondev/turnbattle/internal/battle"
	"github.com/udisondev/turnbattle/internal/config"
	"github.com/udisondev/turnbattle/internal/data"
	"github.com/udisondev/turnbattle/internal/db"
)

// Outcome names as archived.
const (
	OutcomeVictory   = "victory"
	OutcomeDefeat    = "defeat"
	OutcomeFlee      = "flee"
	OutcomeStalemate = "stalemate"
)

// Result describes one simulated battle.
type Result struct {
	Index      int
	Seed       uint64
	BattleID   uuid.UUID
	Outcome    string
	Turns      int
	WinnerSide string
	Survivors  []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// SchedulerOptions maps config and preset settings to scheduler options.
func SchedulerOptions(cfg config.Battle, preset *data.Preset, rng *rand.Rand) battle.Options {
	t := battle.Timing{
		PreBattleDelay:  cfg.Timers.PreBattleDelay,
		ThinkTime:       cfg.Timers.ThinkTime,
		ActionDelay:     cfg.Timers.ActionDelay,
		ProcessingDelay: cfg.Timers.ProcessingDelay,
		TurnDelay:       cfg.Timers.TurnDelay,
		ActionTimeout:   cfg.Timers.ActionTimeout,
	}
	if preset != nil && preset.TurnDelay > 0 {
		t.TurnDelay = preset.TurnDelay
	}
	return battle.Options{
		Timing:        t,
		StunSkipsTurn: cfg.StunSkipsTurn,
		Rand:          rng,
	}
}

// NewRand returns the battle rng for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Play runs one autopilot battle to completion or until cfg.MaxTurns turns
// have been completed (stalemate).
func Play(ctx context.Context, cfg config.Battle, preset *data.Preset, seed uint64) (Result, error) {
	roster, err := data.BuildRoster(preset)
	if err != nil {
		return Result{}, err
	}

	rng := NewRand(seed)
	s := battle.New(SchedulerOptions(cfg, preset, rng))
	for _, p := range roster.Players {
		if err := s.AddParticipant(p, true); err != nil {
			return Result{}, err
		}
	}
	for _, p := range roster.Enemies {
		if err := s.AddParticipant(p, false); err != nil {
			return Result{}, err
		}
	}

	res := Result{Seed: seed, BattleID: s.ID(), StartedAt: time.Now()}
	if err := s.Start(); err != nil {
		return res, fmt.Errorf("starting battle %s: %w", s.ID(), err)
	}

	pilot := ai.NewAutopilot(rng)
	step := cfg.TickInterval
	for !s.IsOver() && s.Turn() < cfg.MaxTurns {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if s.State() == battle.StatePlayerTurn {
			target, action, ok := pilot.Decide(s.Current(), s.Enemies())
			if !ok {
				if err := s.RequestFlee(); err != nil {
					return res, err
				}
				continue
			}
			if err := s.RequestPlayerAction(target, action); err != nil {
				return res, err
			}
			continue
		}

		if err := s.Advance(step); err != nil {
			return res, err
		}
	}

	res.FinishedAt = time.Now()
	res.Turns = s.Turn()
	res.Outcome, res.WinnerSide = OutcomeOf(s.State())
	for _, p := range roster.All() {
		if p.IsAlive() {
			res.Survivors = append(res.Survivors, p.Name())
		}
	}
	return res, nil
}

// OutcomeOf maps a scheduler state to the archived outcome and winning side.
func OutcomeOf(state battle.CombatState) (outcome, winner string) {
	switch state {
	case battle.StateVictory:
		return OutcomeVictory, "player"
	case battle.StateDefeat:
		return OutcomeDefeat, "enemy"
	case battle.StateFlee:
		return OutcomeFlee, ""
	default:
		return OutcomeStalemate, ""
	}
}

// Run plays n battles with at most concurrency running at once. Battle i
// uses seed cfg.Seed+i; a zero cfg.Seed picks a random base seed.
func Run(ctx context.Context, cfg config.Battle, preset *data.Preset, n, concurrency int) ([]Result, error) {
	if n <= 0 {
		return nil, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	base := cfg.Seed
	if base == 0 {
		base = rand.Uint64()
	}

	slog.Info("simulation started", "battles", n, "concurrency", concurrency, "seed", base)

	results := make([]Result, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			r, err := Play(ctx, cfg, preset, base+uint64(i))
			if err != nil {
				return fmt.Errorf("battle %d: %w", i, err)
			}
			r.Index = i
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := Summarize(results)
	slog.Info("simulation finished",
		"battles", sum.Battles,
		"victories", sum.Victories,
		"defeats", sum.Defeats,
		"stalemates", sum.Stalemates,
		"avg_turns", sum.AverageTurns)
	return results, nil
}

// Summary aggregates simulation results.
type Summary struct {
	Battles      int
	Victories    int
	Defeats      int
	Flees        int
	Stalemates   int
	AverageTurns float64
}

// Summarize counts outcomes and averages turn counts.
func Summarize(results []Result) Summary {
	var s Summary
	total := 0
	for _, r := range results {
		s.Battles++
		total += r.Turns
		switch r.Outcome {
		case OutcomeVictory:
			s.Victories++
		case OutcomeDefeat:
			s.Defeats++
		case OutcomeFlee:
			s.Flees++
		case OutcomeStalemate:
			s.Stalemates++
		}
	}
	if s.Battles > 0 {
		s.AverageTurns = float64(total) / float64(s.Battles)
	}
	return s
}

// Record converts a result to its archive row.
func (r Result) Record(preset string) db.BattleResult {
	return db.BattleResult{
		BattleID:   r.BattleID,
		Preset:     preset,
		Outcome:    r.Outcome,
		Turns:      r.Turns,
		WinnerSide: r.WinnerSide,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Survivors:  r.Survivors,
	}
}

// Archive saves every result.
func Archive(ctx context.Context, a db.Archive, preset string, results []Result) error {
	for _, r := range results {
		if err := a.SaveResult(ctx, r.Record(preset)); err != nil {
			return err
		}
	}
	return nil
}
