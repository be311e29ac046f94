package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Command is a function executed on the runner goroutine with exclusive
// access to the scheduler.
type Command func(s *Scheduler)

// Runner drives a Scheduler in real time from a ticker. Other goroutines
// talk to the battle only through Submit.
type Runner struct {
	scheduler *Scheduler
	interval  time.Duration
	commands  chan Command
	stopCh    chan struct{}
}

// NewRunner creates a runner advancing s every interval.
func NewRunner(s *Scheduler, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Runner{
		scheduler: s,
		interval:  interval,
		commands:  make(chan Command, 16),
		stopCh:    make(chan struct{}),
	}
}

// ErrRunnerStopped is returned by Submit once Run has returned.
var ErrRunnerStopped = errors.New("battle runner stopped")

// Submit queues cmd for the runner goroutine.
func (r *Runner) Submit(ctx context.Context, cmd Command) error {
	select {
	case <-r.stopCh:
		return ErrRunnerStopped
	default:
	}

	select {
	case r.commands <- cmd:
		return nil
	case <-r.stopCh:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the battle if it is still Idle and advances it until it ends,
// halts, or ctx is canceled (blocks).
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.stopCh)

	s := r.scheduler
	if s.State() == StateIdle {
		if err := s.Start(); err != nil {
			return fmt.Errorf("starting battle: %w", err)
		}
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("battle runner started", "battle", s.ID(), "interval", r.interval)

	last := time.Now()
	for {
		if s.IsOver() {
			slog.Info("battle runner finished", "battle", s.ID(), "outcome", s.State())
			return nil
		}

		select {
		case <-ctx.Done():
			slog.Info("battle runner stopping", "battle", s.ID())
			return ctx.Err()

		case cmd := <-r.commands:
			cmd(s)
			if err := s.Err(); err != nil {
				return err
			}

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if err := s.Advance(dt); err != nil {
				return err
			}
		}
	}
}
