package ai

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/turnbattle/internal/model"
)

// Controller picks targets for AI-driven turns.
type Controller interface {
	// ChooseTarget returns one of the living candidates, or nil if none is alive.
	ChooseTarget(candidates []*model.Participant) *model.Participant
}

// RandomTargeter picks a uniformly random living candidate.
type RandomTargeter struct {
	rng *rand.Rand
}

// NewRandomTargeter creates a targeter. A nil rng uses the global source.
func NewRandomTargeter(rng *rand.Rand) *RandomTargeter {
	return &RandomTargeter{rng: rng}
}

// ChooseTarget implements Controller.
func (t *RandomTargeter) ChooseTarget(candidates []*model.Participant) *model.Participant {
	alive := Alive(candidates)
	if len(alive) == 0 {
		return nil
	}

	var idx int
	if t.rng != nil {
		idx = t.rng.IntN(len(alive))
	} else {
		idx = rand.IntN(len(alive))
	}
	chosen := alive[idx]

	if IsDebugEnabled() {
		slog.Debug("AI target chosen",
			"target", chosen.Name(),
			"candidates", len(alive))
	}
	return chosen
}

// Alive filters out dead participants, preserving order.
func Alive(participants []*model.Participant) []*model.Participant {
	out := make([]*model.Participant, 0, len(participants))
	for _, p := range participants {
		if p != nil && p.IsAlive() {
			out = append(out, p)
		}
	}
	return out
}
