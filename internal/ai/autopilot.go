package ai

import (
	"math/rand/v2"

	"github.com/udisondev/turnbattle/internal/game/combat"
	"github.com/udisondev/turnbattle/internal/model"
)

// Autopilot drives player-side turns when no human is at the controls:
// a basic attack against a random living enemy.
type Autopilot struct {
	targeter Controller
	rng      *rand.Rand
}

// NewAutopilot creates an autopilot sharing rng for targeting and damage rolls.
func NewAutopilot(rng *rand.Rand) *Autopilot {
	return &Autopilot{
		targeter: NewRandomTargeter(rng),
		rng:      rng,
	}
}

// Decide returns the target and action for actor, or ok=false when no enemy is alive.
func (a *Autopilot) Decide(actor *model.Participant, enemies []*model.Participant) (target *model.Participant, action combat.Action, ok bool) {
	target = a.targeter.ChooseTarget(enemies)
	if target == nil {
		return nil, nil, false
	}
	return target, combat.AttackAction(actor, a.rng), true
}
