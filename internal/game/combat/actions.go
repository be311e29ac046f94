package combat

import (
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/turnbattle/internal/game/skill"
	"github.com/udisondev/turnbattle/internal/model"
)

// Action is a turn action invoked by the scheduler with the chosen target.
// The action must call done exactly once when it has finished resolving;
// until then the scheduler keeps the action in flight.
type Action func(target *model.Participant, done func())

// Attack performs a basic attack and returns the damage actually dealt.
// Nothing happens when either side is missing or dead.
func Attack(attacker, target *model.Participant, rng *rand.Rand) int {
	if err := ValidateAttack(attacker, target); err != nil {
		slog.Debug("attack skipped", "attacker", attacker, "target", target, "reason", err)
		return 0
	}

	raw := CalcAttackDamage(attacker.Stats().Attack(), rng)
	dealt := target.TakeDamage(raw)

	slog.Info("attack",
		"attacker", attacker.Name(),
		"target", target.Name(),
		"raw", raw,
		"damage", dealt,
		"targetHP", target.Stats().CurrentHP())
	return dealt
}

// Defend grants the participant a one-turn DefenseUp of half its defense.
func Defend(p *model.Participant) *skill.StatusEffect {
	e := skill.NewStatusEffect("Defend", skill.EffectDefenseUp, 1, DefendPower(p.Stats().Defense()))
	p.AddStatusEffect(e)

	slog.Info("defend", "participant", p.Name(), "bonus", e.Power())
	return e
}

// AttackAction returns an action performing a basic attack from attacker.
func AttackAction(attacker *model.Participant, rng *rand.Rand) Action {
	return func(target *model.Participant, done func()) {
		Attack(attacker, target, rng)
		done()
	}
}

// DefendAction returns an action in which p defends. The target is ignored.
func DefendAction(p *model.Participant) Action {
	return func(_ *model.Participant, done func()) {
		Defend(p)
		done()
	}
}

// AbilityAction returns an action executing the ability from user.
// A failed execution (not enough MP) still completes the turn.
func AbilityAction(user *model.Participant, a *skill.Ability, rng *rand.Rand) Action {
	return func(target *model.Participant, done func()) {
		if _, ok := a.Execute(user, target, rng); !ok {
			slog.Warn("ability failed", "ability", a.Name, "user", user.Name())
		}
		done()
	}
}
