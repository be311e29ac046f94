package skill

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/udisondev/turnbattle/internal/model"
)

// AbilityEffect is the primary effect an ability applies to its target.
type AbilityEffect int8

const (
	AbilityDamage AbilityEffect = iota
	AbilityHeal
	AbilityBuff
	AbilityDebuff
)

// String returns the config name.
func (e AbilityEffect) String() string {
	switch e {
	case AbilityDamage:
		return "damage"
	case AbilityHeal:
		return "heal"
	case AbilityBuff:
		return "buff"
	case AbilityDebuff:
		return "debuff"
	default:
		return "unknown"
	}
}

// UnmarshalText decodes an ability effect from config.
func (e *AbilityEffect) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "damage":
		*e = AbilityDamage
	case "heal":
		*e = AbilityHeal
	case "buff":
		*e = AbilityBuff
	case "debuff":
		*e = AbilityDebuff
	default:
		return fmt.Errorf("unknown ability effect: %q", text)
	}
	return nil
}

// TargetMode describes who an ability is meant for. The core does not
// enforce it; the caller picks the target.
type TargetMode int8

const (
	TargetSingleEnemy TargetMode = iota
	TargetSelf
	TargetSingleAlly
	TargetAllAllies
	TargetAllEnemies
	TargetAll
)

// String returns the config name.
func (m TargetMode) String() string {
	switch m {
	case TargetSingleEnemy:
		return "single_enemy"
	case TargetSelf:
		return "self"
	case TargetSingleAlly:
		return "single_ally"
	case TargetAllAllies:
		return "all_allies"
	case TargetAllEnemies:
		return "all_enemies"
	case TargetAll:
		return "all"
	default:
		return "unknown"
	}
}

// UnmarshalText decodes a targeting mode from config.
func (m *TargetMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "single_enemy":
		*m = TargetSingleEnemy
	case "self":
		*m = TargetSelf
	case "single_ally":
		*m = TargetSingleAlly
	case "all_allies":
		*m = TargetAllAllies
	case "all_enemies":
		*m = TargetAllEnemies
	case "all":
		*m = TargetAll
	default:
		return fmt.Errorf("unknown target mode: %q", text)
	}
	return nil
}

// TargetsAllies reports whether the mode targets the user's own side.
func (m TargetMode) TargetsAllies() bool {
	return m == TargetSelf || m == TargetSingleAlly || m == TargetAllAllies
}

// Ability is a named, MP-gated action definition. Immutable once built.
type Ability struct {
	Name            string
	Description     string
	MPCost          int
	Cooldown        int
	Targeting       TargetMode
	Effect          AbilityEffect
	BasePower       int
	PowerMultiplier float64

	// Status is attached by Buff/Debuff and, with probability TriggerChance,
	// as a secondary proc on any ability. Nil when the ability has none.
	Status        *EffectTemplate
	TriggerChance float64
}

// Outcome reports what an ability execution did.
type Outcome struct {
	Power     int
	Damage    int
	Healed    int
	Effects   int // status effects attached
	Triggered bool
}

// CanUse reports whether the user has enough MP.
func (a *Ability) CanUse(user *model.Participant) bool {
	return user.Stats().CurrentMP() >= a.MPCost
}

// Power computes ability power for the user. Damage scales with attack;
// every other kind uses BasePower.
func (a *Ability) Power(user *model.Participant) int {
	if a.Effect == AbilityDamage {
		return int(math.Round(float64(user.Stats().Attack()) * a.PowerMultiplier))
	}
	return a.BasePower
}

// Execute applies the ability from user to target.
// Returns false without any mutation if the user cannot pay the MP cost.
//
// A Buff/Debuff attaches the status template once as its primary effect and
// may attach a second, independently timed instance from the proc roll.
func (a *Ability) Execute(user, target *model.Participant, rng *rand.Rand) (Outcome, bool) {
	if user == nil || target == nil {
		return Outcome{}, false
	}
	if !a.CanUse(user) {
		slog.Debug("cannot use ability, not enough MP",
			"ability", a.Name,
			"user", user.Name(),
			"mp", user.Stats().CurrentMP(),
			"cost", a.MPCost)
		return Outcome{}, false
	}
	user.Stats().ConsumeMP(a.MPCost)

	out := Outcome{Power: a.Power(user)}

	switch a.Effect {
	case AbilityDamage:
		out.Damage = target.TakeDamage(out.Power)
	case AbilityHeal:
		out.Healed = target.Heal(out.Power)
	case AbilityBuff, AbilityDebuff:
		if a.attachStatus(target) {
			out.Effects++
		}
	}

	if a.Status != nil && rollChance(rng, a.TriggerChance) {
		a.attachStatus(target)
		out.Effects++
		out.Triggered = true
	}

	slog.Info("ability used",
		"ability", a.Name,
		"user", user.Name(),
		"target", target.Name(),
		"effect", a.Effect,
		"power", out.Power,
		"damage", out.Damage,
		"healed", out.Healed,
		"statusApplied", out.Effects)

	return out, true
}

func (a *Ability) attachStatus(target *model.Participant) bool {
	if a.Status == nil {
		return false
	}
	target.AddStatusEffect(a.Status.New())
	return true
}

// rollChance draws a uniform value in [0,1) and succeeds when it is <= chance.
func rollChance(rng *rand.Rand, chance float64) bool {
	var v float64
	if rng != nil {
		v = rng.Float64()
	} else {
		v = rand.Float64()
	}
	return v <= chance
}

// Describe returns a multi-line description with costs and proc chance.
func (a *Ability) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\nMP Cost: %d\nPower: %d", a.Name, a.Description, a.MPCost, a.BasePower)
	if a.Status != nil {
		fmt.Fprintf(&b, "\n%.0f%% chance to apply %s", a.TriggerChance*100, a.Status.Kind)
	}
	return b.String()
}
