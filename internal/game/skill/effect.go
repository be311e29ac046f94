package skill

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/turnbattle/internal/model"
)

// EffectKind enumerates status effect behaviours.
type EffectKind int8

const (
	EffectPoison EffectKind = iota
	EffectBurn
	EffectRegen
	EffectAttackUp
	EffectAttackDown
	EffectDefenseUp
	EffectDefenseDown
	EffectStun
	EffectSlow
	EffectHaste
)

// statDelta returns the stat touched by a stat-modifying kind and the sign
// of the delta applied on attach. ok is false for DoT/HoT/Stun kinds.
func (k EffectKind) statDelta() (stat model.StatKind, sign int, ok bool) {
	switch k {
	case EffectAttackUp:
		return model.StatAttack, 1, true
	case EffectAttackDown:
		return model.StatAttack, -1, true
	case EffectDefenseUp:
		return model.StatDefense, 1, true
	case EffectDefenseDown:
		return model.StatDefense, -1, true
	case EffectHaste:
		return model.StatSpeed, 1, true
	case EffectSlow:
		return model.StatSpeed, -1, true
	default:
		return 0, 0, false
	}
}

// ModifiesStat reports whether the kind applies a persistent stat delta.
func (k EffectKind) ModifiesStat() bool {
	_, _, ok := k.statDelta()
	return ok
}

// StatusEffect is a timed modifier or periodic tick attached to one participant.
//
// Stat-modifying kinds apply exactly one signed delta in Attach and reverse
// the same recorded delta in Detach. Detach on an inactive effect is a no-op,
// so a double removal never reverses twice.
type StatusEffect struct {
	name     string
	kind     EffectKind
	duration int
	power    int

	turnsRemaining int
	active         bool

	// delta actually applied in Attach, reversed in Detach.
	appliedStat  model.StatKind
	appliedDelta int
}

// NewStatusEffect creates an inactive effect with turnsRemaining = duration.
func NewStatusEffect(name string, kind EffectKind, duration, power int) *StatusEffect {
	return &StatusEffect{
		name:           name,
		kind:           kind,
		duration:       duration,
		power:          power,
		turnsRemaining: duration,
	}
}

func (e *StatusEffect) Name() string        { return e.name }
func (e *StatusEffect) Kind() EffectKind    { return e.kind }
func (e *StatusEffect) Duration() int       { return e.duration }
func (e *StatusEffect) Power() int          { return e.power }
func (e *StatusEffect) TurnsRemaining() int { return e.turnsRemaining }
func (e *StatusEffect) IsActive() bool      { return e.active }

// Expired reports whether no turns remain.
func (e *StatusEffect) Expired() bool { return e.turnsRemaining <= 0 }

// BlocksAction is true for Stun.
func (e *StatusEffect) BlocksAction() bool { return e.kind == EffectStun && e.active && !e.Expired() }

// Attach marks the effect active and applies its stat delta, if any.
func (e *StatusEffect) Attach(p *model.Participant) {
	if e.active {
		return
	}
	e.active = true

	if stat, sign, ok := e.kind.statDelta(); ok {
		e.appliedStat = stat
		e.appliedDelta = sign * e.power
		p.Stats().ModifyStat(stat, e.appliedDelta, false)
	}

	slog.Debug("status effect applied",
		"effect", e.name,
		"kind", e.kind,
		"power", e.power,
		"duration", e.duration,
		"target", p.Name())
}

// Tick performs the per-pass action of the effect and consumes one turn.
func (e *StatusEffect) Tick(p *model.Participant) {
	if !e.active || e.Expired() {
		return
	}

	switch e.kind {
	case EffectPoison, EffectBurn:
		dealt := p.TakeDamage(e.power)
		slog.Debug("dot tick", "effect", e.name, "kind", e.kind, "damage", dealt, "target", p.Name())
	case EffectRegen:
		healed := p.Heal(e.power)
		slog.Debug("hot tick", "effect", e.name, "healed", healed, "target", p.Name())
	case EffectStun:
		slog.Debug("stunned", "effect", e.name, "target", p.Name())
	}

	e.turnsRemaining--
}

// Detach reverses the recorded stat delta and marks the effect inactive.
func (e *StatusEffect) Detach(p *model.Participant) {
	if !e.active {
		return
	}
	e.active = false

	if e.appliedDelta != 0 {
		p.Stats().ModifyStat(e.appliedStat, -e.appliedDelta, false)
		e.appliedDelta = 0
	}

	slog.Debug("status effect removed", "effect", e.name, "target", p.Name())
}

// Description returns a short human-readable summary.
func (e *StatusEffect) Description() string {
	return fmt.Sprintf("%s: %s (%d turns)", e.name, e.kind.describe(e.power), e.turnsRemaining)
}

func (k EffectKind) describe(power int) string {
	switch k {
	case EffectPoison:
		return fmt.Sprintf("Takes %d poison damage per turn", power)
	case EffectBurn:
		return fmt.Sprintf("Takes %d burn damage per turn", power)
	case EffectRegen:
		return fmt.Sprintf("Heals %d HP per turn", power)
	case EffectAttackUp:
		return fmt.Sprintf("Attack increased by %d", power)
	case EffectAttackDown:
		return fmt.Sprintf("Attack decreased by %d", power)
	case EffectDefenseUp:
		return fmt.Sprintf("Defense increased by %d", power)
	case EffectDefenseDown:
		return fmt.Sprintf("Defense decreased by %d", power)
	case EffectStun:
		return "Cannot act"
	case EffectSlow:
		return fmt.Sprintf("Speed decreased by %d", power)
	case EffectHaste:
		return fmt.Sprintf("Speed increased by %d", power)
	default:
		return "Unknown effect"
	}
}

// EffectTemplate describes a status effect to instantiate on demand.
type EffectTemplate struct {
	Name     string
	Kind     EffectKind
	Duration int
	Power    int
}

// New creates a fresh, inactive effect from the template.
func (t EffectTemplate) New() *StatusEffect {
	return NewStatusEffect(t.Name, t.Kind, t.Duration, t.Power)
}
