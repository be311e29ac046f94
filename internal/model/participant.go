package model

import "log/slog"

// Side identifies which roster a participant belongs to.
type Side int8

const (
	SidePlayer Side = iota
	SideEnemy
)

// String returns human-readable side name.
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// StatusEffect is a timed attachment owned by a participant.
// Implemented by skill.StatusEffect.
type StatusEffect interface {
	Name() string
	Attach(p *Participant)
	Tick(p *Participant)
	Detach(p *Participant)
	Expired() bool
	// BlocksAction reports whether the effect prevents its owner from acting.
	BlocksAction() bool
}

// Participant is one combatant tracked by the scheduler.
type Participant struct {
	id    string
	name  string
	side  Side
	stats *Stats

	effects   []StatusEffect
	starting  []StatusEffect
	abilities []string
}

// NewParticipant creates a participant. id must be unique within a battle.
func NewParticipant(id, name string, side Side, stats *Stats) *Participant {
	if stats == nil {
		stats = NewStats(0, 0, 0, 0, 0)
	}
	return &Participant{
		id:    id,
		name:  name,
		side:  side,
		stats: stats,
	}
}

func (p *Participant) ID() string     { return p.id }
func (p *Participant) Name() string   { return p.name }
func (p *Participant) Side() Side     { return p.side }
func (p *Participant) IsPlayer() bool { return p.side == SidePlayer }
func (p *Participant) Stats() *Stats  { return p.stats }
func (p *Participant) IsAlive() bool  { return p.stats.IsAlive() }
func (p *Participant) Speed() int     { return p.stats.Speed() }
func (p *Participant) String() string { return p.name }

// Abilities returns the names of abilities this participant may use.
func (p *Participant) Abilities() []string {
	result := make([]string, len(p.abilities))
	copy(result, p.abilities)
	return result
}

// SetAbilities replaces the ability name list.
func (p *Participant) SetAbilities(names ...string) {
	p.abilities = append(p.abilities[:0], names...)
}

// TakeDamage applies damage through the stat model. Dead participants take none.
func (p *Participant) TakeDamage(raw int) int {
	if !p.IsAlive() {
		return 0
	}
	actual := p.stats.TakeDamage(raw)

	slog.Debug("damage taken",
		"participant", p.name,
		"damage", actual,
		"hp", p.stats.CurrentHP(),
		"maxHP", p.stats.MaxHP())

	if !p.IsAlive() {
		slog.Info("participant defeated", "participant", p.name, "side", p.side)
	}
	return actual
}

// Heal restores HP. Dead participants are not healed.
func (p *Participant) Heal(amount int) int {
	if !p.IsAlive() {
		return 0
	}
	actual := p.stats.Heal(amount)

	slog.Debug("healed",
		"participant", p.name,
		"amount", actual,
		"hp", p.stats.CurrentHP(),
		"maxHP", p.stats.MaxHP())
	return actual
}

// AddStatusEffect appends the effect and attaches it.
func (p *Participant) AddStatusEffect(e StatusEffect) {
	if e == nil {
		return
	}
	p.effects = append(p.effects, e)
	e.Attach(p)

	slog.Debug("status gained", "participant", p.name, "effect", e.Name())
}

// RemoveStatusEffect detaches and removes the effect if it is active on p.
func (p *Participant) RemoveStatusEffect(e StatusEffect) {
	for i, existing := range p.effects {
		if existing == e {
			e.Detach(p)
			p.effects = append(p.effects[:i], p.effects[i+1:]...)

			slog.Debug("status worn off", "participant", p.name, "effect", e.Name())
			return
		}
	}
}

// ProcessStatusEffects ticks every active effect, newest first, and
// detaches the ones that expire in the same pass.
func (p *Participant) ProcessStatusEffects() {
	for i := len(p.effects) - 1; i >= 0; i-- {
		e := p.effects[i]
		e.Tick(p)
		if e.Expired() {
			p.RemoveStatusEffect(e)
		}
	}
}

// StatusEffects returns a copy of the active effect list.
func (p *Participant) StatusEffects() []StatusEffect {
	result := make([]StatusEffect, len(p.effects))
	copy(result, p.effects)
	return result
}

// ClearStatusEffects detaches every active effect.
func (p *Participant) ClearStatusEffects() {
	for i := len(p.effects) - 1; i >= 0; i-- {
		p.RemoveStatusEffect(p.effects[i])
	}
}

// CanAct is false while any active effect blocks actions (Stun).
func (p *Participant) CanAct() bool {
	for _, e := range p.effects {
		if e.BlocksAction() {
			return false
		}
	}
	return true
}

// SetStartingEffects queues effects attached when the battle starts.
func (p *Participant) SetStartingEffects(effects ...StatusEffect) {
	p.starting = append(p.starting[:0], effects...)
}

// ApplyStartingEffects attaches queued starting effects once.
func (p *Participant) ApplyStartingEffects() {
	for _, e := range p.starting {
		p.AddStatusEffect(e)
	}
	p.starting = nil
}
