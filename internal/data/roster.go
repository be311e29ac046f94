package data

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/turnbattle/internal/game/skill"
	"github.com/udisondev/turnbattle/internal/model"
)

// Roster is a preset instantiated for one battle. Every call to BuildRoster
// yields fresh participants and effect instances.
type Roster struct {
	Preset  *Preset
	Catalog *skill.Catalog
	Players []*model.Participant
	Enemies []*model.Participant
}

// BuildRoster instantiates the preset's characters. Participant ids are
// unique within the roster ("player-1", "enemy-2", ...).
func BuildRoster(p *Preset) (*Roster, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	catalog, err := p.Catalog()
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", p.Name, err)
	}

	r := &Roster{Preset: p, Catalog: catalog}
	r.Players, err = p.instantiate(model.SidePlayer, p.Players)
	if err != nil {
		return nil, err
	}
	r.Enemies, err = p.instantiate(model.SideEnemy, p.Enemies)
	if err != nil {
		return nil, err
	}

	slog.Debug("roster built", "preset", p.Name, "players", len(r.Players), "enemies", len(r.Enemies))
	return r, nil
}

// All returns players followed by enemies.
func (r *Roster) All() []*model.Participant {
	out := make([]*model.Participant, 0, len(r.Players)+len(r.Enemies))
	out = append(out, r.Players...)
	return append(out, r.Enemies...)
}

func (p *Preset) instantiate(side model.Side, entries []CharacterEntry) ([]*model.Participant, error) {
	out := make([]*model.Participant, 0, len(entries))
	for i, e := range entries {
		t, err := p.resolve(e)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", side, i, err)
		}

		stats := t.StatsDef
		if e.OverrideStats != nil {
			stats = *e.OverrideStats
		}
		name := e.CustomName
		if name == "" {
			name = t.Name
		}

		id := fmt.Sprintf("%s-%d", side, i+1)
		part := model.NewParticipant(id, name, side,
			model.NewStats(stats.HP, stats.MP, stats.Attack, stats.Defense, stats.Speed))
		part.SetAbilities(t.Abilities...)

		effects := make([]model.StatusEffect, 0, len(t.StartingEffects))
		for _, d := range t.StartingEffects {
			effects = append(effects, d.Template().New())
		}
		part.SetStartingEffects(effects...)

		out = append(out, part)
	}
	return out, nil
}
