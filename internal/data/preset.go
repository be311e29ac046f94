package data

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/turnbattle/internal/game/skill"
)

// Preset is a complete battle scenario: ability catalog, character
// templates and the two rosters.
type Preset struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	TurnDelay   time.Duration `yaml:"turn_delay"` // overrides timers.turn_delay when > 0

	Abilities []AbilityDef        `yaml:"abilities"`
	Templates []CharacterTemplate `yaml:"templates"`
	Players   []CharacterEntry    `yaml:"players"`
	Enemies   []CharacterEntry    `yaml:"enemies"`
}

// StatsDef is the stat block of a template or an override.
type StatsDef struct {
	HP      int `yaml:"hp"`
	MP      int `yaml:"mp"`
	Attack  int `yaml:"attack"`
	Defense int `yaml:"defense"`
	Speed   int `yaml:"speed"`
}

// CharacterTemplate is a reusable character definition.
type CharacterTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	StatsDef `yaml:",inline"`

	Abilities       []string    `yaml:"abilities"`
	StartingEffects []EffectDef `yaml:"starting_effects"`
}

// CharacterEntry places a character in a roster, either by template name
// or with an inline definition.
type CharacterEntry struct {
	Template      string             `yaml:"template"`
	Inline        *CharacterTemplate `yaml:"inline"`
	CustomName    string             `yaml:"custom_name"`
	OverrideStats *StatsDef          `yaml:"override_stats"`
}

// EffectDef describes a status effect.
type EffectDef struct {
	Name     string           `yaml:"name"`
	Kind     skill.EffectKind `yaml:"kind"`
	Duration int              `yaml:"duration"`
	Power    int              `yaml:"power"`
}

// Template converts the definition to a skill.EffectTemplate.
func (d EffectDef) Template() skill.EffectTemplate {
	name := d.Name
	if name == "" {
		name = d.Kind.String()
	}
	return skill.EffectTemplate{Name: name, Kind: d.Kind, Duration: d.Duration, Power: d.Power}
}

// AbilityDef describes an ability.
type AbilityDef struct {
	Name            string              `yaml:"name"`
	Description     string              `yaml:"description"`
	MPCost          int                 `yaml:"mp_cost"`
	Cooldown        int                 `yaml:"cooldown"`
	Targeting       skill.TargetMode    `yaml:"targeting"`
	Effect          skill.AbilityEffect `yaml:"effect"`
	BasePower       int                 `yaml:"base_power"`
	PowerMultiplier float64             `yaml:"power_multiplier"`
	Status          *EffectDef          `yaml:"status"`
	TriggerChance   float64             `yaml:"trigger_chance"`
}

// Ability builds the immutable skill.Ability.
func (d AbilityDef) Ability() *skill.Ability {
	a := &skill.Ability{
		Name:            d.Name,
		Description:     d.Description,
		MPCost:          d.MPCost,
		Cooldown:        d.Cooldown,
		Targeting:       d.Targeting,
		Effect:          d.Effect,
		BasePower:       d.BasePower,
		PowerMultiplier: d.PowerMultiplier,
		TriggerChance:   d.TriggerChance,
	}
	if d.Status != nil {
		t := d.Status.Template()
		a.Status = &t
	}
	return a
}

// IsValid reports whether both rosters are non-empty.
func (p *Preset) IsValid() bool {
	return len(p.Players) > 0 && len(p.Enemies) > 0
}

// TotalCharacters returns the number of roster entries on both sides.
func (p *Preset) TotalCharacters() int {
	return len(p.Players) + len(p.Enemies)
}

// Template returns the named template or nil.
func (p *Preset) Template(name string) *CharacterTemplate {
	for i := range p.Templates {
		if p.Templates[i].Name == name {
			return &p.Templates[i]
		}
	}
	return nil
}

// Catalog builds the ability catalog of the preset.
func (p *Preset) Catalog() (*skill.Catalog, error) {
	abilities := make([]*skill.Ability, 0, len(p.Abilities))
	for _, d := range p.Abilities {
		abilities = append(abilities, d.Ability())
	}
	return skill.NewCatalog(abilities...)
}

// Validate checks roster sizes, template references and ability names.
func (p *Preset) Validate() error {
	if !p.IsValid() {
		return fmt.Errorf("preset %q: both sides need at least one character", p.Name)
	}

	catalog, err := p.Catalog()
	if err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}

	var errs []error
	check := func(side string, entries []CharacterEntry) {
		for i, e := range entries {
			t, err := p.resolve(e)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", side, i, err))
				continue
			}
			if _, err := catalog.Resolve(t.Abilities); err != nil {
				errs = append(errs, fmt.Errorf("%s[%d] %s: %w", side, i, t.Name, err))
			}
		}
	}
	check("players", p.Players)
	check("enemies", p.Enemies)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return nil
}

func (p *Preset) resolve(e CharacterEntry) (*CharacterTemplate, error) {
	switch {
	case e.Inline != nil:
		return e.Inline, nil
	case e.Template != "":
		t := p.Template(e.Template)
		if t == nil {
			return nil, fmt.Errorf("unknown template %q", e.Template)
		}
		return t, nil
	default:
		return nil, errors.New("entry needs a template or an inline definition")
	}
}

// LoadPreset reads and validates a preset YAML file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset %s: %w", path, err)
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	slog.Info("loaded preset",
		"name", p.Name,
		"players", len(p.Players),
		"enemies", len(p.Enemies),
		"abilities", len(p.Abilities))
	return &p, nil
}
