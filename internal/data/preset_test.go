package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/turnbattle/internal/game/skill"
	"github.com/udisondev/turnbattle/internal/model"
)

func TestDefaultPreset(t *testing.T) {
	p := DefaultPreset()
	require.True(t, p.IsValid())
	require.NoError(t, p.Validate())
	assert.Equal(t, 2, p.TotalCharacters())

	catalog, err := p.Catalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"Fireball", "Heal", "Poison Dart", "War Cry", "Weaken"}, catalog.Names())
}

func TestLoadPreset_MatchesBuiltin(t *testing.T) {
	p, err := LoadPreset(filepath.Join("..", "..", "presets", "default.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPreset(), p)
}

func TestBuildRoster_HeroVsGoblin(t *testing.T) {
	r, err := BuildRoster(DefaultPreset())
	require.NoError(t, err)
	require.Len(t, r.Players, 1)
	require.Len(t, r.Enemies, 1)

	hero, goblin := r.Players[0], r.Enemies[0]
	assert.Equal(t, "Hero", hero.Name())
	assert.Equal(t, model.SidePlayer, hero.Side())
	assert.Equal(t, 100, hero.Stats().MaxHP())
	assert.Equal(t, 50, hero.Stats().MaxMP())
	assert.Equal(t, 15, hero.Stats().Attack())
	assert.Equal(t, 8, hero.Stats().Defense())
	assert.Equal(t, 12, hero.Speed())
	assert.Equal(t, []string{"Fireball", "Heal", "War Cry"}, hero.Abilities())

	assert.Equal(t, "Goblin", goblin.Name())
	assert.Equal(t, model.SideEnemy, goblin.Side())
	assert.Equal(t, 80, goblin.Stats().MaxHP())
	assert.Equal(t, 10, goblin.Speed())

	assert.NotEqual(t, hero.ID(), goblin.ID())
	assert.Len(t, r.All(), 2)
	assert.NotNil(t, r.Catalog.Get("Fireball"))
}

func TestBuildRoster_EntriesAndOverrides(t *testing.T) {
	p := DefaultPreset()
	p.Players = append(p.Players,
		CharacterEntry{Template: "Hero", CustomName: "Sidekick", OverrideStats: &StatsDef{HP: 40, MP: 0, Attack: 7, Defense: 1, Speed: 20}},
		CharacterEntry{Inline: &CharacterTemplate{
			Name:            "Druid",
			StatsDef:        StatsDef{HP: 60, MP: 40, Attack: 6, Defense: 3, Speed: 9},
			Abilities:       []string{"Heal"},
			StartingEffects: []EffectDef{{Kind: skill.EffectRegen, Duration: 3, Power: 4}},
		}},
	)

	r, err := BuildRoster(p)
	require.NoError(t, err)
	require.Len(t, r.Players, 3)

	ids := map[string]bool{}
	for _, part := range r.All() {
		assert.False(t, ids[part.ID()], "duplicate id %s", part.ID())
		ids[part.ID()] = true
	}

	sidekick := r.Players[1]
	assert.Equal(t, "Sidekick", sidekick.Name())
	assert.Equal(t, 40, sidekick.Stats().MaxHP())
	assert.Equal(t, 20, sidekick.Speed())

	druid := r.Players[2]
	assert.Equal(t, "Druid", druid.Name())
	druid.ApplyStartingEffects()
	effects := druid.StatusEffects()
	require.Len(t, effects, 1)
	assert.Equal(t, "regen", effects[0].Name(), "unnamed effects take the kind name")
}

func TestBuildRoster_FreshEffectsPerBuild(t *testing.T) {
	p := DefaultPreset()
	p.Templates[1].StartingEffects = []EffectDef{{Name: "Poison", Kind: skill.EffectPoison, Duration: 3, Power: 5}}

	first, err := BuildRoster(p)
	require.NoError(t, err)
	second, err := BuildRoster(p)
	require.NoError(t, err)

	first.Enemies[0].ApplyStartingEffects()
	second.Enemies[0].ApplyStartingEffects()
	a := first.Enemies[0].StatusEffects()[0]
	b := second.Enemies[0].StatusEffects()[0]
	assert.NotSame(t, a, b)
}

func TestPreset_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Preset)
		want   string
	}{
		{"no enemies", func(p *Preset) { p.Enemies = nil }, "both sides"},
		{"no players", func(p *Preset) { p.Players = nil }, "both sides"},
		{"unknown template", func(p *Preset) { p.Enemies[0].Template = "Dragon" }, `unknown template "Dragon"`},
		{"empty entry", func(p *Preset) { p.Players[0] = CharacterEntry{} }, "template or an inline"},
		{"unknown ability", func(p *Preset) { p.Templates[0].Abilities = []string{"Meteor"} }, "unknown ability: Meteor"},
		{"duplicate ability", func(p *Preset) { p.Abilities = append(p.Abilities, p.Abilities[0]) }, "Fireball"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPreset()
			tt.mutate(p)
			assert.ErrorContains(t, p.Validate(), tt.want)

			_, err := BuildRoster(p)
			assert.Error(t, err)
		})
	}
}

func TestLoadPreset_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadPreset(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading preset")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("abilities:\n  - name: X\n    effect: explode\n"), 0o600))
	_, err = LoadPreset(bad)
	assert.ErrorContains(t, err, "parsing preset")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("name: Empty\nplayers: []\n"), 0o600))
	_, err = LoadPreset(empty)
	assert.ErrorContains(t, err, "both sides")
}
