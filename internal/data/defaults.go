package data

import (
	"time"

	"github.com/udisondev/turnbattle/internal/game/skill"
)

// DefaultPresetName names the built-in preset.
const DefaultPresetName = "Hero vs Goblin"

// DefaultPreset строит встроенный пресет из Go-литералов.
// Используется, когда в конфиге не задан файл пресета.
func DefaultPreset() *Preset {
	return &Preset{
		Name:        DefaultPresetName,
		Description: "A lone hero faces a goblin.",
		TurnDelay:   500 * time.Millisecond,
		Abilities:   defaultAbilities(),
		Templates: []CharacterTemplate{
			{
				Name:        "Hero",
				Description: "Balanced fighter with a little magic.",
				StatsDef:    StatsDef{HP: 100, MP: 50, Attack: 15, Defense: 8, Speed: 12},
				Abilities:   []string{"Fireball", "Heal", "War Cry"},
			},
			{
				Name:        "Goblin",
				Description: "Quick and nasty.",
				StatsDef:    StatsDef{HP: 80, MP: 30, Attack: 12, Defense: 5, Speed: 10},
				Abilities:   []string{"Weaken", "Poison Dart"},
			},
		},
		Players: []CharacterEntry{{Template: "Hero"}},
		Enemies: []CharacterEntry{{Template: "Goblin"}},
	}
}

func defaultAbilities() []AbilityDef {
	return []AbilityDef{
		{
			Name:            "Fireball",
			Description:     "Hurls a ball of fire that may set the target ablaze.",
			MPCost:          10,
			Targeting:       skill.TargetSingleEnemy,
			Effect:          skill.AbilityDamage,
			BasePower:       20,
			PowerMultiplier: 1.5,
			Status:          &EffectDef{Name: "Burn", Kind: skill.EffectBurn, Duration: 2, Power: 3},
			TriggerChance:   0.3,
		},
		{
			Name:        "Heal",
			Description: "Restores health.",
			MPCost:      8,
			Targeting:   skill.TargetSelf,
			Effect:      skill.AbilityHeal,
			BasePower:   25,
		},
		{
			Name:        "War Cry",
			Description: "Raises attack for a few turns.",
			MPCost:      12,
			Targeting:   skill.TargetSelf,
			Effect:      skill.AbilityBuff,
			Status:      &EffectDef{Name: "War Cry", Kind: skill.EffectAttackUp, Duration: 3, Power: 5},
		},
		{
			Name:        "Weaken",
			Description: "Lowers the target's defense.",
			MPCost:      10,
			Targeting:   skill.TargetSingleEnemy,
			Effect:      skill.AbilityDebuff,
			Status:      &EffectDef{Name: "Weaken", Kind: skill.EffectDefenseDown, Duration: 2, Power: 3},
		},
		{
			Name:            "Poison Dart",
			Description:     "A weak dart that often poisons.",
			MPCost:          6,
			Targeting:       skill.TargetSingleEnemy,
			Effect:          skill.AbilityDamage,
			PowerMultiplier: 0.8,
			Status:          &EffectDef{Name: "Poison", Kind: skill.EffectPoison, Duration: 3, Power: 5},
			TriggerChance:   0.5,
		},
	}
}
