package skill

import (
	"fmt"
	"strings"
)

// effectKinds maps config names to effect kinds.
var effectKinds = map[string]EffectKind{}

// RegisterEffectKind registers a config name for an effect kind.
// Names are case-insensitive.
func RegisterEffectKind(name string, kind EffectKind) {
	effectKinds[strings.ToLower(name)] = kind
}

// ParseEffectKind resolves a config name such as "poison" or "attack_up".
func ParseEffectKind(name string) (EffectKind, error) {
	kind, ok := effectKinds[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown status effect kind: %q", name)
	}
	return kind, nil
}

// String returns the canonical config name of the kind.
func (k EffectKind) String() string {
	switch k {
	case EffectPoison:
		return "poison"
	case EffectBurn:
		return "burn"
	case EffectRegen:
		return "regen"
	case EffectAttackUp:
		return "attack_up"
	case EffectAttackDown:
		return "attack_down"
	case EffectDefenseUp:
		return "defense_up"
	case EffectDefenseDown:
		return "defense_down"
	case EffectStun:
		return "stun"
	case EffectSlow:
		return "slow"
	case EffectHaste:
		return "haste"
	default:
		return "unknown"
	}
}

// UnmarshalText lets kinds be decoded directly from YAML.
func (k *EffectKind) UnmarshalText(text []byte) error {
	kind, err := ParseEffectKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// MarshalText writes the canonical config name.
func (k EffectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func init() {
	for _, k := range []EffectKind{
		EffectPoison, EffectBurn, EffectRegen,
		EffectAttackUp, EffectAttackDown,
		EffectDefenseUp, EffectDefenseDown,
		EffectStun, EffectSlow, EffectHaste,
	} {
		RegisterEffectKind(k.String(), k)
	}
	// Aliases used by older presets.
	RegisterEffectKind("poison_dot", EffectPoison)
	RegisterEffectKind("burn_dot", EffectBurn)
	RegisterEffectKind("regen_hot", EffectRegen)
}
