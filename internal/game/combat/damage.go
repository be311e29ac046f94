package combat

import (
	"math"
	"math/rand/v2"
)

// Damage variance applied to basic attacks: raw = attack * U[0.9, 1.1).
const (
	minVariance = 0.9
	maxVariance = 1.1
)

// CalcAttackDamage rolls raw basic-attack damage from the attacker's attack stat.
// Defense is not applied here; the stat model subtracts it.
func CalcAttackDamage(attack int, rng *rand.Rand) int {
	variance := minVariance + randFloat(rng)*(maxVariance-minVariance)
	return int(math.Round(float64(attack) * variance))
}

// DefendPower is the DefenseUp power granted by the Defend action.
func DefendPower(defense int) int {
	return defense / 2
}

func randFloat(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
