package combat

import (
	"errors"

	"github.com/udisondev/turnbattle/internal/model"
)

var (
	ErrNoTarget     = errors.New("target is nil")
	ErrAttackerDead = errors.New("attacker is dead")
	ErrTargetDead   = errors.New("target is dead")
)

// ValidateAttack checks that an attack can be resolved.
// Returns nil when both sides are present and alive.
func ValidateAttack(attacker, target *model.Participant) error {
	if attacker == nil || target == nil {
		return ErrNoTarget
	}
	if !attacker.IsAlive() {
		return ErrAttackerDead
	}
	if !target.IsAlive() {
		return ErrTargetDead
	}
	return nil
}
