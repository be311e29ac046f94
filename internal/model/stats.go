package model

// StatKind identifies a modifiable attribute.
type StatKind int8

const (
	StatMaxHP StatKind = iota
	StatMaxMP
	StatAttack
	StatDefense
	StatSpeed
)

// String returns human-readable stat name.
func (k StatKind) String() string {
	switch k {
	case StatMaxHP:
		return "maxHP"
	case StatMaxMP:
		return "maxMP"
	case StatAttack:
		return "attack"
	case StatDefense:
		return "defense"
	case StatSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// Stats holds a participant's attributes and current HP/MP.
//
// Attack, defense and speed are kept as signed accumulators so that a
// temporary -N followed by +N always restores the exact original value,
// even when the accumulator dips below zero in between. Accessors clamp
// the observable value at 0.
//
// Not safe for concurrent use: a battle mutates its participants from a
// single goroutine.
type Stats struct {
	maxHP   int
	maxMP   int
	attack  int
	defense int
	speed   int

	currentHP int
	currentMP int

	listeners []statsSubscription
	nextSubID int
}

type statsSubscription struct {
	id int
	fn StatsListener
}

// NewStats creates stats with current HP/MP set to their maximums.
// Negative inputs are clamped to 0.
func NewStats(maxHP, maxMP, attack, defense, speed int) *Stats {
	s := &Stats{
		maxHP:   nonNegative(maxHP),
		maxMP:   nonNegative(maxMP),
		attack:  nonNegative(attack),
		defense: nonNegative(defense),
		speed:   nonNegative(speed),
	}
	s.currentHP = s.maxHP
	s.currentMP = s.maxMP
	return s
}

func (s *Stats) MaxHP() int     { return s.maxHP }
func (s *Stats) MaxMP() int     { return s.maxMP }
func (s *Stats) CurrentHP() int { return s.currentHP }
func (s *Stats) CurrentMP() int { return s.currentMP }
func (s *Stats) Attack() int    { return nonNegative(s.attack) }
func (s *Stats) Defense() int   { return nonNegative(s.defense) }
func (s *Stats) Speed() int     { return nonNegative(s.speed) }

// IsAlive reports whether current HP is above zero.
func (s *Stats) IsAlive() bool { return s.currentHP > 0 }

// TakeDamage reduces HP by raw minus defense (never negative) and returns
// the damage actually dealt. Death fires once, on the transition to 0 HP.
func (s *Stats) TakeDamage(raw int) int {
	wasAlive := s.currentHP > 0

	actual := nonNegative(nonNegative(raw) - s.Defense())
	s.currentHP = nonNegative(s.currentHP - actual)

	s.emit(StatsEvent{Kind: StatsHPChanged, Current: s.currentHP, Max: s.maxHP})
	if wasAlive && s.currentHP == 0 {
		s.emit(StatsEvent{Kind: StatsDeath, Current: 0, Max: s.maxHP})
	}
	return actual
}

// Heal restores HP up to maxHP and returns the amount restored.
// A participant at 0 HP is not resurrected.
func (s *Stats) Heal(amount int) int {
	if s.currentHP == 0 {
		return 0
	}
	prev := s.currentHP
	s.currentHP = min(s.maxHP, s.currentHP+nonNegative(amount))

	s.emit(StatsEvent{Kind: StatsHPChanged, Current: s.currentHP, Max: s.maxHP})
	return s.currentHP - prev
}

// ConsumeMP deducts amount if enough MP is available.
// Returns false without mutation otherwise.
func (s *Stats) ConsumeMP(amount int) bool {
	amount = nonNegative(amount)
	if s.currentMP < amount {
		return false
	}
	s.currentMP -= amount
	s.emit(StatsEvent{Kind: StatsMPChanged, Current: s.currentMP, Max: s.maxMP})
	return true
}

// RestoreMP restores MP up to maxMP and returns the amount restored.
func (s *Stats) RestoreMP(amount int) int {
	prev := s.currentMP
	s.currentMP = min(s.maxMP, s.currentMP+nonNegative(amount))

	s.emit(StatsEvent{Kind: StatsMPChanged, Current: s.currentMP, Max: s.maxMP})
	return s.currentMP - prev
}

// ModifyStat adds delta to the given stat.
//
// MaxHP and MaxMP only change when permanent is set; current values are
// clamped if the maximum shrinks. Attack, defense and speed always change
// immediately. Callers reverse a temporary change by passing -delta.
func (s *Stats) ModifyStat(kind StatKind, delta int, permanent bool) {
	switch kind {
	case StatMaxHP:
		if !permanent {
			return
		}
		s.maxHP = nonNegative(s.maxHP + delta)
		if s.currentHP > s.maxHP {
			s.currentHP = s.maxHP
		}
		s.emit(StatsEvent{Kind: StatsHPChanged, Current: s.currentHP, Max: s.maxHP})
	case StatMaxMP:
		if !permanent {
			return
		}
		s.maxMP = nonNegative(s.maxMP + delta)
		if s.currentMP > s.maxMP {
			s.currentMP = s.maxMP
		}
		s.emit(StatsEvent{Kind: StatsMPChanged, Current: s.currentMP, Max: s.maxMP})
	case StatAttack:
		s.attack += delta
	case StatDefense:
		s.defense += delta
	case StatSpeed:
		s.speed += delta
	}
}

// Clone returns a copy of the stat values without listeners.
func (s *Stats) Clone() *Stats {
	return &Stats{
		maxHP:     s.maxHP,
		maxMP:     s.maxMP,
		attack:    s.attack,
		defense:   s.defense,
		speed:     s.speed,
		currentHP: s.currentHP,
		currentMP: s.currentMP,
	}
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
