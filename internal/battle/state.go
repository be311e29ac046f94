package battle

// CombatState is the current phase of a battle.
type CombatState int8

const (
	StateIdle CombatState = iota
	StateBattleStart
	StatePlayerTurn
	StatePlayerAction
	StateEnemyTurn
	StateEnemyAction
	StateProcessing
	StateVictory
	StateDefeat
	StateFlee
)

var stateNames = [...]string{
	StateIdle:         "Idle",
	StateBattleStart:  "BattleStart",
	StatePlayerTurn:   "PlayerTurn",
	StatePlayerAction: "PlayerAction",
	StateEnemyTurn:    "EnemyTurn",
	StateEnemyAction:  "EnemyAction",
	StateProcessing:   "Processing",
	StateVictory:      "Victory",
	StateDefeat:       "Defeat",
	StateFlee:         "Flee",
}

// String returns the state name.
func (s CombatState) String() string {
	if int(s) < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// IsTerminal is true for Victory, Defeat and Flee.
func (s CombatState) IsTerminal() bool {
	return s == StateVictory || s == StateDefeat || s == StateFlee
}

func parseState(name string) (CombatState, bool) {
	for i, n := range stateNames {
		if n == name {
			return CombatState(i), true
		}
	}
	return StateIdle, false
}
