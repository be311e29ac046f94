package battle

import "github.com/looplab/fsm"

// Transition events. Every state change goes through the machine below, so
// an illegal transition surfaces as an error instead of a corrupted state.
const (
	evStart      = "start"
	evPlayerTurn = "player_turn"
	evEnemyTurn  = "enemy_turn"
	evPlayerAct  = "player_act"
	evEnemyAct   = "enemy_act"
	evProcess    = "process"
	evVictory    = "victory"
	evDefeat     = "defeat"
	evFlee       = "flee"
)

// newMachine builds the transition table. Idle and the terminal states have
// no outgoing scheduler-driven transition.
func newMachine() *fsm.FSM {
	turnSources := []string{StateBattleStart.String(), StateProcessing.String()}

	return fsm.NewFSM(
		StateIdle.String(),
		fsm.Events{
			{Name: evStart, Src: []string{StateIdle.String()}, Dst: StateBattleStart.String()},
			{Name: evPlayerTurn, Src: turnSources, Dst: StatePlayerTurn.String()},
			{Name: evEnemyTurn, Src: turnSources, Dst: StateEnemyTurn.String()},
			{Name: evPlayerAct, Src: []string{StatePlayerTurn.String()}, Dst: StatePlayerAction.String()},
			{Name: evEnemyAct, Src: []string{StateEnemyTurn.String()}, Dst: StateEnemyAction.String()},
			{
				Name: evProcess,
				Src: []string{
					StatePlayerAction.String(),
					StateEnemyAction.String(),
					// no living target, or a stunned participant skipping its turn
					StateEnemyTurn.String(),
					StatePlayerTurn.String(),
				},
				Dst: StateProcessing.String(),
			},
			{Name: evVictory, Src: []string{StateProcessing.String()}, Dst: StateVictory.String()},
			{Name: evDefeat, Src: []string{StateProcessing.String()}, Dst: StateDefeat.String()},
			{Name: evFlee, Src: []string{StatePlayerTurn.String()}, Dst: StateFlee.String()},
		},
		fsm.Callbacks{},
	)
}
