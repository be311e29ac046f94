package battle

import "errors"

var (
	// ErrNotPlayerTurn is returned by player requests outside PlayerTurn.
	ErrNotPlayerTurn = errors.New("not a player turn")

	// ErrBattleInProgress is returned by Start when the battle is not Idle.
	ErrBattleInProgress = errors.New("battle already started")

	// ErrEmptyRoster is returned by Start when either side has no participants.
	ErrEmptyRoster = errors.New("both sides need at least one participant")

	// ErrUnknownParticipant is returned when a participant is not part of the battle.
	ErrUnknownParticipant = errors.New("unknown participant")

	// ErrDuplicateParticipant is returned by AddParticipant for a participant already in the battle.
	ErrDuplicateParticipant = errors.New("participant already in battle")

	// ErrSideMismatch is returned by AddParticipant when the roster side disagrees with the participant's side.
	ErrSideMismatch = errors.New("participant side does not match roster")

	// ErrNilAction is returned by RequestPlayerAction without an action.
	ErrNilAction = errors.New("nil action")
)

// Fatal: the battle halts when selecting a turn hits one of these.
var (
	ErrEmptyTurnOrder      = errors.New("turn order is empty")
	ErrNoLivingParticipant = errors.New("no living participant in turn order")
)
