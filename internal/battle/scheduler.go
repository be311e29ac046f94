package battle

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/udisondev/turnbattle/internal/ai"
	"github.com/udisondev/turnbattle/internal/game/combat"
	"github.com/udisondev/turnbattle/internal/model"
)

// Timing holds the scheduler delays. All of them are countdowns consumed by Advance.
type Timing struct {
	PreBattleDelay  time.Duration
	ThinkTime       time.Duration
	ActionDelay     time.Duration
	ProcessingDelay time.Duration
	TurnDelay       time.Duration
	// ActionTimeout force-completes an in-flight action. Zero waits forever.
	ActionTimeout time.Duration
}

// DefaultTiming returns the stock delays.
func DefaultTiming() Timing {
	return Timing{
		PreBattleDelay:  500 * time.Millisecond,
		ThinkTime:       time.Second,
		ActionDelay:     500 * time.Millisecond,
		ProcessingDelay: 300 * time.Millisecond,
		TurnDelay:       500 * time.Millisecond,
	}
}

// Options configures a Scheduler.
type Options struct {
	Timing Timing
	// StunSkipsTurn makes a participant with an action-blocking effect lose its action.
	StunSkipsTurn bool
	// Rand drives enemy damage rolls. Nil uses a randomly seeded source.
	Rand *rand.Rand
	// Controller picks enemy targets. Nil uses a RandomTargeter over Rand.
	Controller ai.Controller
}

// Scheduler runs one battle. It is not safe for concurrent use: a single
// goroutine calls Advance and the request methods (see Runner).
type Scheduler struct {
	id       uuid.UUID
	timing   Timing
	stunGate bool
	rng      *rand.Rand
	ctrl     ai.Controller
	machine  *fsm.FSM
	state    CombatState

	players []*model.Participant
	enemies []*model.Participant
	order   []*model.Participant
	index   int
	current *model.Participant

	timer       time.Duration
	inFlight    bool
	inFlightFor time.Duration
	actionGen   uint64

	turns int
	ended bool
	err   error

	listeners []subscription
	nextSubID int
	pending   []Event
	flushing  bool
}

// New creates an idle scheduler with a fresh battle id.
func New(opts Options) *Scheduler {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	ctrl := opts.Controller
	if ctrl == nil {
		ctrl = ai.NewRandomTargeter(rng)
	}

	return &Scheduler{
		id:       uuid.New(),
		timing:   opts.Timing,
		stunGate: opts.StunSkipsTurn,
		rng:      rng,
		ctrl:     ctrl,
		machine:  newMachine(),
		state:    StateIdle,
	}
}

func (s *Scheduler) ID() uuid.UUID               { return s.id }
func (s *Scheduler) State() CombatState          { return s.state }
func (s *Scheduler) Current() *model.Participant { return s.current }

// Turn returns the number of completed turns.
func (s *Scheduler) Turn() int { return s.turns }

// Err returns the fatal error that halted the battle, if any.
func (s *Scheduler) Err() error { return s.err }

// IsOver reports whether the battle reached a terminal state.
func (s *Scheduler) IsOver() bool { return s.state.IsTerminal() }

// InFlight reports whether an action is still resolving.
func (s *Scheduler) InFlight() bool { return s.inFlight }

func (s *Scheduler) Players() []*model.Participant   { return clone(s.players) }
func (s *Scheduler) Enemies() []*model.Participant   { return clone(s.enemies) }
func (s *Scheduler) TurnOrder() []*model.Participant { return clone(s.order) }

// AddParticipant adds p to the player or enemy roster. After the battle has
// started the turn order is rebuilt from current speeds and the turn index
// restarts at the fastest participant.
func (s *Scheduler) AddParticipant(p *model.Participant, playerSide bool) error {
	if p == nil {
		return ErrUnknownParticipant
	}
	if playerSide != p.IsPlayer() {
		return fmt.Errorf("adding %s: %w", p.Name(), ErrSideMismatch)
	}
	if s.find(p) {
		return fmt.Errorf("adding %s: %w", p.Name(), ErrDuplicateParticipant)
	}

	if playerSide {
		s.players = append(s.players, p)
	} else {
		s.enemies = append(s.enemies, p)
	}

	if s.state != StateIdle {
		p.ApplyStartingEffects()
		s.recomputeOrder()
	}

	slog.Debug("participant added", "battle", s.id, "participant", p.Name(), "side", p.Side())
	s.queue(Event{Type: EventParticipantAdded, State: s.state, Participant: p})
	s.flush()
	return nil
}

// RemoveParticipant removes p from its roster and from the turn order. The
// turn index keeps pointing at the participant that would have acted next.
func (s *Scheduler) RemoveParticipant(p *model.Participant) error {
	if i := indexOf(s.players, p); i >= 0 {
		s.players = removeAt(s.players, i)
	} else if i := indexOf(s.enemies, p); i >= 0 {
		s.enemies = removeAt(s.enemies, i)
	} else {
		return ErrUnknownParticipant
	}

	if i := indexOf(s.order, p); i >= 0 {
		s.order = removeAt(s.order, i)
		if i < s.index {
			s.index--
		}
		if s.index >= len(s.order) {
			s.index = 0
		}
	}

	slog.Debug("participant removed", "battle", s.id, "participant", p.Name())
	return nil
}

// Start builds the turn order and enters BattleStart.
func (s *Scheduler) Start() error {
	if s.state != StateIdle {
		return ErrBattleInProgress
	}
	if len(s.players) == 0 || len(s.enemies) == 0 {
		return ErrEmptyRoster
	}

	if !s.transition(evStart) {
		return s.err
	}
	s.order = BuildTurnOrder(s.players, s.enemies)
	s.index = 0
	for _, p := range s.order {
		p.ApplyStartingEffects()
	}

	slog.Info("battle started",
		"battle", s.id,
		"players", len(s.players),
		"enemies", len(s.enemies))

	s.queue(Event{Type: EventBattleStarted, State: s.state})
	s.timer = s.timing.PreBattleDelay
	s.flush()
	return nil
}

// Advance moves the battle forward by dt. It returns the fatal error once
// the battle has halted; otherwise nil.
func (s *Scheduler) Advance(dt time.Duration) error {
	if s.err != nil {
		return s.err
	}

	switch s.state {
	case StateBattleStart, StateProcessing:
		s.timer -= dt
		if s.timer <= 0 {
			s.beginTurn()
		}
	case StateEnemyTurn:
		s.timer -= dt
		if s.timer <= 0 {
			s.enemyAct()
		}
	case StatePlayerAction, StateEnemyAction:
		s.tickAction(dt)
	}

	s.flush()
	return s.err
}

// RequestPlayerAction runs action against target for the current player.
// The action keeps the turn in flight until it calls done.
func (s *Scheduler) RequestPlayerAction(target *model.Participant, action combat.Action) error {
	if s.err != nil {
		return s.err
	}
	if s.state != StatePlayerTurn {
		slog.Warn("player action rejected", "battle", s.id, "state", s.state)
		return ErrNotPlayerTurn
	}
	if action == nil {
		return ErrNilAction
	}

	if !s.transition(evPlayerAct) {
		return s.err
	}
	s.startAction(target, action)
	s.flush()
	return nil
}

// RequestFlee ends the battle in Flee. Only valid during a player turn.
func (s *Scheduler) RequestFlee() error {
	if s.err != nil {
		return s.err
	}
	if s.state != StatePlayerTurn {
		slog.Warn("flee rejected", "battle", s.id, "state", s.state)
		return ErrNotPlayerTurn
	}

	s.queue(Event{Type: EventTurnEnded, State: s.state, Participant: s.current})
	s.finish(evFlee)
	s.flush()
	return nil
}

// beginTurn selects the next living participant and opens its turn.
func (s *Scheduler) beginTurn() {
	p, err := s.nextLiving()
	if err != nil {
		s.halt(err)
		return
	}
	s.current = p

	if p.IsPlayer() {
		if !s.transition(evPlayerTurn) {
			return
		}
	} else {
		if !s.transition(evEnemyTurn) {
			return
		}
		s.timer = s.timing.ThinkTime
	}
	s.queue(Event{Type: EventTurnStarted, State: s.state, Participant: p})

	slog.Debug("turn started", "battle", s.id, "participant", p.Name(), "state", s.state)

	if s.stunGate && !p.CanAct() {
		slog.Info("turn skipped", "battle", s.id, "participant", p.Name(), "reason", "stunned")
		s.endTurn()
	}
}

// nextLiving scans the circular order from the index, skipping dead entries.
// The index is left on the entry after the chosen one.
func (s *Scheduler) nextLiving() (*model.Participant, error) {
	n := len(s.order)
	if n == 0 {
		return nil, ErrEmptyTurnOrder
	}
	for i := 0; i < n; i++ {
		idx := (s.index + i) % n
		if s.order[idx].IsAlive() {
			s.index = (idx + 1) % n
			return s.order[idx], nil
		}
	}
	return nil, ErrNoLivingParticipant
}

func (s *Scheduler) enemyAct() {
	target := s.ctrl.ChooseTarget(s.players)
	if target == nil {
		slog.Debug("enemy has no target", "battle", s.id, "participant", s.current.Name())
		s.endTurn()
		return
	}
	if !s.transition(evEnemyAct) {
		return
	}
	s.startAction(target, combat.AttackAction(s.current, s.rng))
}

func (s *Scheduler) startAction(target *model.Participant, action combat.Action) {
	s.actionGen++
	gen := s.actionGen
	s.inFlight = true
	s.inFlightFor = 0
	s.timer = s.timing.ActionDelay

	action(target, func() {
		// stale or repeated completions are ignored
		if s.inFlight && s.actionGen == gen {
			s.inFlight = false
		}
	})
}

func (s *Scheduler) tickAction(dt time.Duration) {
	if s.inFlight {
		s.inFlightFor += dt
		if s.timing.ActionTimeout <= 0 || s.inFlightFor < s.timing.ActionTimeout {
			return
		}
		slog.Warn("action timed out",
			"battle", s.id,
			"participant", s.current.Name(),
			"elapsed", s.inFlightFor)
		s.inFlight = false
		return
	}

	s.timer -= dt
	if s.timer <= 0 {
		s.endTurn()
	}
}

// endTurn closes the current turn and runs the processing pass.
func (s *Scheduler) endTurn() {
	s.queue(Event{Type: EventTurnEnded, State: s.state, Participant: s.current})
	s.turns++

	if !s.transition(evProcess) {
		return
	}
	for _, p := range s.order {
		if p.IsAlive() {
			p.ProcessStatusEffects()
		}
	}

	switch {
	case allDead(s.enemies):
		s.finish(evVictory)
	case allDead(s.players):
		s.finish(evDefeat)
	default:
		s.timer = s.timing.ProcessingDelay + s.timing.TurnDelay
	}
}

func (s *Scheduler) finish(ev string) {
	if !s.transition(ev) {
		return
	}
	if s.ended {
		return
	}
	s.ended = true

	slog.Info("battle ended", "battle", s.id, "outcome", s.state, "turns", s.turns)
	s.queue(Event{Type: EventBattleEnded, State: s.state})
}

func (s *Scheduler) recomputeOrder() {
	s.order = BuildTurnOrder(s.players, s.enemies)
	s.index = 0
}

// transition fires ev on the state machine and queues a state-changed event.
// A rejected transition is a scheduler bug and halts the battle.
func (s *Scheduler) transition(ev string) bool {
	from := s.state
	if err := s.machine.Event(context.Background(), ev); err != nil {
		s.halt(fmt.Errorf("transition %q from %s: %w", ev, from, err))
		return false
	}

	to, ok := parseState(s.machine.Current())
	if !ok {
		s.halt(fmt.Errorf("unknown state %q", s.machine.Current()))
		return false
	}
	s.state = to

	slog.Debug("combat state changed", "battle", s.id, "from", from, "to", to)
	s.queue(Event{Type: EventStateChanged, State: to, Participant: s.current})
	return true
}

func (s *Scheduler) halt(err error) {
	s.err = fmt.Errorf("battle %s halted: %w", s.id, err)
	slog.Error("battle halted", "battle", s.id, "state", s.state, "error", err)
}

func (s *Scheduler) find(p *model.Participant) bool {
	for _, x := range s.players {
		if x == p || x.ID() == p.ID() {
			return true
		}
	}
	for _, x := range s.enemies {
		if x == p || x.ID() == p.ID() {
			return true
		}
	}
	return false
}

func clone(list []*model.Participant) []*model.Participant {
	out := make([]*model.Participant, len(list))
	copy(out, list)
	return out
}
