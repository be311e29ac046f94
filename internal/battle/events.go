package battle

import "github.com/udisondev/turnbattle/internal/model"

// EventType identifies a scheduler notification.
type EventType int8

const (
	EventStateChanged EventType = iota
	EventTurnStarted
	EventTurnEnded
	EventBattleStarted
	EventBattleEnded
	EventParticipantAdded
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventStateChanged:
		return "state_changed"
	case EventTurnStarted:
		return "turn_started"
	case EventTurnEnded:
		return "turn_ended"
	case EventBattleStarted:
		return "battle_started"
	case EventBattleEnded:
		return "battle_ended"
	case EventParticipantAdded:
		return "participant_added"
	default:
		return "unknown"
	}
}

// Event is delivered to scheduler listeners.
// Participant is set for turn and participant-added events; State is the
// state at emission time.
type Event struct {
	Type        EventType
	State       CombatState
	Participant *model.Participant
	Turn        int
}

// Listener observes scheduler events. Listeners run on the goroutine that
// drives the scheduler and may call back into it.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Scheduler) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// queue records an event for delivery once the current operation is done.
// Delivering after the state is fully updated lets listeners call back into
// the scheduler safely.
func (s *Scheduler) queue(ev Event) {
	ev.Turn = s.turns
	s.pending = append(s.pending, ev)
}

// flush delivers queued events in order. Re-entrant calls made by listeners
// append to the same queue and are drained by the outermost flush.
func (s *Scheduler) flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	for len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]

		subs := make([]subscription, len(s.listeners))
		copy(subs, s.listeners)
		for _, sub := range subs {
			sub.fn(ev)
		}
	}
}
